package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func TestWebSocket_SnapshotStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{snapshot: service.Snapshot{
		Timestamp: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		Devices:   service.DeviceSummary{TotalDevices: 5},
		Alerts: alerting.Summary{
			TotalActive:          2,
			SeverityDistribution: map[string]int{"critical": 1, "warning": 1},
		},
	}}
	s := &service.Service{Monitoring: mon}

	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval_ms", "20") // fast ticks for the test
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	type envelope struct {
		Type  string          `json:"type"`
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != msgSnapshot || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var snap service.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Devices.TotalDevices != 5 || snap.Alerts.TotalActive != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != msgSnapshot {
		t.Fatalf("expected type=snapshot, got %+v", env)
	}
}

func TestWebSocket_RefreshRequest(t *testing.T) {
	mon := &mockMonitoring{snapshot: service.Snapshot{Devices: service.DeviceSummary{TotalDevices: 3}}}
	r := gin.New()
	h := NewHandler(&service.Service{Monitoring: mon}, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = "interval=10s" // periodic pushes stay out of the way

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	var env wsEnvelope
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	if err := conn.ReadJSON(&env); err != nil || env.Type != msgSnapshot {
		t.Fatalf("initial snapshot: %+v, %v", env, err)
	}

	// unknown requests are ignored, refresh answers right away
	if err := conn.WriteJSON(wsEnvelope{Type: "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(wsEnvelope{Type: msgRefresh}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = wsEnvelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read refresh: %v", err)
	}
	if env.Type != msgSnapshot {
		t.Fatalf("expected snapshot after refresh, got %+v", env)
	}
}
