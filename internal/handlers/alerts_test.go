package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/models"
	"smart_ems/internal/service"
)

var t0 = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func sampleAlert(id string, sev models.Severity, prio int) models.Alert {
	return models.Alert{
		ID:            id,
		Timestamp:     t0,
		Severity:      sev,
		DeviceID:      "BAT_001",
		Component:     "Battery",
		Rule:          "soc_low",
		Title:         "Battery SoC Low",
		PriorityScore: prio,
	}
}

type alertList struct {
	Count  int            `json:"count"`
	Alerts []models.Alert `json:"alerts"`
}

func decodeAlerts(t *testing.T, w *httptest.ResponseRecorder) alertList {
	t.Helper()
	var out alertList
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal alerts: %v, body=%s", err, w.Body.String())
	}
	return out
}

func TestAlertHandlers_ListAndFilter(t *testing.T) {
	al := &mockAlerts{
		active:     []models.Alert{sampleAlert("a1", models.SeverityCritical, 4), sampleAlert("a2", models.SeverityWarning, 2)},
		bySeverity: []models.Alert{sampleAlert("a1", models.SeverityCritical, 4)},
	}
	r := newTestRouter(&service.Service{Alerts: al})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if out := decodeAlerts(t, w); out.Count != 2 {
		t.Fatalf("expected 2 active alerts, got %+v", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?severity=CRITICAL", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	out := decodeAlerts(t, w)
	if out.Count != 1 || out.Alerts[0].Severity != models.SeverityCritical {
		t.Fatalf("unexpected filtered alerts: %+v", out)
	}
	if al.lastSeverity != models.SeverityCritical {
		t.Fatalf("severity not passed through: %v", al.lastSeverity)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?severity=urgent", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown severity, got %d", w.Code)
	}
}

func TestAlertHandlers_EmptyListIsArray(t *testing.T) {
	r := newTestRouter(&service.Service{Alerts: &mockAlerts{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/prioritized", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"alerts":[]`)) {
		t.Fatalf("expected empty array, body=%s", w.Body.String())
	}
}

func TestAlertHandlers_SummaryAndGet(t *testing.T) {
	top := sampleAlert("a1", models.SeverityEmergency, 7)
	al := &mockAlerts{
		summary: alerting.Summary{
			TotalActive:          1,
			SeverityDistribution: map[string]int{"info": 0, "warning": 0, "critical": 0, "emergency": 1},
			HighestPriority:      &top,
		},
		stored: map[string]models.Alert{"a1": top},
	}
	r := newTestRouter(&service.Service{Alerts: al})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/summary", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("summary status=%d", w.Code)
	}
	var sum alerting.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if sum.TotalActive != 1 || sum.HighestPriority == nil || sum.HighestPriority.ID != "a1" {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/a1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	var got models.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != "a1" || got.Severity != models.SeverityEmergency {
		t.Fatalf("unexpected alert: %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAlertHandlers_History(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantCode  int
		wantLimit int
	}{
		{"default_limit", "/api/v1/alerts/history", http.StatusOK, defaultHistoryLimit},
		{"explicit_limit", "/api/v1/alerts/history?limit=5", http.StatusOK, 5},
		{"zero_limit", "/api/v1/alerts/history?limit=0", http.StatusBadRequest, 0},
		{"bad_limit", "/api/v1/alerts/history?limit=x", http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			al := &mockAlerts{history: []models.Alert{sampleAlert("a1", models.SeverityInfo, 1)}}
			r := newTestRouter(&service.Service{Alerts: al})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d", w.Code, tc.wantCode)
			}
			if al.lastLimit != tc.wantLimit {
				t.Fatalf("limit=%d, want %d", al.lastLimit, tc.wantLimit)
			}
		})
	}
}

func TestAlertHandlers_AcknowledgeResolve(t *testing.T) {
	cases := []struct {
		name string
		path string
		ok   bool
		want int
	}{
		{"ack_ok", "/api/v1/alerts/a1/acknowledge", true, http.StatusOK},
		{"ack_unknown", "/api/v1/alerts/a1/acknowledge", false, http.StatusNotFound},
		{"resolve_ok", "/api/v1/alerts/a1/resolve", true, http.StatusOK},
		{"resolve_unknown", "/api/v1/alerts/a1/resolve", false, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			al := &mockAlerts{ackOK: tc.ok, resolveOK: tc.ok}
			r := newTestRouter(&service.Service{Alerts: al})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, nil))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
			if al.lastAckID != "a1" && al.lastResolveID != "a1" {
				t.Fatalf("id not passed through: ack=%q resolve=%q", al.lastAckID, al.lastResolveID)
			}
		})
	}
}

func TestAlertHandlers_Cleanup(t *testing.T) {
	al := &mockAlerts{purged: []models.Alert{sampleAlert("old", models.SeverityWarning, 2)}}
	s := &service.Service{Alerts: al}
	h := NewHandler(s, nil, WithRetention(6*time.Hour))
	r := h.InitRoutes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/cleanup", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if al.lastRetention != 6*time.Hour {
		t.Fatalf("default retention=%v, want 6h", al.lastRetention)
	}
	if out := decodeAlerts(t, w); out.Count != 1 || out.Alerts[0].ID != "old" {
		t.Fatalf("unexpected purge response: %+v", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/cleanup?retention_hours=0.5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if al.lastRetention != 30*time.Minute {
		t.Fatalf("retention=%v, want 30m", al.lastRetention)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/cleanup?retention_hours=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative retention, got %d", w.Code)
	}
}

func TestAlertHandlers_Evaluate(t *testing.T) {
	raised := sampleAlert("BAT_001_soc_critical_20250701_120000", models.SeverityEmergency, 7)
	al := &mockAlerts{evaluated: []models.Alert{raised}}
	r := newTestRouter(&service.Service{Alerts: al})

	body := []byte(`{"readings":[{"deviceId":"BAT_001","deviceClass":"battery","timestamp":"2025-07-01T12:00:00Z","metrics":{"soc":8}}],
		"diagnostics":[{"deviceId":"BAT_001","component":"battery","healthIndex":70}]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if len(al.lastEval) != 1 || al.lastEval[0].DeviceID != "BAT_001" || al.lastEval[0].Metrics.Float(models.MetricSOC, 0) != 8 {
		t.Fatalf("readings not decoded: %+v", al.lastEval)
	}
	if len(al.lastEvalDiags) != 1 || al.lastEvalDiags[0].HealthIndex != 70 {
		t.Fatalf("diagnostics not decoded: %+v", al.lastEvalDiags)
	}
	if out := decodeAlerts(t, w); out.Count != 1 || out.Alerts[0].ID != raised.ID {
		t.Fatalf("unexpected evaluate response: %+v", out)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/alerts/evaluate", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}
