package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	msgSnapshot = "snapshot"
	msgRefresh  = "refresh"
)

// wsEnvelope is every frame exchanged on /ws.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Dashboards may be served from another origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsStream pushes fleet snapshots to one client. Only the run loop writes to conn.
type wsStream struct {
	conn     *websocket.Conn
	monitor  service.Monitoring
	log      *logger.Logger
	interval time.Duration

	refresh chan struct{}
	done    chan struct{}
}

// @Summary      Live fleet snapshot stream
// @Description  Upgrades to WebSocket and pushes {"type":"snapshot","data":...} every interval (?interval=2s or ?interval_ms=2000, max 10s). Send {"type":"refresh"} for an immediate snapshot.
// @Tags         system
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	log := h.log
	if log == nil {
		log = logger.Nop()
	}
	s := &wsStream{
		conn:     conn,
		monitor:  h.services.Monitoring,
		log:      log,
		interval: interval,
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.run(c.Request.Context().Done())
}

// parseInterval reads ?interval=2s or ?interval_ms=2000; out of range values fall back to the default.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

func (s *wsStream) run(stop <-chan struct{}) {
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.read()

	ticker := time.NewTicker(s.interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := s.sendSnapshot(); err != nil {
		s.log.Infow("ws_write_failed_initial", "err", err)
		return
	}
	for {
		var err error
		select {
		case <-s.done:
			return
		case <-stop:
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		case <-s.refresh:
			err = s.sendSnapshot()
		case <-ticker.C:
			err = s.sendSnapshot()
		}
		if err != nil {
			s.log.Infow("ws_write_failed", "err", err)
			return
		}
	}
}

// read handles control frames and client requests until the connection closes.
func (s *wsStream) read() {
	defer close(s.done)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Infow("ws_read_closed", "err", err)
			return
		}
		var env wsEnvelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Type != msgRefresh {
			s.log.Debugw("ws_client_message_ignored", "size", len(msg))
			continue
		}
		select {
		case s.refresh <- struct{}{}:
		default: // a refresh is already pending
		}
	}
}

func (s *wsStream) sendSnapshot() error {
	return s.write(wsEnvelope{Type: msgSnapshot, Data: s.monitor.Snapshot()})
}

func (s *wsStream) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}
