package handlers

import (
	"context"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/models"
	"smart_ems/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockPipeline struct {
	tickRes   models.TickResult
	tickErr   error
	diagRes   []models.DiagnosticResult
	tickCalls int
	lastDiag  []models.Reading
}

func (m *mockPipeline) Tick(ctx context.Context) (models.TickResult, error) {
	m.tickCalls++
	return m.tickRes, m.tickErr
}
func (m *mockPipeline) DiagnoseAll(ctx context.Context, readings []models.Reading) []models.DiagnosticResult {
	m.lastDiag = readings
	return m.diagRes
}
func (m *mockPipeline) Run(ctx context.Context, interval time.Duration) {}

type mockAlerts struct {
	active      []models.Alert
	bySeverity  []models.Alert
	prioritized []models.Alert
	history     []models.Alert
	evaluated   []models.Alert
	purged      []models.Alert
	summary     alerting.Summary
	stored      map[string]models.Alert
	ackOK       bool
	resolveOK   bool

	lastSeverity  models.Severity
	lastLimit     int
	lastRetention time.Duration
	lastAckID     string
	lastResolveID string
	lastEval      []models.Reading
	lastEvalDiags []models.DiagnosticResult
}

func (m *mockAlerts) Evaluate(ctx context.Context, readings []models.Reading, diags []models.DiagnosticResult) []models.Alert {
	m.lastEval = readings
	m.lastEvalDiags = diags
	return m.evaluated
}
func (m *mockAlerts) Acknowledge(ctx context.Context, id string) bool {
	m.lastAckID = id
	return m.ackOK
}
func (m *mockAlerts) Resolve(ctx context.Context, id string) bool {
	m.lastResolveID = id
	return m.resolveOK
}
func (m *mockAlerts) Cleanup(ctx context.Context, retention time.Duration) []models.Alert {
	m.lastRetention = retention
	return m.purged
}
func (m *mockAlerts) Get(id string) (models.Alert, bool) {
	a, ok := m.stored[id]
	return a, ok
}
func (m *mockAlerts) Active() []models.Alert { return m.active }
func (m *mockAlerts) BySeverity(s models.Severity) []models.Alert {
	m.lastSeverity = s
	return m.bySeverity
}
func (m *mockAlerts) Prioritize() []models.Alert { return m.prioritized }
func (m *mockAlerts) Summary() alerting.Summary  { return m.summary }
func (m *mockAlerts) History(n int) []models.Alert {
	m.lastLimit = n
	return m.history
}

type mockMonitoring struct {
	devices   []models.Device
	summary   service.DeviceSummary
	health    diagnostics.Summary
	healthErr error
	latest    map[string]models.Reading
	snapshot  service.Snapshot
}

func (m *mockMonitoring) Devices() []models.Device             { return m.devices }
func (m *mockMonitoring) DeviceSummary() service.DeviceSummary { return m.summary }
func (m *mockMonitoring) HealthSummary() (diagnostics.Summary, error) {
	return m.health, m.healthErr
}
func (m *mockMonitoring) LatestReading(deviceID string) (models.Reading, bool) {
	r, ok := m.latest[deviceID]
	return r, ok
}
func (m *mockMonitoring) LatestReadings() []models.Reading {
	out := make([]models.Reading, 0, len(m.latest))
	for _, d := range m.devices {
		if r, ok := m.latest[d.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}
func (m *mockMonitoring) Snapshot() service.Snapshot { return m.snapshot }

type mockExporter struct {
	body       []byte
	err        error
	lastFormat string
}

func (m *mockExporter) Export(format string) ([]byte, error) {
	m.lastFormat = format
	return m.body, m.err
}

type mockEventLog struct {
	resp        []models.AlertEvent
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastType    string
	lastAlertID string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.AlertEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastAlertID = f.AlertID
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
