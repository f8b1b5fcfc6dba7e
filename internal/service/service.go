package service

import (
	"context"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/logger"
	"smart_ems/internal/models"
	"smart_ems/internal/notify"
	"smart_ems/internal/repository"
	"smart_ems/internal/telemetry"
)

// Pipeline drives the generate, diagnose and alert cycle.
// Stop Run via context cancellation in main() for graceful shutdown.
type Pipeline interface {
	Tick(ctx context.Context) (models.TickResult, error)
	DiagnoseAll(ctx context.Context, readings []models.Reading) []models.DiagnosticResult
	Run(ctx context.Context, interval time.Duration)
}

// Alerts exposes the live alert set and its lifecycle.
type Alerts interface {
	Evaluate(ctx context.Context, readings []models.Reading, diags []models.DiagnosticResult) []models.Alert
	Acknowledge(ctx context.Context, id string) bool
	Resolve(ctx context.Context, id string) bool
	Cleanup(ctx context.Context, retention time.Duration) []models.Alert
	Get(id string) (models.Alert, bool)
	Active() []models.Alert
	BySeverity(s models.Severity) []models.Alert
	Prioritize() []models.Alert
	Summary() alerting.Summary
	History(n int) []models.Alert
}

// Monitoring exposes read-only fleet state.
type Monitoring interface {
	Devices() []models.Device
	DeviceSummary() DeviceSummary
	HealthSummary() (diagnostics.Summary, error)
	LatestReading(deviceID string) (models.Reading, bool)
	LatestReadings() []models.Reading
	Snapshot() Snapshot
}

// Exporter renders recent history for download.
type Exporter interface {
	Export(format string) ([]byte, error)
}

// EventLog exposes the alert lifecycle audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AlertEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Pipeline
	Alerts
	Monitoring
	Exporter
	EventLog
}

// Deps are the collaborators the services are built from. Zero values get
// defaults: real clock, no publisher, fresh engines, DefaultHistorySize.
// A zero CleanupInterval disables the periodic retention sweep.
type Deps struct {
	Log         *logger.Logger
	Clock       Clock
	Registry    *telemetry.Registry
	Source      ReadingSource
	Diagnostics *diagnostics.Engine
	Alerts      *alerting.Engine
	Publisher   notify.Publisher

	HistorySize     int
	Retention       time.Duration
	CleanupInterval time.Duration
}

// NewService wires the pipeline state and the repository layer into the services.
func NewService(repos *repository.Repository, d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = RealClock{}
	}
	if d.HistorySize <= 0 {
		d.HistorySize = DefaultHistorySize
	}
	if d.Retention <= 0 {
		d.Retention = DefaultRetention
	}
	if d.Diagnostics == nil {
		d.Diagnostics = diagnostics.NewEngine(d.Log)
	}
	if d.Alerts == nil {
		d.Alerts = alerting.NewEngine(d.Log, alerting.WithClock(d.Clock.Now), alerting.WithHistorySize(d.HistorySize))
	}

	st := newFleetState(d.Registry, d.Alerts, d.HistorySize)
	alerts := NewAlertService(st, repos.EventRepo, d.Clock, d.Log)
	return &Service{
		Pipeline:   NewPipelineService(st, d, alerts),
		Alerts:     alerts,
		Monitoring: NewMonitoringService(st, d.Clock),
		Exporter:   NewExportService(st),
		EventLog:   NewEventLogService(repos.EventRepo),
	}
}
