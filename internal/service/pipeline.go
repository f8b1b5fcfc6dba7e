package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/logger"
	"smart_ems/internal/models"
	"smart_ems/internal/notify"
	"smart_ems/internal/repository"
	"smart_ems/internal/telemetry"
)

// ----------- Pipeline defaults -----------
const (
	DefaultInterval        = 5 * time.Second
	DefaultHistorySize     = 1000
	DefaultRetention       = 24 * time.Hour
	DefaultCleanupInterval = time.Hour
)

var errNoSource = errors.New("pipeline has no reading source")

// Clock is the time source of the pipeline. After is the only place the
// loop waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now().UTC() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// ReadingSource yields the batch for one tick. The synthetic generator and
// the MQTT ingest source both satisfy it.
type ReadingSource interface {
	Read(ctx context.Context, now time.Time) ([]models.Reading, error)
}

// fleetState is everything the pipeline owns. Writers (ticks and alert
// lifecycle calls) hold mu for the whole state change; readers hold it shared,
// so a reader sees either all of a tick or none of it. Event log appends run
// after mu is released.
type fleetState struct {
	mu          sync.RWMutex
	registry    *telemetry.Registry
	readings    *repository.Ring[models.Reading]
	diagnostics *repository.Ring[models.DiagnosticResult]
	alerts      *alerting.Engine
}

func newFleetState(reg *telemetry.Registry, alerts *alerting.Engine, historySize int) *fleetState {
	return &fleetState{
		registry:    reg,
		readings:    repository.NewRing[models.Reading](historySize),
		diagnostics: repository.NewRing[models.DiagnosticResult](historySize),
		alerts:      alerts,
	}
}

// PipelineService runs ticks, manually or on a timer.
type PipelineService struct {
	st        *fleetState
	source    ReadingSource
	diag      *diagnostics.Engine
	alerts    *AlertService
	publisher notify.Publisher
	clock     Clock
	log       *logger.Logger

	retention       time.Duration
	cleanupInterval time.Duration

	seq uint64 // guarded by st.mu
}

func NewPipelineService(st *fleetState, d Deps, alerts *AlertService) *PipelineService {
	return &PipelineService{
		st:              st,
		source:          d.Source,
		diag:            d.Diagnostics,
		alerts:          alerts,
		publisher:       d.Publisher,
		clock:           d.Clock,
		log:             d.Log,
		retention:       d.Retention,
		cleanupInterval: d.CleanupInterval,
	}
}

// Tick reads one batch, diagnoses it, raises alerts and appends everything to
// the histories. The whole cycle holds the writer lock, so no partial tick is
// ever observable. Lifecycle events and publishing happen after the lock is
// released.
func (s *PipelineService) Tick(ctx context.Context) (models.TickResult, error) {
	res, events, err := s.tick(ctx)
	if err != nil {
		return res, err
	}
	s.alerts.appendEvents(ctx, events)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, res); err != nil {
			s.log.Warnw("tick_publish_failed", "seq", res.Seq, "err", err)
		}
	}
	return res, nil
}

func (s *PipelineService) tick(ctx context.Context) (models.TickResult, []models.AlertEvent, error) {
	if s.source == nil {
		return models.TickResult{}, nil, errNoSource
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	now := s.clock.Now()
	readings, err := s.source.Read(ctx, now)
	if err != nil {
		return models.TickResult{}, nil, fmt.Errorf("read batch: %w", err)
	}
	diags := s.diag.DiagnoseAll(readings)
	alerts, events := s.alerts.evaluate(readings, diags)

	s.st.readings.Push(readings...)
	s.st.diagnostics.Push(diags...)
	s.seq++

	if alerts == nil {
		alerts = []models.Alert{}
	}
	return models.TickResult{
		Seq:         s.seq,
		Timestamp:   now,
		Readings:    readings,
		Diagnostics: diags,
		Alerts:      alerts,
	}, events, nil
}

// DiagnoseAll diagnoses the given readings and records the results in the
// diagnostic history. Readings that cannot be diagnosed are skipped.
func (s *PipelineService) DiagnoseAll(_ context.Context, readings []models.Reading) []models.DiagnosticResult {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	out := s.diag.DiagnoseAll(readings)
	s.st.diagnostics.Push(out...)
	return out
}

// Run ticks immediately, then waits interval after each tick completes. A slow
// tick therefore delays the next one. Cancellation is only observed between
// ticks. Tick failures and panics are logged and the loop continues.
func (s *PipelineService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	lastSweep := s.clock.Now()
	s.log.Infow("pipeline_started", "interval", interval.String())
	for ctx.Err() == nil {
		s.safeTick(ctx)

		if s.cleanupInterval > 0 {
			if now := s.clock.Now(); now.Sub(lastSweep) >= s.cleanupInterval {
				s.alerts.Cleanup(ctx, s.retention)
				lastSweep = now
			}
		}

		select {
		case <-ctx.Done():
		case <-s.clock.After(interval):
		}
	}
	s.log.Infow("pipeline_stopped", "ticks", s.ticks())
}

func (s *PipelineService) safeTick(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Errorw("tick_panic", "panic", fmt.Sprint(p))
		}
	}()
	res, err := s.Tick(ctx)
	if err != nil {
		s.log.Errorw("tick_failed", "err", err)
		return
	}
	s.log.Debugw("tick_done", "seq", res.Seq, "readings", len(res.Readings), "alerts", len(res.Alerts))
}

func (s *PipelineService) ticks() uint64 {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.seq
}
