package service

import (
	"context"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/logger"
	"smart_ems/internal/models"
	"smart_ems/internal/repository"

	"github.com/google/uuid"
)

// AlertService serializes alert mutations with ticks and records every
// lifecycle change in the event log.
type AlertService struct {
	st        *fleetState
	eventRepo repository.EventRepo
	clock     Clock
	log       *logger.Logger
}

func NewAlertService(st *fleetState, eventRepo repository.EventRepo, clock Clock, log *logger.Logger) *AlertService {
	return &AlertService{st: st, eventRepo: eventRepo, clock: clock, log: log}
}

// Evaluate raises at most one alert per reading.
func (s *AlertService) Evaluate(ctx context.Context, readings []models.Reading, diags []models.DiagnosticResult) []models.Alert {
	s.st.mu.Lock()
	raised, events := s.evaluate(readings, diags)
	s.st.mu.Unlock()

	s.appendEvents(ctx, events)
	return raised
}

// evaluate expects mu to be held. The RAISED events are returned for the
// caller to append once the lock is released.
func (s *AlertService) evaluate(readings []models.Reading, diags []models.DiagnosticResult) ([]models.Alert, []models.AlertEvent) {
	raised := s.st.alerts.Evaluate(readings, diags)
	events := make([]models.AlertEvent, 0, len(raised))
	for _, a := range raised {
		events = append(events, s.newEvent(models.EventRaised, a, a.Title, map[string]any{
			"rule":     a.Rule,
			"severity": a.Severity.String(),
			"priority": a.PriorityScore,
		}))
	}
	return raised, events
}

// Acknowledge returns false for unknown or resolved alerts.
func (s *AlertService) Acknowledge(ctx context.Context, id string) bool {
	s.st.mu.Lock()
	before, _ := s.st.alerts.Get(id)
	if !s.st.alerts.Acknowledge(id) {
		s.st.mu.Unlock()
		return false
	}
	var events []models.AlertEvent
	if !before.Acknowledged {
		events = append(events, s.newEvent(models.EventAcknowledged, before, "Alert acknowledged", nil))
	}
	s.st.mu.Unlock()

	s.appendEvents(ctx, events)
	return true
}

// Resolve returns false for unknown alerts. Resolving twice is a no-op.
func (s *AlertService) Resolve(ctx context.Context, id string) bool {
	s.st.mu.Lock()
	before, _ := s.st.alerts.Get(id)
	if !s.st.alerts.Resolve(id) {
		s.st.mu.Unlock()
		return false
	}
	var events []models.AlertEvent
	if !before.Resolved {
		events = append(events, s.newEvent(models.EventResolved, before, "Alert resolved", nil))
	}
	s.st.mu.Unlock()

	s.appendEvents(ctx, events)
	return true
}

// Cleanup purges alerts resolved more than retention ago.
func (s *AlertService) Cleanup(ctx context.Context, retention time.Duration) []models.Alert {
	s.st.mu.Lock()
	removed := s.st.alerts.Cleanup(retention)
	events := make([]models.AlertEvent, 0, len(removed))
	for _, a := range removed {
		events = append(events, s.newEvent(models.EventPurged, a, "Resolved alert purged", map[string]any{
			"retention_hours": retention.Hours(),
		}))
	}
	s.st.mu.Unlock()

	s.appendEvents(ctx, events)
	if len(removed) > 0 {
		s.log.Infow("alerts_purged", "count", len(removed), "retention", retention.String())
	}
	return removed
}

func (s *AlertService) Get(id string) (models.Alert, bool) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.Get(id)
}

func (s *AlertService) Active() []models.Alert {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.Active()
}

func (s *AlertService) BySeverity(sev models.Severity) []models.Alert {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.BySeverity(sev)
}

func (s *AlertService) Prioritize() []models.Alert {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.Prioritize()
}

func (s *AlertService) Summary() alerting.Summary {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.Summary()
}

func (s *AlertService) History(n int) []models.Alert {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.alerts.History(n)
}

// newEvent stamps the event at the time of the state change.
func (s *AlertService) newEvent(typ string, a models.Alert, desc string, meta map[string]any) models.AlertEvent {
	ev := models.AlertEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.clock.Now().UTC(),
		Type:        typ,
		AlertID:     a.ID,
		DeviceID:    a.DeviceID,
		Description: desc,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	return ev
}

// appendEvents must be called without mu held: repositories are free to read
// fleet state back while appending.
func (s *AlertService) appendEvents(ctx context.Context, events []models.AlertEvent) {
	if s.eventRepo == nil {
		return
	}
	for _, ev := range events {
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			s.log.Warnw("alert_event_append_failed", "alert_id", ev.AlertID, "type", ev.Type, "err", err)
		}
	}
}
