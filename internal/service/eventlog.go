package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart_ems/internal/models"
	"smart_ems/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidEventType = errors.New("invalid event type: must be RAISED, ACKNOWLEDGED, RESOLVED or PURGED")
)

var knownEventTypes = map[string]bool{
	models.EventRaised:       true,
	models.EventAcknowledged: true,
	models.EventResolved:     true,
	models.EventPurged:       true,
}

// IsInvalidFilter reports whether List rejected the filter itself.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidEventType)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range
// and event type.
func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{
		From:    normalizeToUTC(f.From),
		To:      normalizeToUTC(f.To),
		Type:    normalizeEventType(f.Type),
		AlertID: strings.TrimSpace(f.AlertID),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	if out.Type != "" && !knownEventTypes[out.Type] {
		return LogFilter{}, errInvalidEventType
	}
	return out, nil
}

// List returns matching alert events, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.AlertEvent, error) {
	nf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type, nf.AlertID)
}
