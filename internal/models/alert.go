package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity is an ordered alert level: Info < Warning < Critical < Emergency.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityEmergency
)

// Severities lists every level in ascending order.
var Severities = []Severity{SeverityInfo, SeverityWarning, SeverityCritical, SeverityEmergency}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity accepts the lowercase or uppercase label.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	case "emergency":
		return SeverityEmergency, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// MarshalText encodes the severity as its label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Alert is a single rule firing for a device together with its lifecycle flags.
type Alert struct {
	ID                string     `json:"id"`
	Timestamp         time.Time  `json:"timestamp"`
	Severity          Severity   `json:"severity"`
	DeviceID          string     `json:"deviceId"`
	Component         string     `json:"component"`
	Rule              string     `json:"rule"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	RecommendedAction string     `json:"recommendedAction"`
	ImpactAssessment  string     `json:"impactAssessment"`
	PriorityScore     int        `json:"priorityScore"`
	Acknowledged      bool       `json:"acknowledged"`
	Resolved          bool       `json:"resolved"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
}
