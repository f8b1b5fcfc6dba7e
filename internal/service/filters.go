package service

import "time"

// LogFilter narrows the alert event log.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "RAISED", "ACKNOWLEDGED", "RESOLVED", "PURGED"
	AlertID string
}
