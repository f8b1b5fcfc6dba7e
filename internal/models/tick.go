package models

import "time"

// TickResult is everything one pipeline cycle produced.
type TickResult struct {
	Seq         uint64             `json:"seq"`
	Timestamp   time.Time          `json:"timestamp"`
	Readings    []Reading          `json:"readings"`
	Diagnostics []DiagnosticResult `json:"diagnostics"`
	Alerts      []Alert            `json:"alerts"`
}
