package models

import "time"

// HealthStatus is the coarse band a health value falls into.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
	HealthCritical  HealthStatus = "critical"
)

// HealthStatuses lists the bands from best to worst.
var HealthStatuses = []HealthStatus{HealthExcellent, HealthGood, HealthFair, HealthPoor, HealthCritical}

// StatusFromHealth maps a 0..100 health value to its band.
func StatusFromHealth(h float64) HealthStatus {
	switch {
	case h >= 90:
		return HealthExcellent
	case h >= 75:
		return HealthGood
	case h >= 60:
		return HealthFair
	case h >= 40:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// DiagnosticResult is the health assessment of one reading.
type DiagnosticResult struct {
	DeviceID         string             `json:"deviceId"`
	Component        string             `json:"component"`
	HealthIndex      float64            `json:"healthIndex"`
	Status           HealthStatus       `json:"status"`
	Message          string             `json:"message"`
	Warnings         []string           `json:"warnings"`
	Recommendations  []string           `json:"recommendations"`
	RootCause        map[string]float64 `json:"rootCause"`
	ExpectedLifespan string             `json:"expectedLifespan,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}
