package diagnostics

import (
	"fmt"
	"math"
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/models"
)

// diagnoser turns one reading into a health assessment.
type diagnoser func(r models.Reading) models.DiagnosticResult

// Engine scores device health from readings. It keeps no state between calls.
type Engine struct {
	log        *logger.Logger
	now        func() time.Time
	diagnosers map[models.DeviceClass]diagnoser
}

// NewEngine returns an engine with the built-in per-class models.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		log: log,
		now: time.Now,
		diagnosers: map[models.DeviceClass]diagnoser{
			models.ClassBattery:        diagnoseBattery,
			models.ClassSolarPanel:     diagnoseSolar,
			models.ClassInverter:       diagnoseInverter,
			models.ClassEVCharger:      diagnoseEVCharger,
			models.ClassGridConnection: diagnoseGrid,
		},
	}
}

// Diagnose assesses a single reading. ok is false for unknown classes or when
// the class model fails.
func (e *Engine) Diagnose(r models.Reading) (res models.DiagnosticResult, ok bool) {
	fn, found := e.diagnosers[r.DeviceClass]
	if !found {
		e.log.Warnw("diagnose_unknown_class", "device_id", r.DeviceID, "class", r.DeviceClass)
		return models.DiagnosticResult{}, false
	}
	defer func() {
		if p := recover(); p != nil {
			e.log.Errorw("diagnose_failed", "device_id", r.DeviceID, "class", r.DeviceClass, "err", fmt.Sprint(p))
			res, ok = models.DiagnosticResult{}, false
		}
	}()

	res = fn(r)
	res.DeviceID = r.DeviceID
	res.Timestamp = r.Timestamp
	if res.Timestamp.IsZero() {
		res.Timestamp = e.now()
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}
	return res, true
}

// DiagnoseAll assesses every reading; failures are skipped.
func (e *Engine) DiagnoseAll(readings []models.Reading) []models.DiagnosticResult {
	out := make([]models.DiagnosticResult, 0, len(readings))
	for _, r := range readings {
		if res, ok := e.Diagnose(r); ok {
			out = append(out, res)
		}
	}
	return out
}

// penalty clamps a normalized ratio to [0,1] and scales it to 0..100.
func penalty(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return 0
	}
	return math.Max(0, math.Min(1, ratio)) * 100
}

// healthIndex subtracts weighted 0..100 penalties from 100, clamped to [0,100].
func healthIndex(terms ...[2]float64) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t[0] * t[1]
	}
	return math.Max(0, math.Min(100, 100-sum))
}

var statusLabels = map[models.HealthStatus]string{
	models.HealthExcellent: "Excellent",
	models.HealthGood:      "Good",
	models.HealthFair:      "Fair",
	models.HealthPoor:      "Poor",
	models.HealthCritical:  "Critical",
}

func label(s models.HealthStatus) string { return statusLabels[s] }
