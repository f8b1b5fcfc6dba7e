package diagnostics

import (
	"errors"
	"sort"
	"time"

	"smart_ems/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultSummaryWindow is how far back Summarize looks.
const DefaultSummaryWindow = 5 * time.Minute

var (
	ErrNoDiagnostics       = errors.New("no diagnostic data available")
	ErrNoRecentDiagnostics = errors.New("no recent diagnostic data")
)

// Summary is the fleet health rollup.
type Summary struct {
	OverallHealth   float64                        `json:"overallHealth"`
	Status          models.HealthStatus            `json:"status"`
	ComponentHealth map[string]float64             `json:"componentHealth"`
	ComponentStatus map[string]models.HealthStatus `json:"componentStatus"`
	TotalComponents int                            `json:"totalComponents"`
	Samples         int                            `json:"samples"`
	LastUpdate      time.Time                      `json:"lastUpdate"`
}

// Summarize averages the health index per component over results newer than
// now-window. The overall figure is the mean of the component means.
func Summarize(results []models.DiagnosticResult, now time.Time, window time.Duration) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, ErrNoDiagnostics
	}
	if window <= 0 {
		window = DefaultSummaryWindow
	}
	cutoff := now.Add(-window)

	sums := map[string]float64{}
	counts := map[string]int{}
	samples := 0
	for _, r := range results {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		sums[r.Component] += r.HealthIndex
		counts[r.Component]++
		samples++
	}
	if samples == 0 {
		return Summary{}, ErrNoRecentDiagnostics
	}

	names := make([]string, 0, len(sums))
	for c := range sums {
		names = append(names, c)
	}
	sort.Strings(names)

	s := Summary{
		ComponentHealth: make(map[string]float64, len(names)),
		ComponentStatus: make(map[string]models.HealthStatus, len(names)),
		TotalComponents: len(names),
		Samples:         samples,
		LastUpdate:      now,
	}
	total := 0.0
	for _, c := range names {
		avg := sums[c] / float64(counts[c])
		total += avg
		s.ComponentHealth[c] = round1(avg)
		s.ComponentStatus[c] = models.StatusFromHealth(avg)
	}
	overall := total / float64(len(names))
	s.OverallHealth = round1(overall)
	s.Status = models.StatusFromHealth(overall)
	return s, nil
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
