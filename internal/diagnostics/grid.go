package diagnostics

import (
	"fmt"
	"math"

	"smart_ems/internal/models"
)

func diagnoseGrid(r models.Reading) models.DiagnosticResult {
	m := models.NewGridMetrics(r)

	freqDev := math.Abs(m.Frequency - 50)
	voltDev := math.Abs(m.Voltage - 415)

	freqPen := penalty(freqDev / 0.5)
	voltPen := penalty(voltDev / 20)
	pfPen := penalty((0.95 - m.PowerFactor) / 0.1)

	idx := healthIndex(
		[2]float64{0.4, freqPen},
		[2]float64{0.4, voltPen},
		[2]float64{0.2, pfPen},
	)
	status := models.StatusFromHealth(idx)

	res := models.DiagnosticResult{
		Component:   models.ClassGridConnection.Label(),
		HealthIndex: idx,
		Status:      status,
		RootCause: map[string]float64{
			"frequency_deviation": freqPen / 100,
			"voltage_deviation":   voltPen / 100,
			"power_factor":        pfPen / 100,
		},
	}

	switch {
	case freqDev > 0.2:
		res.Message = fmt.Sprintf("Grid frequency deviation: %.2f Hz (Expected: 50.0 Hz). Likely cause: Grid instability or load imbalance. "+
			"Recommendation: Monitor grid conditions and consider backup power activation.", m.Frequency)
	case voltDev > 15:
		res.Message = fmt.Sprintf("Grid voltage deviation: %.1f V (Expected: 415 V). Likely cause: Grid voltage regulation issues. "+
			"Recommendation: Contact utility provider for voltage regulation check.", m.Voltage)
	default:
		res.Message = fmt.Sprintf("Grid connection health: %.1f%% (%s). Grid parameters within acceptable range.", idx, label(status))
	}

	if freqDev > 0.2 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Frequency deviation: %.2f Hz", m.Frequency))
		res.Recommendations = append(res.Recommendations, "Monitor grid stability and consider backup power")
	}
	if voltDev > 15 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Voltage deviation: %.1f V", m.Voltage))
		res.Recommendations = append(res.Recommendations, "Contact utility provider for voltage regulation")
	}
	if m.PowerFactor < 0.9 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Low power factor: %.3f", m.PowerFactor))
		res.Recommendations = append(res.Recommendations, "Consider power factor correction equipment")
	}
	return res
}
