package diagnostics

import (
	"fmt"

	"smart_ems/internal/models"
)

// idlePenalty is charged on the 0..100 scale when no vehicle is charging.
const idlePenalty = 10.0

func diagnoseEVCharger(r models.Reading) models.DiagnosticResult {
	m := models.NewEVChargerMetrics(r)

	tempPen := penalty((m.Temperature - 25) / 15)
	agePen := penalty(m.AgeYears / 10)
	usagePen := 0.0
	if !m.IsCharging {
		usagePen = idlePenalty
	}

	idx := healthIndex(
		[2]float64{0.4, tempPen},
		[2]float64{0.4, agePen},
		[2]float64{0.2, usagePen},
	)
	status := models.StatusFromHealth(idx)

	res := models.DiagnosticResult{
		Component:   models.ClassEVCharger.Label(),
		HealthIndex: idx,
		Status:      status,
		RootCause: map[string]float64{
			"thermal_stress":   tempPen / 100,
			"age_degradation":  agePen / 100,
			"underutilization": usagePen / 100,
		},
	}

	switch {
	case m.Temperature > 40:
		res.Message = fmt.Sprintf("EV charger temperature: %.1f°C (High). Likely cause: Poor ventilation or high ambient temperature. "+
			"Recommendation: Check ventilation and consider thermal management upgrade.", m.Temperature)
	case !m.IsCharging && m.AgeYears > 3:
		res.Message = fmt.Sprintf("EV charger health: %.1f%% (%s). No recent usage detected. Consider maintenance check.", idx, label(status))
	default:
		res.Message = fmt.Sprintf("EV charger health: %.1f%% (%s). Operating normally.", idx, label(status))
	}

	if m.Temperature > 40 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("High charger temperature: %.1f°C", m.Temperature))
		res.Recommendations = append(res.Recommendations, "Check ventilation and thermal management")
	}
	if m.AgeYears > 5 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Charger aging: %.1f years old", m.AgeYears))
		res.Recommendations = append(res.Recommendations, "Schedule preventive maintenance")
	}
	if !m.IsCharging && m.AgeYears > 2 {
		res.Warnings = append(res.Warnings, "No recent charging activity detected")
		res.Recommendations = append(res.Recommendations, "Test charger functionality")
	}
	return res
}
