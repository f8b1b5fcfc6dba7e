package diagnostics

import (
	"fmt"

	"smart_ems/internal/models"
)

func diagnoseSolar(r models.Reading) models.DiagnosticResult {
	m := models.NewSolarMetrics(r)

	expected := 18 * (1 - m.AgeYears*0.005)
	effPen := 0.0
	if expected > 0 {
		effPen = penalty((expected - m.Efficiency) / expected)
	}
	tempPen := penalty((m.ModuleTemperature - 25) / 30)
	agePen := penalty(m.AgeYears / 25)

	idx := healthIndex(
		[2]float64{0.5, effPen},
		[2]float64{0.3, tempPen},
		[2]float64{0.2, agePen},
	)
	status := models.StatusFromHealth(idx)

	res := models.DiagnosticResult{
		Component:   models.ClassSolarPanel.Label(),
		HealthIndex: idx,
		Status:      status,
		RootCause: map[string]float64{
			"efficiency_loss": effPen / 100,
			"thermal_stress":  tempPen / 100,
			"age_degradation": agePen / 100,
		},
	}

	if m.Efficiency < expected*0.9 {
		res.Message = fmt.Sprintf("Solar panel efficiency: %.1f%% (Expected: %.1f%%). Likely cause: Dust accumulation on panels (70%% probability). "+
			"Recommendation: Schedule cleaning maintenance within 7 days to prevent further 2-3%% efficiency loss.", m.Efficiency, expected)
		res.Warnings = append(res.Warnings, fmt.Sprintf("Efficiency below expected: %.1f%% vs %.1f%%", m.Efficiency, expected))
		res.Recommendations = append(res.Recommendations, "Schedule panel cleaning and inspection")
	} else {
		res.Message = fmt.Sprintf("Solar panel health: %.1f%% (%s). Performance within expected range. Continue normal operation.", idx, label(status))
	}
	if m.ModuleTemperature > 45 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("High module temperature: %.1f°C", m.ModuleTemperature))
		res.Recommendations = append(res.Recommendations, "Check ventilation and consider cooling measures")
	}
	if m.AgeYears > 15 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Panels aging: %.1f years old", m.AgeYears))
		res.Recommendations = append(res.Recommendations, "Plan for panel replacement assessment")
	}
	return res
}
