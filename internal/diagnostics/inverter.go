package diagnostics

import (
	"fmt"

	"smart_ems/internal/models"
)

func diagnoseInverter(r models.Reading) models.DiagnosticResult {
	m := models.NewInverterMetrics(r)

	expected := 96 * (1 - m.AgeYears*0.002)
	effPen := 0.0
	if expected > 0 {
		effPen = penalty((expected - m.Efficiency) / expected)
	}
	tempPen := penalty((m.Temperature - 25) / 20)
	agePen := penalty(m.AgeYears / 15)

	idx := healthIndex(
		[2]float64{0.4, effPen},
		[2]float64{0.3, tempPen},
		[2]float64{0.3, agePen},
	)
	status := models.StatusFromHealth(idx)

	res := models.DiagnosticResult{
		Component:   models.ClassInverter.Label(),
		HealthIndex: idx,
		Status:      status,
		RootCause: map[string]float64{
			"efficiency_loss": effPen / 100,
			"thermal_stress":  tempPen / 100,
			"age_degradation": agePen / 100,
		},
	}

	if m.Efficiency < expected*0.95 {
		res.Message = fmt.Sprintf("Inverter efficiency dropped %.1f%% below expected. Likely cause: Dust accumulation on heat sinks (70%% probability). "+
			"Recommendation: Schedule cleaning maintenance within 7 days to prevent further 2-3%% efficiency loss.", expected-m.Efficiency)
		res.Warnings = append(res.Warnings, fmt.Sprintf("Inverter efficiency below expected: %.1f%%", m.Efficiency))
		res.Recommendations = append(res.Recommendations, "Schedule inverter maintenance and cleaning")
	} else {
		res.Message = fmt.Sprintf("Inverter health: %.1f%% (%s). Performance within expected range.", idx, label(status))
	}
	if m.Temperature > 50 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("High inverter temperature: %.1f°C", m.Temperature))
		res.Recommendations = append(res.Recommendations, "Check cooling system and ventilation")
	}
	if m.AgeYears > 10 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Inverter aging: %.1f years old", m.AgeYears))
		res.Recommendations = append(res.Recommendations, "Plan for inverter replacement assessment")
	}
	return res
}
