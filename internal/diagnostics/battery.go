package diagnostics

import (
	"fmt"
	"math"

	"smart_ems/internal/models"
)

const batteryCycleRating = 6000.0

var batteryNarratives = map[models.HealthStatus]string{
	models.HealthExcellent: "All parameters within optimal ranges. Continue normal operation.",
	models.HealthGood:      "Minor degradation observed. Monitor temperature and cycling patterns.",
	models.HealthFair:      "Moderate degradation detected. Consider preventive maintenance.",
	models.HealthPoor:      "Significant degradation. Schedule maintenance within 30 days.",
	models.HealthCritical:  "Immediate attention required. Risk of failure within 6 months.",
}

func diagnoseBattery(r models.Reading) models.DiagnosticResult {
	m := models.NewBatteryMetrics(r)

	cyclePen := penalty(m.CycleCount / batteryCycleRating)
	tempPen := penalty(math.Abs(m.Temperature-25) / 20)
	dodPen := penalty((50 - m.SOC) / 50)
	agePen := penalty(m.AgeYears / 15)

	idx := healthIndex(
		[2]float64{0.2, cyclePen},
		[2]float64{0.3, tempPen},
		[2]float64{0.3, dodPen},
		[2]float64{0.2, agePen},
	)
	status := models.StatusFromHealth(idx)

	res := models.DiagnosticResult{
		Component:   models.ClassBattery.Label(),
		HealthIndex: idx,
		Status:      status,
		Message:     fmt.Sprintf("Battery health: %.1f%% (%s). %s", idx, label(status), batteryNarratives[status]),
		RootCause: map[string]float64{
			"thermal_stress":      tempPen / 100,
			"cycling_degradation": cyclePen / 100,
			"deep_discharge":      dodPen / 100,
			"age_related":         agePen / 100,
		},
	}

	if m.Temperature > 35 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("High temperature: %.1f°C (Optimal: 25°C). Heat exposure reduces lifespan by 2-3%% per 10°C above optimal.", m.Temperature))
		res.Recommendations = append(res.Recommendations, "Install additional cooling or relocate to shaded area.")
	}
	if m.CycleCount > 4000 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("High cycle count: %.0f cycles. Approaching 80%% of expected lifespan.", m.CycleCount))
		res.Recommendations = append(res.Recommendations, "Plan for battery replacement within 12-18 months.")
	}
	if m.SOC < 20 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Low state of charge: %.1f%%. Deep discharge can reduce lifespan by 10-15%%.", m.SOC))
		res.Recommendations = append(res.Recommendations, "Switch load to grid immediately. Reduce non-critical loads.")
	}
	if idx < 60 {
		res.Recommendations = append(res.Recommendations, "Schedule comprehensive battery health assessment.")
	}

	remaining := math.Max(0, 15-m.AgeYears-m.CycleCount/400)
	if remaining > 0 {
		res.ExpectedLifespan = fmt.Sprintf("%.1f years", remaining)
	} else {
		res.ExpectedLifespan = "End of life"
	}
	return res
}
