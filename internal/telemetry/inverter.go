package telemetry

import (
	"math"

	"smart_ems/internal/models"
)

const (
	inverterRatedEff  = 0.96
	inverterTempCoeff = -0.002
)

func generateInverter(d models.Device, _ tickEnv, rng Rand) models.Metrics {
	input := uniform(rng, 0, d.Capacity)

	ambient := 25 + uniform(rng, -5, 10)
	temp := ambient + input*0.1 + uniform(rng, 5, 15)

	load := math.Min(1, input/d.Capacity)
	eff := inverterRatedEff * (1 + inverterTempCoeff*(temp-25)) * (0.8 + 0.2*load)
	output := input * eff

	return models.Metrics{
		models.MetricInputPower:  round(input, 2),
		models.MetricOutputPower: round(output, 2),
		models.MetricEfficiency:  round(eff*100, 2),
		models.MetricTemperature: round(temp, 1),
		models.MetricFrequency:   round(50+uniform(rng, -0.1, 0.1), 2),
		models.MetricVoltage:     round(415+uniform(rng, -10, 10), 1),
		models.MetricHealthScore: round(inverterHealth(d, temp, eff), 1),
		models.MetricAgeYears:    round(d.AgeYears, 1),
	}
}

func inverterHealth(d models.Device, temp, eff float64) float64 {
	tempPen := math.Max(0, (temp-40)/20)
	agePen := math.Min(1, d.AgeYears/15)
	effPen := math.Max(0, (inverterRatedEff-eff)/0.1)

	score := 100 - (0.4*tempPen+0.3*agePen+0.3*effPen)*100
	return clamp(score, 0, 100)
}
