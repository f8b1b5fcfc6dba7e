package telemetry

import (
	"math"

	"smart_ems/internal/models"
)

const (
	gridNominalFrequency = 50.0
	gridNominalVoltage   = 415.0
)

func generateGrid(d models.Device, env tickEnv, rng Rand) models.Metrics {
	hour := float64(env.hour)

	frequency := gridNominalFrequency + uniform(rng, -0.2, 0.2)
	voltage := gridNominalVoltage + uniform(rng, -15, 15)

	// positive = import
	var power float64
	if env.hour >= 6 && env.hour <= 22 {
		power = uniform(rng, 100, d.Capacity*0.8)
	} else {
		power = uniform(rng, -d.Capacity*0.3, 50)
	}

	price := 0.12 + 0.05*math.Sin(2*math.Pi*(hour-6)/24) + uniform(rng, -0.02, 0.02)

	current := 0.0
	if voltage > 0 {
		current = power * 1000 / voltage
	}

	return models.Metrics{
		models.MetricPower:       round(power, 2),
		models.MetricFrequency:   round(frequency, 2),
		models.MetricVoltage:     round(voltage, 1),
		models.MetricCurrent:     round(current, 2),
		models.MetricPrice:       round(price, 3),
		models.MetricPowerFactor: round(0.95+uniform(rng, -0.05, 0.05), 3),
		models.MetricHealthScore: round(gridHealth(frequency, voltage), 1),
		models.MetricAgeYears:    round(d.AgeYears, 1),
	}
}

func gridHealth(frequency, voltage float64) float64 {
	freqPen := math.Abs(frequency-gridNominalFrequency) / 0.5
	voltPen := math.Abs(voltage-gridNominalVoltage) / 20
	return clamp(100-(0.5*freqPen+0.5*voltPen)*100, 0, 100)
}
