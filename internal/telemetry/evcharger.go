package telemetry

import (
	"math"

	"smart_ems/internal/models"
)

const evNominalVoltage = 400.0

func generateEVCharger(d models.Device, _ tickEnv, rng Rand) models.Metrics {
	// one in four chargers has a vehicle attached
	charging := rng.Intn(4) == 0

	var power, evSoc, remaining float64
	if charging {
		power = uniform(rng, 10, d.Capacity)
		evSoc = uniform(rng, 20, 90)
		remaining = uniform(rng, 30, 300)
	}

	ambient := 25 + uniform(rng, -5, 10)
	temp := ambient + power*0.05 + uniform(rng, 2, 8)

	current := 0.0
	if power > 0 {
		current = power * 1000 / evNominalVoltage
	}

	return models.Metrics{
		models.MetricIsCharging:            charging,
		models.MetricChargingPower:         round(power, 2),
		models.MetricEVSOC:                 round(evSoc, 1),
		models.MetricChargingTimeRemaining: round(remaining, 0),
		models.MetricTemperature:           round(temp, 1),
		models.MetricVoltage:               round(evNominalVoltage+uniform(rng, -20, 20), 1),
		models.MetricCurrent:               round(current, 2),
		models.MetricHealthScore:           round(evChargerHealth(d, temp), 1),
		models.MetricAgeYears:              round(d.AgeYears, 1),
	}
}

func evChargerHealth(d models.Device, temp float64) float64 {
	agePen := math.Min(1, d.AgeYears/10)
	tempPen := math.Max(0, (temp-35)/15)
	return clamp(100-(0.6*agePen+0.4*tempPen)*100, 0, 100)
}
