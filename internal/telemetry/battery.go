package telemetry

import (
	"math"

	"smart_ems/internal/models"
)

const batteryTempOptimum = 25.0

func generateBattery(d models.Device, env tickEnv, rng Rand) models.Metrics {
	hour := float64(env.hour)
	soc := clamp(0.5+0.3*math.Sin(2*math.Pi*(hour-6)/24)+uniform(rng, -0.1, 0.1), 0.1, 0.95)

	ambient := 25 + uniform(rng, -5, 10)
	temp := ambient + uniform(rng, 2, 8)

	// positive = charging
	var power float64
	if env.hour >= 6 && env.hour <= 18 {
		power = uniform(rng, 0, d.Capacity*0.5)
	} else {
		power = uniform(rng, -d.Capacity*0.3, 0)
	}

	voltage := 400 + soc*50 + uniform(rng, -10, 10)
	current := 0.0
	if voltage > 0 {
		current = power * 1000 / voltage
	}

	return models.Metrics{
		models.MetricSOC:               round(soc*100, 1),
		models.MetricPower:             round(power, 2),
		models.MetricVoltage:           round(voltage, 1),
		models.MetricCurrent:           round(current, 2),
		models.MetricTemperature:       round(temp, 1),
		models.MetricCycleCount:        float64(d.Attributes.CycleCount),
		models.MetricHealthScore:       round(batteryHealth(d, temp, soc), 1),
		models.MetricRemainingCapacity: round(d.Capacity*soc, 1),
		models.MetricAgeYears:          round(d.AgeYears, 1),
	}
}

// batteryHealth weighs cycling, distance from the optimum temperature, state of charge and age.
func batteryHealth(d models.Device, temp, soc float64) float64 {
	cycleLife := float64(d.Attributes.CycleLife)
	if cycleLife <= 0 {
		cycleLife = models.DefaultCycleLife
	}
	cyclePen := math.Min(1, float64(d.Attributes.CycleCount)/cycleLife)
	tempPen := math.Abs(temp-batteryTempOptimum) / 20
	agePen := math.Min(1, d.AgeYears/15)

	score := 100 - (0.2*cyclePen+0.3*tempPen+0.3*(1-soc)+0.2*agePen)*100
	return clamp(score, 0, 100)
}
