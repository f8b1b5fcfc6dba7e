package telemetry

import (
	"math"

	"smart_ems/internal/models"
)

const (
	siteLatitudeDeg     = 22.0
	solarRatedEff       = 0.18
	solarTempCoeff      = -0.004 // per °C above 25
	solarDegradePerYear = 0.005
)

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// solarElevation is a simplified solar elevation angle in degrees, never negative.
func solarElevation(hour, dayOfYear int) float64 {
	hourAngle := float64(hour-12) * 15
	decl := 23.45 * math.Sin(radians(360*float64(284+dayOfYear)/365))
	lat := radians(siteLatitudeDeg)
	d := radians(decl)
	elev := degrees(math.Asin(math.Sin(d)*math.Sin(lat) + math.Cos(d)*math.Cos(lat)*math.Cos(radians(hourAngle))))
	return math.Max(0, elev)
}

// ambientTemperature follows a daily sine around 25 °C with ±5 °C noise.
func ambientTemperature(rng Rand, hour int) float64 {
	return 25 + 10*math.Sin(2*math.Pi*float64(hour)/24) + uniform(rng, -5, 5)
}

func generateSolar(d models.Device, env tickEnv, rng Rand) models.Metrics {
	baseIrr := math.Max(0, 1000*math.Sin(radians(solarElevation(env.hour, env.dayOfYear))))
	irradiance := baseIrr * uniform(rng, 0.3, 1.0)

	ambient := ambientTemperature(rng, env.hour)
	moduleTemp := ambient + irradiance*0.03

	eff := solarRatedEff * (1 + solarTempCoeff*(moduleTemp-25)) * (1 - solarDegradePerYear*d.AgeYears)

	dcPower := irradiance * d.Capacity * eff / 1000
	dcVoltage := 400 + uniform(rng, -20, 20)
	dcCurrent := 0.0
	if dcVoltage > 0 {
		dcCurrent = dcPower * 1000 / dcVoltage
	}

	return models.Metrics{
		models.MetricDCPower:     round(dcPower, 2),
		models.MetricDCVoltage:   round(dcVoltage, 1),
		models.MetricDCCurrent:   round(dcCurrent, 2),
		models.MetricIrradiance:  round(irradiance, 1),
		models.MetricModuleTemp:  round(moduleTemp, 1),
		models.MetricAmbientTemp: round(ambient, 1),
		models.MetricEfficiency:  round(eff*100, 2),
		models.MetricHealthScore: round(solarHealth(d, dcPower, moduleTemp, eff), 1),
		models.MetricAgeYears:    round(d.AgeYears, 1),
	}
}

// solarHealth scores age, heat, efficiency shortfall and output shortfall against 80% of capacity.
func solarHealth(d models.Device, power, moduleTemp, eff float64) float64 {
	agePen := math.Min(1, d.AgeYears/20)
	tempPen := math.Max(0, (moduleTemp-25)/30)

	expectedEff := solarRatedEff * (1 - agePen*0.1)
	effPen := math.Max(0, (expectedEff-eff)/expectedEff)

	expectedPower := d.Capacity * 0.8
	powerPen := math.Max(0, (expectedPower-power)/expectedPower)

	score := 100 - (0.3*agePen+0.2*tempPen+0.3*effPen+0.2*powerPen)*100
	return clamp(score, 0, 100)
}
