package models

import (
	"encoding/json"
	"time"
)

// Metric keys carried by readings.
const (
	MetricAgeYears    = "ageYears"
	MetricHealthScore = "healthScore"
	MetricTemperature = "temperature"
	MetricVoltage     = "voltage"
	MetricCurrent     = "current"
	MetricPower       = "power"
	MetricEfficiency  = "efficiency"
	MetricFrequency   = "frequency"

	// solar
	MetricIrradiance  = "irradiance"
	MetricModuleTemp  = "moduleTemperature"
	MetricAmbientTemp = "ambientTemperature"
	MetricDCPower     = "dcPower"
	MetricDCVoltage   = "dcVoltage"
	MetricDCCurrent   = "dcCurrent"

	// battery
	MetricSOC               = "soc"
	MetricCycleCount        = "cycleCount"
	MetricRemainingCapacity = "remainingCapacity"

	// inverter
	MetricInputPower  = "inputPower"
	MetricOutputPower = "outputPower"

	// ev charger
	MetricIsCharging            = "isCharging"
	MetricChargingPower         = "chargingPower"
	MetricEVSOC                 = "evSoc"
	MetricChargingTimeRemaining = "chargingTimeRemaining"

	// grid
	MetricPrice       = "price"
	MetricPowerFactor = "powerFactor"
)

// Metrics maps metric names to float or bool values.
type Metrics map[string]any

// Float returns the numeric value under key, or def when it is missing or not numeric.
func (m Metrics) Float(key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case bool:
		if n {
			return 1
		}
		return 0
	}
	return def
}

// Bool returns the boolean value under key, or def when it is missing.
// Numeric values are true when non-zero.
func (m Metrics) Bool(key string, def bool) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return def
}

// Has reports whether key is present.
func (m Metrics) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Reading is one timestamped telemetry sample of a device.
type Reading struct {
	DeviceID     string       `json:"deviceId"`
	DeviceClass  DeviceClass  `json:"deviceClass"`
	Location     string       `json:"location,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Metrics      Metrics      `json:"metrics"`
	HealthStatus HealthStatus `json:"healthStatus,omitempty"`
}

// BatteryMetrics is the typed battery view of a Reading.
type BatteryMetrics struct {
	SOC         float64 // percent
	Temperature float64
	CycleCount  float64
	HealthScore float64
	AgeYears    float64
}

// NewBatteryMetrics reads battery fields, defaulting soc=50, temperature=25,
// cycleCount=0, healthScore=100, ageYears=0.
func NewBatteryMetrics(r Reading) BatteryMetrics {
	return BatteryMetrics{
		SOC:         r.Metrics.Float(MetricSOC, 50),
		Temperature: r.Metrics.Float(MetricTemperature, 25),
		CycleCount:  r.Metrics.Float(MetricCycleCount, 0),
		HealthScore: r.Metrics.Float(MetricHealthScore, 100),
		AgeYears:    r.Metrics.Float(MetricAgeYears, 0),
	}
}

// SolarMetrics is the typed solar view of a Reading.
type SolarMetrics struct {
	Efficiency        float64 // percent
	ModuleTemperature float64
	DCPower           float64
	Irradiance        float64
	AgeYears          float64
}

// NewSolarMetrics defaults efficiency=18, moduleTemperature=25, dcPower=0, irradiance=0.
func NewSolarMetrics(r Reading) SolarMetrics {
	return SolarMetrics{
		Efficiency:        r.Metrics.Float(MetricEfficiency, 18),
		ModuleTemperature: r.Metrics.Float(MetricModuleTemp, 25),
		DCPower:           r.Metrics.Float(MetricDCPower, 0),
		Irradiance:        r.Metrics.Float(MetricIrradiance, 0),
		AgeYears:          r.Metrics.Float(MetricAgeYears, 0),
	}
}

// InverterMetrics is the typed inverter view of a Reading.
type InverterMetrics struct {
	Efficiency  float64 // percent
	Temperature float64
	Frequency   float64
	Voltage     float64
	AgeYears    float64
}

// NewInverterMetrics defaults efficiency=96, temperature=25, frequency=50, voltage=415.
func NewInverterMetrics(r Reading) InverterMetrics {
	return InverterMetrics{
		Efficiency:  r.Metrics.Float(MetricEfficiency, 96),
		Temperature: r.Metrics.Float(MetricTemperature, 25),
		Frequency:   r.Metrics.Float(MetricFrequency, 50),
		Voltage:     r.Metrics.Float(MetricVoltage, 415),
		AgeYears:    r.Metrics.Float(MetricAgeYears, 0),
	}
}

// EVChargerMetrics is the typed EV charger view of a Reading.
type EVChargerMetrics struct {
	Temperature   float64
	IsCharging    bool
	ChargingPower float64
	AgeYears      float64
}

// NewEVChargerMetrics defaults temperature=25, isCharging=false, chargingPower=0.
func NewEVChargerMetrics(r Reading) EVChargerMetrics {
	return EVChargerMetrics{
		Temperature:   r.Metrics.Float(MetricTemperature, 25),
		IsCharging:    r.Metrics.Bool(MetricIsCharging, false),
		ChargingPower: r.Metrics.Float(MetricChargingPower, 0),
		AgeYears:      r.Metrics.Float(MetricAgeYears, 0),
	}
}

// GridMetrics is the typed grid view of a Reading.
type GridMetrics struct {
	Frequency   float64
	Voltage     float64
	PowerFactor float64
}

// NewGridMetrics defaults frequency=50, voltage=415, powerFactor=0.95.
func NewGridMetrics(r Reading) GridMetrics {
	return GridMetrics{
		Frequency:   r.Metrics.Float(MetricFrequency, 50),
		Voltage:     r.Metrics.Float(MetricVoltage, 415),
		PowerFactor: r.Metrics.Float(MetricPowerFactor, 0.95),
	}
}
