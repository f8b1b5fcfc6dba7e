package alerting

import (
	"math"

	"smart_ems/internal/models"
)

// Op is a threshold comparator.
type Op string

const (
	OpLTE       Op = "lte"         // value <= threshold
	OpGTE       Op = "gte"         // value >= threshold
	OpGT        Op = "gt"          // value > threshold
	OpEQ        Op = "eq"          // value == threshold
	OpAbsDevGTE Op = "abs_dev_gte" // |value - reference| >= threshold
)

// Condition is one comparison against a reading metric.
type Condition struct {
	Metric    string
	Op        Op
	Threshold float64
	Reference float64
	Default   float64 // used when the metric is missing
}

// Eval reports whether the condition holds and the observed metric value.
func (c Condition) Eval(m models.Metrics) (bool, float64) {
	v := m.Float(c.Metric, c.Default)
	switch c.Op {
	case OpLTE:
		return v <= c.Threshold, v
	case OpGTE:
		return v >= c.Threshold, v
	case OpGT:
		return v > c.Threshold, v
	case OpEQ:
		return v == c.Threshold, v
	case OpAbsDevGTE:
		return math.Abs(v-c.Reference) >= c.Threshold, v
	}
	return false, v
}

// Rule is a threshold check for one device class. Rules sharing a Group are
// mutually exclusive: only the first crossed rule of a group fires.
type Rule struct {
	Class    models.DeviceClass
	Name     string
	Group    string
	Severity models.Severity
	When     Condition
	Guard    *Condition // optional second condition that must also hold
}

// Rules is the evaluation table, in evaluation order per class.
var Rules = []Rule{
	// battery
	{Class: models.ClassBattery, Name: "soc_critical", Group: "soc", Severity: models.SeverityEmergency,
		When: Condition{Metric: models.MetricSOC, Op: OpLTE, Threshold: 10, Default: 50}},
	{Class: models.ClassBattery, Name: "soc_low", Group: "soc", Severity: models.SeverityCritical,
		When: Condition{Metric: models.MetricSOC, Op: OpLTE, Threshold: 20, Default: 50}},
	{Class: models.ClassBattery, Name: "temp_critical", Group: "temperature", Severity: models.SeverityCritical,
		When: Condition{Metric: models.MetricTemperature, Op: OpGTE, Threshold: 55, Default: 25}},
	{Class: models.ClassBattery, Name: "temp_high", Group: "temperature", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricTemperature, Op: OpGTE, Threshold: 45, Default: 25}},
	{Class: models.ClassBattery, Name: "cycle_count_high", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricCycleCount, Op: OpGTE, Threshold: 5000}},
	{Class: models.ClassBattery, Name: "health_low", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricHealthScore, Op: OpLTE, Threshold: 85, Default: 100}},

	// solar
	{Class: models.ClassSolarPanel, Name: "efficiency_low", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricEfficiency, Op: OpLTE, Threshold: 15, Default: 18}},
	{Class: models.ClassSolarPanel, Name: "temp_high", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricModuleTemp, Op: OpGTE, Threshold: 60, Default: 25}},
	{Class: models.ClassSolarPanel, Name: "power_low", Severity: models.SeverityInfo,
		When:  Condition{Metric: models.MetricDCPower, Op: OpLTE, Threshold: 0.5},
		Guard: &Condition{Metric: models.MetricIrradiance, Op: OpGT, Threshold: 500}},

	// inverter
	{Class: models.ClassInverter, Name: "efficiency_low", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricEfficiency, Op: OpLTE, Threshold: 90, Default: 96}},
	{Class: models.ClassInverter, Name: "temp_critical", Severity: models.SeverityCritical,
		When: Condition{Metric: models.MetricTemperature, Op: OpGTE, Threshold: 60, Default: 25}},
	{Class: models.ClassInverter, Name: "frequency_deviation", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricFrequency, Op: OpAbsDevGTE, Threshold: 0.5, Reference: 50, Default: 50}},
	{Class: models.ClassInverter, Name: "voltage_deviation", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricVoltage, Op: OpAbsDevGTE, Threshold: 20, Reference: 415, Default: 415}},

	// ev charger
	{Class: models.ClassEVCharger, Name: "temp_high", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricTemperature, Op: OpGTE, Threshold: 50, Default: 25}},
	{Class: models.ClassEVCharger, Name: "charging_failure", Severity: models.SeverityCritical,
		When:  Condition{Metric: models.MetricIsCharging, Op: OpEQ, Threshold: 1},
		Guard: &Condition{Metric: models.MetricChargingPower, Op: OpEQ, Threshold: 0}},

	// grid
	{Class: models.ClassGridConnection, Name: "frequency_deviation", Severity: models.SeverityCritical,
		When: Condition{Metric: models.MetricFrequency, Op: OpAbsDevGTE, Threshold: 0.5, Reference: 50, Default: 50}},
	{Class: models.ClassGridConnection, Name: "voltage_deviation", Severity: models.SeverityCritical,
		When: Condition{Metric: models.MetricVoltage, Op: OpAbsDevGTE, Threshold: 25, Reference: 415, Default: 415}},
	{Class: models.ClassGridConnection, Name: "power_factor_low", Severity: models.SeverityWarning,
		When: Condition{Metric: models.MetricPowerFactor, Op: OpLTE, Threshold: 0.85, Default: 0.95}},
}

var (
	severityBase = map[models.Severity]float64{
		models.SeverityInfo:      1,
		models.SeverityWarning:   2,
		models.SeverityCritical:  3,
		models.SeverityEmergency: 4,
	}
	deviceMultiplier = map[models.DeviceClass]float64{
		models.ClassBattery:        1.2,
		models.ClassGridConnection: 1.1,
		models.ClassInverter:       1.0,
		models.ClassSolarPanel:     0.9,
		models.ClassEVCharger:      0.8,
	}
	ruleMultiplier = map[string]float64{
		"soc_critical":        1.5,
		"temp_critical":       1.3,
		"connection_lost":     1.4,
		"charging_failure":    1.2,
		"frequency_deviation": 1.1,
		"voltage_deviation":   1.1,
	}
)

// PriorityScore is round(severity base x device multiplier x rule multiplier).
func PriorityScore(sev models.Severity, class models.DeviceClass, rule string) int {
	dm, ok := deviceMultiplier[class]
	if !ok {
		dm = 1
	}
	rm, ok := ruleMultiplier[rule]
	if !ok {
		rm = 1
	}
	return int(math.Round(severityBase[sev] * dm * rm))
}
