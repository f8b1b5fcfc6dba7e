package alerting

import (
	"fmt"

	"smart_ems/internal/models"
)

type content struct {
	title, message, action, impact string
}

type contentKey struct {
	class models.DeviceClass
	rule  string
}

// contentFn renders alert text from the observed value and the rule threshold.
type contentFn func(v, threshold float64) content

var contents = map[contentKey]contentFn{
	{models.ClassBattery, "soc_critical"}: func(v, th float64) content {
		return content{"Battery SoC Critical",
			fmt.Sprintf("Battery SoC critical: %.1f%% (Threshold: %g%%)", v, th),
			"Switch load to grid immediately. Reduce non-critical loads. Check battery connections.",
			"Battery deep discharge can reduce lifespan by 10-15%. Risk of system shutdown."}
	},
	{models.ClassBattery, "soc_low"}: func(v, th float64) content {
		return content{"Battery SoC Low",
			fmt.Sprintf("Battery SoC low: %.1f%% (Threshold: %g%%)", v, th),
			"Monitor closely. Consider reducing load or switching to grid power.",
			"Continued low SoC may lead to deep discharge and battery damage."}
	},
	{models.ClassBattery, "temp_critical"}: func(v, th float64) content {
		return content{"Battery Temperature Critical",
			fmt.Sprintf("Battery temperature critical: %.1f°C (Threshold: %g°C)", v, th),
			"Immediate cooling required. Reduce charging rate. Check ventilation system.",
			"High temperature can cause thermal runaway and permanent damage."}
	},
	{models.ClassBattery, "temp_high"}: func(v, th float64) content {
		return content{"Battery Temperature High",
			fmt.Sprintf("Battery temperature high: %.1f°C (Threshold: %g°C)", v, th),
			"Monitor temperature. Ensure proper ventilation. Consider reducing charging rate.",
			"High temperature reduces battery efficiency and lifespan."}
	},
	{models.ClassBattery, "cycle_count_high"}: func(v, th float64) content {
		return content{"Battery Cycle Count High",
			fmt.Sprintf("Battery cycle count high: %.0f cycles (Threshold: %g)", v, th),
			"Plan for battery replacement. Monitor performance degradation.",
			"High cycle count indicates approaching end of useful life."}
	},
	{models.ClassBattery, "health_low"}: func(v, th float64) content {
		return content{"Battery Health Low",
			fmt.Sprintf("Battery health low: %.1f%% (Threshold: %g%%)", v, th),
			"Schedule battery health assessment. Consider replacement planning.",
			"Low health indicates significant degradation and reduced capacity."}
	},
	{models.ClassSolarPanel, "efficiency_low"}: func(v, th float64) content {
		return content{"Solar Panel Efficiency Low",
			fmt.Sprintf("Solar panel efficiency low: %.1f%% (Threshold: %g%%)", v, th),
			"Schedule panel cleaning and inspection. Check for shading or damage.",
			"Low efficiency reduces energy generation and system ROI."}
	},
	{models.ClassSolarPanel, "temp_high"}: func(v, th float64) content {
		return content{"Solar Panel Temperature High",
			fmt.Sprintf("Solar panel temperature high: %.1f°C (Threshold: %g°C)", v, th),
			"Check ventilation. Consider cooling measures. Monitor performance.",
			"High temperature reduces panel efficiency and can cause damage."}
	},
	{models.ClassSolarPanel, "power_low"}: func(v, _ float64) content {
		return content{"Solar Generation Low",
			fmt.Sprintf("Solar generation low: %.1f kW despite good irradiance", v),
			"Check panel connections. Inspect for damage or shading.",
			"Low generation reduces system performance and energy savings."}
	},
	{models.ClassInverter, "efficiency_low"}: func(v, th float64) content {
		return content{"Inverter Efficiency Low",
			fmt.Sprintf("Inverter efficiency low: %.1f%% (Threshold: %g%%)", v, th),
			"Schedule inverter maintenance. Check cooling system and connections.",
			"Low efficiency reduces energy conversion and increases losses."}
	},
	{models.ClassInverter, "temp_critical"}: func(v, th float64) content {
		return content{"Inverter Temperature Critical",
			fmt.Sprintf("Inverter temperature critical: %.1f°C (Threshold: %g°C)", v, th),
			"Check cooling system. Ensure proper ventilation. Reduce load if necessary.",
			"High temperature can cause inverter failure and system shutdown."}
	},
	{models.ClassInverter, "frequency_deviation"}: func(v, _ float64) content {
		return content{"Inverter Frequency Deviation",
			fmt.Sprintf("Inverter frequency deviation: %.2f Hz (Expected: 50.0 Hz)", v),
			"Check inverter settings. Monitor grid frequency. Contact technician if persistent.",
			"Frequency deviation can affect connected equipment and grid stability."}
	},
	{models.ClassInverter, "voltage_deviation"}: func(v, _ float64) content {
		return content{"Inverter Voltage Deviation",
			fmt.Sprintf("Inverter voltage deviation: %.1f V (Expected: 415 V)", v),
			"Check inverter settings. Monitor grid voltage. Contact technician if persistent.",
			"Voltage deviation can damage connected equipment."}
	},
	{models.ClassEVCharger, "temp_high"}: func(v, th float64) content {
		return content{"EV Charger Temperature High",
			fmt.Sprintf("EV charger temperature high: %.1f°C (Threshold: %g°C)", v, th),
			"Check ventilation. Reduce charging rate. Monitor temperature.",
			"High temperature can cause charger failure and safety issues."}
	},
	{models.ClassEVCharger, "charging_failure"}: func(_, _ float64) content {
		return content{"EV Charging Failure",
			"EV charger shows charging status but no power output",
			"Check charger connections. Restart charger. Contact technician if issue persists.",
			"Charging failure prevents EV charging and reduces system utilization."}
	},
	{models.ClassGridConnection, "frequency_deviation"}: func(v, _ float64) content {
		return content{"Grid Frequency Deviation",
			fmt.Sprintf("Grid frequency deviation: %.2f Hz (Expected: 50.0 Hz)", v),
			"Monitor grid stability. Consider backup power activation. Contact utility provider.",
			"Frequency deviation can affect system stability and connected equipment."}
	},
	{models.ClassGridConnection, "voltage_deviation"}: func(v, _ float64) content {
		return content{"Grid Voltage Deviation",
			fmt.Sprintf("Grid voltage deviation: %.1f V (Expected: 415 V)", v),
			"Monitor grid voltage. Contact utility provider for voltage regulation.",
			"Voltage deviation can damage equipment and affect system performance."}
	},
	{models.ClassGridConnection, "power_factor_low"}: func(v, th float64) content {
		return content{"Grid Power Factor Low",
			fmt.Sprintf("Grid power factor low: %.3f (Threshold: %g)", v, th),
			"Consider power factor correction equipment. Check load characteristics.",
			"Low power factor increases energy costs and reduces system efficiency."}
	},
}

func renderContent(class models.DeviceClass, rule string, v, threshold float64) content {
	if fn, ok := contents[contentKey{class, rule}]; ok {
		return fn(v, threshold)
	}
	return content{
		title:   "System Alert",
		message: fmt.Sprintf("Alert triggered for %s: %s", class, rule),
		action:  "Monitor system and contact technician if needed.",
		impact:  "System performance may be affected.",
	}
}
