package telemetry

import (
	"errors"
	"fmt"

	"smart_ems/internal/models"
)

// ErrDuplicateDevice is returned when two devices share an id.
var ErrDuplicateDevice = errors.New("duplicate device id")

// FleetSpec sets how many devices of each class DefaultFleet creates.
type FleetSpec struct {
	SolarPanels     int `mapstructure:"solar_panels"`
	Batteries       int `mapstructure:"batteries"`
	Inverters       int `mapstructure:"inverters"`
	EVChargers      int `mapstructure:"ev_chargers"`
	GridConnections int `mapstructure:"grid_connections"`
}

// DefaultFleetSpec is the 50 device reference installation.
var DefaultFleetSpec = FleetSpec{
	SolarPanels:     15,
	Batteries:       5,
	Inverters:       8,
	EVChargers:      20,
	GridConnections: 2,
}

// Registry is the static device catalog. It is immutable after construction.
type Registry struct {
	devices []models.Device
	byID    map[string]int
}

// NewRegistry validates the devices and keeps them in the given order.
func NewRegistry(devices []models.Device) (*Registry, error) {
	r := &Registry{
		devices: make([]models.Device, 0, len(devices)),
		byID:    make(map[string]int, len(devices)),
	}
	for _, d := range devices {
		if d.ID == "" {
			return nil, models.ErrEmptyDeviceID
		}
		if !d.Class.Valid() {
			return nil, fmt.Errorf("%s: %w %q", d.ID, models.ErrUnknownClass, d.Class)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDevice, d.ID)
		}
		r.byID[d.ID] = len(r.devices)
		r.devices = append(r.devices, d)
	}
	return r, nil
}

// Devices returns a copy of the catalog in registry order.
func (r *Registry) Devices() []models.Device {
	out := make([]models.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Lookup finds a device by id.
func (r *Registry) Lookup(id string) (models.Device, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.Device{}, false
	}
	return r.devices[i], true
}

// Len is the number of devices.
func (r *Registry) Len() int { return len(r.devices) }

// CountByClass returns the number of devices per class.
func (r *Registry) CountByClass() map[models.DeviceClass]int {
	out := make(map[models.DeviceClass]int, len(models.DeviceClasses))
	for _, d := range r.devices {
		out[d.Class]++
	}
	return out
}

var (
	solarOrientations  = []string{"South", "South-East", "South-West"}
	batteryChemistries = []string{"Li-ion", "LiFePO4"}
	inverterMakers     = []string{"SMA", "Fronius", "Huawei", "Sungrow"}
	evConnectors       = []string{"CCS", "CHAdeMO", "Type2"}
)

// DefaultFleet builds the reference installation. Ages and attributes are drawn from rng.
func DefaultFleet(spec FleetSpec, rng Rand) ([]models.Device, error) {
	var out []models.Device
	add := func(id string, class models.DeviceClass, loc string, capacity, age float64, attrs models.DeviceAttributes) error {
		d, err := models.NewDevice(id, class, loc, capacity, age, attrs)
		if err != nil {
			return err
		}
		out = append(out, d)
		return nil
	}

	for i := 0; i < spec.SolarPanels; i++ {
		err := add(fmt.Sprintf("SP_%03d", i+1), models.ClassSolarPanel, fmt.Sprintf("Array_%d", i/3+1),
			33.3, uniform(rng, 0, 10), models.DeviceAttributes{
				Orientation: pick(rng, solarOrientations),
				TiltDeg:     round(uniform(rng, 20, 35), 1),
			})
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < spec.Batteries; i++ {
		err := add(fmt.Sprintf("BAT_%03d", i+1), models.ClassBattery, fmt.Sprintf("Battery_Rack_%d", i+1),
			200, uniform(rng, 0, 8), models.DeviceAttributes{
				Chemistry:  pick(rng, batteryChemistries),
				CycleCount: 100 + rng.Intn(2901),
				CycleLife:  models.DefaultCycleLife,
			})
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < spec.Inverters; i++ {
		err := add(fmt.Sprintf("INV_%03d", i+1), models.ClassInverter, fmt.Sprintf("Inverter_Bay_%d", i+1),
			62.5, uniform(rng, 0, 12), models.DeviceAttributes{
				Manufacturer: pick(rng, inverterMakers),
			})
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < spec.EVChargers; i++ {
		err := add(fmt.Sprintf("EVC_%03d", i+1), models.ClassEVCharger, fmt.Sprintf("Charging_Station_%d", i/4+1),
			50, uniform(rng, 0, 5), models.DeviceAttributes{
				ConnectorType: pick(rng, evConnectors),
			})
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < spec.GridConnections; i++ {
		err := add(fmt.Sprintf("GRID_%03d", i+1), models.ClassGridConnection, fmt.Sprintf("Grid_Point_%d", i+1),
			1000, uniform(rng, 5, 20), models.DeviceAttributes{
				VoltageLevel: "415V",
			})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func pick(rng Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
