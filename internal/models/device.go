package models

import (
	"errors"
	"fmt"
	"strings"
)

// DeviceClass identifies the kind of energy asset.
type DeviceClass string

const (
	ClassSolarPanel     DeviceClass = "solar_panel"
	ClassBattery        DeviceClass = "battery"
	ClassInverter       DeviceClass = "inverter"
	ClassEVCharger      DeviceClass = "ev_charger"
	ClassGridConnection DeviceClass = "grid_connection"
)

// DeviceClasses lists every known class in registry order.
var DeviceClasses = []DeviceClass{
	ClassSolarPanel,
	ClassBattery,
	ClassInverter,
	ClassEVCharger,
	ClassGridConnection,
}

var classLabels = map[DeviceClass]string{
	ClassSolarPanel:     "Solar Panel",
	ClassBattery:        "Battery",
	ClassInverter:       "Inverter",
	ClassEVCharger:      "EV Charger",
	ClassGridConnection: "Grid Connection",
}

// Valid reports whether c is one of the known device classes.
func (c DeviceClass) Valid() bool {
	_, ok := classLabels[c]
	return ok
}

// Label is the human readable component name.
func (c DeviceClass) Label() string {
	if l, ok := classLabels[c]; ok {
		return l
	}
	return string(c)
}

// DeviceAttributes holds class specific static attributes. Unused fields stay zero.
type DeviceAttributes struct {
	Orientation   string  `json:"orientation,omitempty"`
	TiltDeg       float64 `json:"tiltDeg,omitempty"`
	Chemistry     string  `json:"chemistry,omitempty"`
	CycleCount    int     `json:"cycleCount,omitempty"`
	CycleLife     int     `json:"cycleLife,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	ConnectorType string  `json:"connectorType,omitempty"`
	VoltageLevel  string  `json:"voltageLevel,omitempty"`
}

// Device is an immutable entry of the fleet catalog.
type Device struct {
	ID         string           `json:"deviceId"`
	Class      DeviceClass      `json:"deviceClass"`
	Location   string           `json:"location"`
	Capacity   float64          `json:"capacity"` // kW or kWh depending on class
	AgeYears   float64          `json:"ageYears"`
	Attributes DeviceAttributes `json:"attributes"`
}

var (
	ErrEmptyDeviceID   = errors.New("device id is empty")
	ErrUnknownClass    = errors.New("unknown device class")
	ErrInvalidCapacity = errors.New("device capacity must be positive")
	ErrNegativeAge     = errors.New("device age must be >= 0")
)

// DefaultCycleLife is the rated number of full cycles of a battery rack.
const DefaultCycleLife = 6000

// NewDevice validates the static fields and returns a Device.
func NewDevice(id string, class DeviceClass, location string, capacity, ageYears float64, attrs DeviceAttributes) (Device, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return Device{}, ErrEmptyDeviceID
	case !class.Valid():
		return Device{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	case capacity <= 0:
		return Device{}, fmt.Errorf("%s: %w", id, ErrInvalidCapacity)
	case ageYears < 0:
		return Device{}, fmt.Errorf("%s: %w", id, ErrNegativeAge)
	}
	if class == ClassBattery && attrs.CycleLife <= 0 {
		attrs.CycleLife = DefaultCycleLife
	}
	return Device{
		ID:         id,
		Class:      class,
		Location:   location,
		Capacity:   capacity,
		AgeYears:   ageYears,
		Attributes: attrs,
	}, nil
}
