package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSeverity_ParseAndText(t *testing.T) {
	t.Parallel()

	for _, s := range Severities {
		got, err := ParseSeverity(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseSeverity(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParseSeverity(" CRITICAL "); err != nil || got != SeverityCritical {
		t.Fatalf("ParseSeverity upper = %v, %v", got, err)
	}
	if _, err := ParseSeverity("urgent"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
	if !(SeverityInfo < SeverityWarning && SeverityWarning < SeverityCritical && SeverityCritical < SeverityEmergency) {
		t.Fatalf("severities are not ordered")
	}
}

func TestAlert_SeverityJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Alert{ID: "a1", Severity: SeverityEmergency})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	if raw["severity"] != "emergency" {
		t.Fatalf("severity encoded as %v", raw["severity"])
	}

	var a Alert
	if err := json.Unmarshal([]byte(`{"id":"a2","severity":"warning"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Severity != SeverityWarning {
		t.Fatalf("severity=%v", a.Severity)
	}
	if err := json.Unmarshal([]byte(`{"severity":"loud"}`), &a); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}

func TestStatusFromHealth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		h    float64
		want HealthStatus
	}{
		{100, HealthExcellent},
		{90, HealthExcellent},
		{89.9, HealthGood},
		{75, HealthGood},
		{74.99, HealthFair},
		{60, HealthFair},
		{59.9, HealthPoor},
		{40, HealthPoor},
		{39.9, HealthCritical},
		{0, HealthCritical},
	}
	for _, tc := range cases {
		if got := StatusFromHealth(tc.h); got != tc.want {
			t.Fatalf("StatusFromHealth(%v) = %q, want %q", tc.h, got, tc.want)
		}
	}
}

func TestNewDevice(t *testing.T) {
	t.Parallel()

	d, err := NewDevice(" BAT_001 ", ClassBattery, "Building A", 100, 2, DeviceAttributes{Chemistry: "LiFePO4"})
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if d.ID != "BAT_001" || d.Attributes.CycleLife != DefaultCycleLife {
		t.Fatalf("unexpected device: %+v", d)
	}
	if d.Class.Label() != "Battery" {
		t.Fatalf("label=%q", d.Class.Label())
	}

	cases := []struct {
		name     string
		id       string
		class    DeviceClass
		capacity float64
		age      float64
		want     error
	}{
		{"empty_id", "  ", ClassBattery, 1, 0, ErrEmptyDeviceID},
		{"unknown_class", "X_1", DeviceClass("windmill"), 1, 0, ErrUnknownClass},
		{"zero_capacity", "SP_001", ClassSolarPanel, 0, 0, ErrInvalidCapacity},
		{"negative_age", "SP_001", ClassSolarPanel, 1, -1, ErrNegativeAge},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDevice(tc.id, tc.class, "", tc.capacity, tc.age, DeviceAttributes{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestMetrics_Accessors(t *testing.T) {
	t.Parallel()

	m := Metrics{
		MetricSOC:        42.5,
		MetricIsCharging: true,
		MetricCycleCount: json.Number("1200"),
		"label":          "x",
	}
	if v := m.Float(MetricSOC, 0); v != 42.5 {
		t.Fatalf("soc=%v", v)
	}
	if v := m.Float(MetricCycleCount, 0); v != 1200 {
		t.Fatalf("cycleCount=%v", v)
	}
	if v := m.Float(MetricIsCharging, 0); v != 1 {
		t.Fatalf("isCharging as float=%v", v)
	}
	if v := m.Float("label", -1); v != -1 {
		t.Fatalf("non-numeric should fall back, got %v", v)
	}
	if v := m.Float(MetricTemperature, 25); v != 25 {
		t.Fatalf("missing should fall back, got %v", v)
	}
	if !m.Bool(MetricIsCharging, false) || m.Bool("missing", false) {
		t.Fatalf("Bool accessor mismatch")
	}
	if !m.Has(MetricSOC) || m.Has(MetricTemperature) {
		t.Fatalf("Has mismatch")
	}
}
