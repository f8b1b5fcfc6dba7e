package service

import (
	"errors"
	"testing"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/logger"
	"smart_ems/internal/models"
)

func newMonitoring(t *testing.T) (*MonitoringService, *fleetState, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	st := newFleetState(testRegistry(t), alerting.NewEngine(logger.Nop(), alerting.WithClock(clk.Now)), 10)
	return NewMonitoringService(st, clk), st, clk
}

func TestMonitoringService_DeviceSummary(t *testing.T) {
	t.Parallel()
	svc, st, _ := newMonitoring(t)

	st.readings.Push(
		models.Reading{DeviceID: "BAT_001", Timestamp: t0.Add(-2 * time.Minute), HealthStatus: models.HealthCritical},
		models.Reading{DeviceID: "BAT_001", Timestamp: t0.Add(-30 * time.Second), HealthStatus: models.HealthGood},
		models.Reading{DeviceID: "GRID_001", Timestamp: t0, HealthStatus: models.HealthGood},
		models.Reading{DeviceID: "SP_001", Timestamp: t0, HealthStatus: models.HealthPoor},
	)

	got := svc.DeviceSummary()
	if got.TotalDevices != 3 {
		t.Fatalf("total = %d", got.TotalDevices)
	}
	if len(got.DeviceTypes) != len(models.DeviceClasses) || got.DeviceTypes["battery"] != 1 || got.DeviceTypes["ev_charger"] != 0 {
		t.Fatalf("types = %v", got.DeviceTypes)
	}
	want := map[string]int{"excellent": 0, "good": 2, "fair": 0, "poor": 1, "critical": 0}
	for k, v := range want {
		if n, ok := got.HealthDistribution[k]; !ok || n != v {
			t.Fatalf("health[%s] = %d (present=%v), want %d", k, n, ok, v)
		}
	}
}

func TestMonitoringService_LatestReading(t *testing.T) {
	t.Parallel()
	svc, st, _ := newMonitoring(t)

	st.readings.Push(
		models.Reading{DeviceID: "BAT_001", Timestamp: t0, Metrics: models.Metrics{"soc": 40.0}},
		models.Reading{DeviceID: "SP_001", Timestamp: t0},
		models.Reading{DeviceID: "BAT_001", Timestamp: t0.Add(time.Second), Metrics: models.Metrics{"soc": 41.0}},
	)

	tests := []struct {
		name   string
		id     string
		wantOK bool
		soc    float64
	}{
		{name: "newest wins", id: "BAT_001", wantOK: true, soc: 41},
		{name: "no readings yet", id: "GRID_001", wantOK: false},
		{name: "unknown", id: "nope", wantOK: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r, ok := svc.LatestReading(tc.id)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && r.Metrics.Float("soc", 0) != tc.soc {
				t.Fatalf("soc = %v, want %v", r.Metrics.Float("soc", 0), tc.soc)
			}
		})
	}

	latest := svc.LatestReadings()
	if len(latest) != 2 || latest[0].DeviceID != "BAT_001" || latest[1].DeviceID != "SP_001" {
		t.Fatalf("latest = %+v", latest)
	}
}

func TestMonitoringService_HealthSummary(t *testing.T) {
	t.Parallel()
	svc, st, clk := newMonitoring(t)

	if _, err := svc.HealthSummary(); !errors.Is(err, diagnostics.ErrNoDiagnostics) {
		t.Fatalf("got %v, want ErrNoDiagnostics", err)
	}

	st.diagnostics.Push(
		models.DiagnosticResult{DeviceID: "BAT_001", Component: "Battery", HealthIndex: 80, Timestamp: t0},
		models.DiagnosticResult{DeviceID: "SP_001", Component: "Solar Panel", HealthIndex: 60, Timestamp: t0},
	)
	sum, err := svc.HealthSummary()
	if err != nil {
		t.Fatalf("HealthSummary: %v", err)
	}
	if sum.OverallHealth != 70 || sum.Status != models.HealthFair {
		t.Fatalf("summary = %+v", sum)
	}

	clk.Advance(10 * time.Minute)
	if _, err := svc.HealthSummary(); !errors.Is(err, diagnostics.ErrNoRecentDiagnostics) {
		t.Fatalf("got %v, want ErrNoRecentDiagnostics", err)
	}
}

func TestMonitoringService_Snapshot(t *testing.T) {
	t.Parallel()
	svc, st, _ := newMonitoring(t)

	for i := 0; i < 7; i++ {
		st.alerts.Evaluate([]models.Reading{{
			DeviceID: "GRID_001", DeviceClass: models.ClassGridConnection, Timestamp: t0,
			Metrics: models.Metrics{"powerFactor": 0.7},
		}}, nil)
	}
	snap := svc.Snapshot()
	if snap.Alerts.TotalActive != 7 || len(snap.Top) != snapshotTopAlerts {
		t.Fatalf("snapshot alerts = %d top = %d", snap.Alerts.TotalActive, len(snap.Top))
	}
	if snap.Health != nil {
		t.Fatalf("health should be omitted without diagnostics")
	}
}
