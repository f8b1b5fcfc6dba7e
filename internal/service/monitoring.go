package service

import (
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/models"
)

// recentWindow bounds the readings counted in the health distribution.
const recentWindow = time.Minute

// DeviceSummary counts the fleet per class and the health of recent readings.
type DeviceSummary struct {
	TotalDevices       int            `json:"totalDevices"`
	DeviceTypes        map[string]int `json:"deviceTypes"`
	HealthDistribution map[string]int `json:"healthDistribution"`
	LastUpdate         time.Time      `json:"lastUpdate"`
}

// Snapshot is the state pushed to live dashboard clients.
type Snapshot struct {
	Timestamp time.Time            `json:"timestamp"`
	Devices   DeviceSummary        `json:"devices"`
	Health    *diagnostics.Summary `json:"health,omitempty"`
	Alerts    alerting.Summary     `json:"alerts"`
	Top       []models.Alert       `json:"topAlerts"`
}

const snapshotTopAlerts = 5

type MonitoringService struct {
	st    *fleetState
	clock Clock
}

func NewMonitoringService(st *fleetState, clock Clock) *MonitoringService {
	return &MonitoringService{st: st, clock: clock}
}

// Devices returns the registry in order.
func (s *MonitoringService) Devices() []models.Device {
	if s.st.registry == nil {
		return []models.Device{}
	}
	return s.st.registry.Devices()
}

// DeviceSummary reports every class and every health status, zero counts included.
// Only readings from the last minute feed the health distribution.
func (s *MonitoringService) DeviceSummary() DeviceSummary {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.deviceSummary(s.clock.Now())
}

func (s *MonitoringService) deviceSummary(now time.Time) DeviceSummary {
	sum := DeviceSummary{
		DeviceTypes:        make(map[string]int, len(models.DeviceClasses)),
		HealthDistribution: make(map[string]int, len(models.HealthStatuses)),
		LastUpdate:         now,
	}
	for _, c := range models.DeviceClasses {
		sum.DeviceTypes[string(c)] = 0
	}
	for _, h := range models.HealthStatuses {
		sum.HealthDistribution[string(h)] = 0
	}
	if s.st.registry != nil {
		sum.TotalDevices = s.st.registry.Len()
		for c, n := range s.st.registry.CountByClass() {
			sum.DeviceTypes[string(c)] = n
		}
	}

	cutoff := now.Add(-recentWindow)
	for _, r := range s.st.readings.Snapshot() {
		if r.Timestamp.Before(cutoff) || r.HealthStatus == "" {
			continue
		}
		sum.HealthDistribution[string(r.HealthStatus)]++
	}
	return sum
}

// HealthSummary averages recent diagnostic results per component.
func (s *MonitoringService) HealthSummary() (diagnostics.Summary, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.healthSummary(s.clock.Now())
}

func (s *MonitoringService) healthSummary(now time.Time) (diagnostics.Summary, error) {
	return diagnostics.Summarize(s.st.diagnostics.Snapshot(), now, diagnostics.DefaultSummaryWindow)
}

// LatestReading returns the newest reading of the device still in history.
func (s *MonitoringService) LatestReading(deviceID string) (models.Reading, bool) {
	s.st.mu.RLock()
	hist := s.st.readings.Snapshot()
	s.st.mu.RUnlock()

	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].DeviceID == deviceID {
			return hist[i], true
		}
	}
	return models.Reading{}, false
}

// LatestReadings returns the newest reading per device, in registry order.
func (s *MonitoringService) LatestReadings() []models.Reading {
	s.st.mu.RLock()
	hist := s.st.readings.Snapshot()
	s.st.mu.RUnlock()

	latest := make(map[string]models.Reading)
	for _, r := range hist {
		latest[r.DeviceID] = r
	}
	out := make([]models.Reading, 0, len(latest))
	for _, d := range s.Devices() {
		if r, ok := latest[d.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot reads every part under one shared lock, so all parts describe the
// same tick.
func (s *MonitoringService) Snapshot() Snapshot {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	now := s.clock.Now()
	snap := Snapshot{
		Timestamp: now,
		Devices:   s.deviceSummary(now),
		Alerts:    s.st.alerts.Summary(),
		Top:       s.st.alerts.Prioritize(),
	}
	if len(snap.Top) > snapshotTopAlerts {
		snap.Top = snap.Top[:snapshotTopAlerts]
	}
	if h, err := s.healthSummary(now); err == nil {
		snap.Health = &h
	}
	return snap
}
