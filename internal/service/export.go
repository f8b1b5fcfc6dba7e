package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"smart_ems/internal/models"
)

// ExportLimit is how many of the newest history records an export carries.
const ExportLimit = 100

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportEnvelope is the json export document.
type ExportEnvelope struct {
	Readings []models.Reading `json:"readings"`
	Alerts   []models.Alert   `json:"alerts"`
}

var csvBaseColumns = []string{"deviceId", "deviceClass", "location", "timestamp", "healthStatus"}

type ExportService struct {
	st *fleetState
}

func NewExportService(st *fleetState) *ExportService {
	return &ExportService{st: st}
}

// Export renders the last ExportLimit readings (json and csv) and stored
// alerts in their current state (json only). Format is "json" or "csv", case-insensitive.
func (s *ExportService) Export(format string) ([]byte, error) {
	s.st.mu.RLock()
	readings := s.st.readings.Last(ExportLimit)
	alerts := lastAlerts(s.st.alerts.All(), ExportLimit)
	s.st.mu.RUnlock()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return json.MarshalIndent(ExportEnvelope{
			Readings: readings,
			Alerts:   alerts,
		}, "", "  ")
	case "csv":
		return readingsCSV(readings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// readingsCSV flattens readings into one row each. Metric columns are the
// sorted union of metric keys, prefixed "metrics."; absent metrics are empty.
func readingsCSV(readings []models.Reading) ([]byte, error) {
	keySet := map[string]struct{}{}
	for _, r := range readings {
		for k := range r.Metrics {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := append([]string{}, csvBaseColumns...)
	for _, k := range keys {
		header = append(header, "metrics."+k)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range readings {
		row := []string{
			r.DeviceID,
			string(r.DeviceClass),
			r.Location,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			string(r.HealthStatus),
		}
		for _, k := range keys {
			row = append(row, csvValue(r.Metrics[k]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func lastAlerts(all []models.Alert, n int) []models.Alert {
	if len(all) > n {
		return all[len(all)-n:]
	}
	return all
}
