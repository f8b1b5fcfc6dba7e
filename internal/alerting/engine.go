package alerting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/models"
	"smart_ems/internal/repository"
)

// DefaultHistorySize bounds the record of every alert ever raised.
const DefaultHistorySize = 1000

const idTimeLayout = "20060102_150405"

// Candidate is a crossed rule together with the observed value.
type Candidate struct {
	Rule  Rule
	Value float64
}

// Summary is the rollup of unresolved alerts.
type Summary struct {
	TotalActive           int            `json:"totalActive"`
	SeverityDistribution  map[string]int `json:"severityDistribution"`
	ComponentDistribution map[string]int `json:"componentDistribution"`
	HighestPriority       *models.Alert  `json:"highestPriority,omitempty"`
	LastUpdate            time.Time      `json:"lastUpdate"`
}

// Engine evaluates rules and owns the live alert set.
type Engine struct {
	log   *logger.Logger
	now   func() time.Time
	rules []Rule

	mu      sync.RWMutex
	alerts  []*models.Alert // insertion order
	byID    map[string]*models.Alert
	history *repository.Ring[models.Alert]
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHistorySize bounds the alert history.
func WithHistorySize(n int) Option {
	return func(e *Engine) { e.history = repository.NewRing[models.Alert](n) }
}

// NewEngine returns an engine using the built-in rule table.
func NewEngine(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		log:     log,
		now:     time.Now,
		rules:   Rules,
		byID:    make(map[string]*models.Alert),
		history: repository.NewRing[models.Alert](DefaultHistorySize),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Candidates lists every rule the reading crosses, in table order. Within a
// group only the first crossed rule is kept. diag may be nil.
func (e *Engine) Candidates(r models.Reading, diag *models.DiagnosticResult) []Candidate {
	m := metricsFor(r, diag)
	fired := map[string]bool{}
	var out []Candidate
	for _, rule := range e.rules {
		if rule.Class != r.DeviceClass {
			continue
		}
		if rule.Group != "" && fired[rule.Group] {
			continue
		}
		ok, v := rule.When.Eval(m)
		if !ok {
			continue
		}
		if rule.Guard != nil {
			if g, _ := rule.Guard.Eval(m); !g {
				continue
			}
		}
		if rule.Group != "" {
			fired[rule.Group] = true
		}
		out = append(out, Candidate{Rule: rule, Value: v})
	}
	return out
}

// GenerateAlert builds an alert for the first crossed rule of the reading.
// Only one alert is produced per call even when several rules are crossed.
// The alert is not stored; see Add.
func (e *Engine) GenerateAlert(r models.Reading, diag *models.DiagnosticResult) (models.Alert, bool) {
	cands := e.Candidates(r, diag)
	if len(cands) == 0 {
		return models.Alert{}, false
	}
	c := cands[0]
	ts := r.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}
	txt := renderContent(r.DeviceClass, c.Rule.Name, c.Value, c.Rule.When.Threshold)
	return models.Alert{
		ID:                fmt.Sprintf("%s_%s_%s", r.DeviceID, c.Rule.Name, ts.Format(idTimeLayout)),
		Timestamp:         ts,
		Severity:          c.Rule.Severity,
		DeviceID:          r.DeviceID,
		Component:         r.DeviceClass.Label(),
		Rule:              c.Rule.Name,
		Title:             txt.title,
		Message:           txt.message,
		RecommendedAction: txt.action,
		ImpactAssessment:  txt.impact,
		PriorityScore:     PriorityScore(c.Rule.Severity, r.DeviceClass, c.Rule.Name),
	}, true
}

// Add stores the alert in the live set and the history. The id gets a numeric
// suffix when it collides with a stored alert. The stored copy is returned.
func (e *Engine) Add(a models.Alert) models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	base := a.ID
	for n := 2; ; n++ {
		if _, taken := e.byID[a.ID]; !taken {
			break
		}
		a.ID = fmt.Sprintf("%s_%d", base, n)
	}
	stored := a
	e.alerts = append(e.alerts, &stored)
	e.byID[stored.ID] = &stored
	e.history.Push(stored)
	return stored
}

// Evaluate generates and stores at most one alert per reading. Diagnostics are
// matched to readings by device id.
func (e *Engine) Evaluate(readings []models.Reading, diags []models.DiagnosticResult) []models.Alert {
	byDevice := make(map[string]*models.DiagnosticResult, len(diags))
	for i := range diags {
		byDevice[diags[i].DeviceID] = &diags[i]
	}
	var out []models.Alert
	for _, r := range readings {
		if !r.DeviceClass.Valid() {
			e.log.Warnw("alert_unknown_class", "device_id", r.DeviceID, "class", r.DeviceClass)
			continue
		}
		a, ok := e.GenerateAlert(r, byDevice[r.DeviceID])
		if !ok {
			continue
		}
		out = append(out, e.Add(a))
	}
	return out
}

// Acknowledge marks an open alert as seen. Repeated calls are no-ops that
// still return true. Unknown or resolved alerts return false: a resolved
// alert is closed and is intentionally refused rather than acknowledged
// after the fact.
func (e *Engine) Acknowledge(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.byID[id]
	if !ok || a.Resolved {
		return false
	}
	a.Acknowledged = true
	return true
}

// Resolve closes an alert and stamps resolvedAt once. Unknown ids return false.
func (e *Engine) Resolve(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.byID[id]
	if !ok {
		return false
	}
	if !a.Resolved {
		at := e.now()
		a.Resolved = true
		a.ResolvedAt = &at
	}
	return true
}

// Cleanup drops resolved alerts whose resolvedAt is older than now-retention
// and returns them.
func (e *Engine) Cleanup(retention time.Duration) []models.Alert {
	cutoff := e.now().Add(-retention)

	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.alerts[:0]
	var removed []models.Alert
	for _, a := range e.alerts {
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			removed = append(removed, *a)
			delete(e.byID, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(e.alerts); i++ {
		e.alerts[i] = nil
	}
	e.alerts = kept
	return removed
}

// Get returns a copy of the stored alert.
func (e *Engine) Get(id string) (models.Alert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.byID[id]
	if !ok {
		return models.Alert{}, false
	}
	return *a, true
}

// All returns every stored alert, resolved ones included, in insertion order.
func (e *Engine) All() []models.Alert {
	return e.filter(func(*models.Alert) bool { return true })
}

// Active returns unresolved alerts in insertion order.
func (e *Engine) Active() []models.Alert {
	return e.filter(func(a *models.Alert) bool { return !a.Resolved })
}

// BySeverity returns unresolved alerts of the given severity.
func (e *Engine) BySeverity(s models.Severity) []models.Alert {
	return e.filter(func(a *models.Alert) bool { return !a.Resolved && a.Severity == s })
}

// Prioritize orders unresolved alerts by priority score, then severity, both
// descending; older alerts first on ties, then by id.
func (e *Engine) Prioritize() []models.Alert {
	out := e.Active()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
	return out
}

// Summary counts unresolved alerts per severity and component.
func (e *Engine) Summary() Summary {
	prio := e.Prioritize()
	s := Summary{
		TotalActive:           len(prio),
		SeverityDistribution:  make(map[string]int, len(models.Severities)),
		ComponentDistribution: map[string]int{},
		LastUpdate:            e.now(),
	}
	for _, sev := range models.Severities {
		s.SeverityDistribution[sev.String()] = 0
	}
	for _, a := range prio {
		s.SeverityDistribution[a.Severity.String()]++
		s.ComponentDistribution[a.Component]++
	}
	if len(prio) > 0 {
		top := prio[0]
		s.HighestPriority = &top
	}
	return s
}

// History returns up to n most recently raised alerts as they were when raised.
// n < 0 returns the whole history.
func (e *Engine) History(n int) []models.Alert {
	return e.history.Last(n)
}

func (e *Engine) filter(keep func(*models.Alert) bool) []models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Alert, 0, len(e.alerts))
	for _, a := range e.alerts {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

// metricsFor fills a missing battery healthScore from the diagnostic result.
func metricsFor(r models.Reading, diag *models.DiagnosticResult) models.Metrics {
	if diag == nil || r.DeviceClass != models.ClassBattery || r.Metrics.Has(models.MetricHealthScore) {
		return r.Metrics
	}
	m := make(models.Metrics, len(r.Metrics)+1)
	for k, v := range r.Metrics {
		m[k] = v
	}
	m[models.MetricHealthScore] = diag.HealthIndex
	return m
}
