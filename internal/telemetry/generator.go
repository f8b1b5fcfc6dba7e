package telemetry

import (
	"fmt"
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/models"
)

// tickEnv is the wall-clock context shared by all devices of one batch.
type tickEnv struct {
	hour      int
	dayOfYear int
}

// deviceModel produces the metrics of one device for one tick.
type deviceModel func(d models.Device, env tickEnv, rng Rand) models.Metrics

// Generator produces one synthetic reading per device per tick.
type Generator struct {
	log    *logger.Logger
	models map[models.DeviceClass]deviceModel
}

// NewGenerator returns a generator with the built-in device models.
func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{
		log: log,
		models: map[models.DeviceClass]deviceModel{
			models.ClassSolarPanel:     generateSolar,
			models.ClassBattery:        generateBattery,
			models.ClassInverter:       generateInverter,
			models.ClassEVCharger:      generateEVCharger,
			models.ClassGridConnection: generateGrid,
		},
	}
}

// Generate returns readings in device order. A device whose model fails is
// logged and left out of the batch; the rest of the batch is unaffected.
func (g *Generator) Generate(devices []models.Device, now time.Time, rng Rand) []models.Reading {
	env := tickEnv{hour: now.Hour(), dayOfYear: now.YearDay()}
	out := make([]models.Reading, 0, len(devices))
	for _, d := range devices {
		r, err := g.generateOne(d, env, now, rng)
		if err != nil {
			g.log.Warnw("reading_generation_failed", "device_id", d.ID, "class", d.Class, "err", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (g *Generator) generateOne(d models.Device, env tickEnv, now time.Time, rng Rand) (r models.Reading, err error) {
	model, ok := g.models[d.Class]
	if !ok {
		return models.Reading{}, fmt.Errorf("%w %q", models.ErrUnknownClass, d.Class)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("device model panicked: %v", p)
		}
	}()

	metrics := model(d, env, rng)
	return models.Reading{
		DeviceID:     d.ID,
		DeviceClass:  d.Class,
		Location:     d.Location,
		Timestamp:    now,
		Metrics:      metrics,
		HealthStatus: models.StatusFromHealth(metrics.Float(models.MetricHealthScore, 100)),
	}, nil
}
