package telemetry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"smart_ems/internal/models"
)

// SyntheticSource feeds the pipeline from the generator. The random stream is
// owned by the source, so a fixed seed replays the same sequence of batches.
type SyntheticSource struct {
	registry  *Registry
	generator *Generator

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSyntheticSource(registry *Registry, generator *Generator, seed int64) *SyntheticSource {
	return &SyntheticSource{
		registry:  registry,
		generator: generator,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Read generates one reading per registered device, in registry order.
func (s *SyntheticSource) Read(_ context.Context, now time.Time) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Generate(s.registry.Devices(), now, s.rng), nil
}
