// Package notify fans pipeline results out to external consumers.
package notify

import (
	"context"
	"errors"

	"smart_ems/internal/models"
)

// Publisher receives the result of every completed tick.
type Publisher interface {
	Publish(ctx context.Context, res models.TickResult) error
}

// Multi publishes to every publisher and joins their errors. A failing
// publisher does not stop the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, res models.TickResult) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
