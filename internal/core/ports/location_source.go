package ports

import (
	"context"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

//go:generate mockgen -source=location_source.go -destination=mocks/mock_location_source.go -package=mocks

// LocationSource produces raw position samples. Implementations translate
// their own failures into the domain location errors.
type LocationSource interface {
	// GetSample returns one reading or fails with a location error.
	GetSample(ctx context.Context, opts domain.SampleOptions) (domain.PositionSample, error)

	// StartContinuous delivers readings to onSample until Cancel is called or
	// ctx is done. onSample may be called from another goroutine.
	StartContinuous(ctx context.Context, opts domain.SampleOptions, onSample func(domain.PositionSample)) (string, error)

	// Cancel releases a subscription. Unknown or already cancelled ids are ignored.
	Cancel(subscriptionID string)
}
