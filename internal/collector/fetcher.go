package collector

import (
	"context"

	"TopstepSentinel/internal/model"
)

// Fetcher defines the interface for looking up the latest closed daily bar.
type Fetcher interface {
	Snapshot(ctx context.Context, symbol string, live bool) (*model.Snapshot, error)
	Name() string
}
