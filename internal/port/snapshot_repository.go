package port

import (
	"context"

	"github.com/rl1809/store-manager/internal/core/domain"
)

type SnapshotRepository interface {
	// Load returns the saved store state, or domain.DefaultState when nothing
	// has been saved yet
	Load(ctx context.Context) (domain.State, error)

	// Save replaces the saved store state with state as a single write
	Save(ctx context.Context, state domain.State) error
}
