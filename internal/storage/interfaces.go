// Package storage defines the run store boundary. Runs live only for the
// lifetime of the process; there is no durable backend.
package storage

import (
	"context"

	"solana-volume-bot/internal/domain"
)

// RunStore holds campaign runs keyed by run ID.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, run *domain.CampaignRun) error

	// GetByID retrieves a run. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.CampaignRun, error)

	// UpdateSnapshot replaces the stored state of a run. Unknown IDs are
	// inserted: the remote path renames a run from its local ID to the
	// service's job ID mid-flight.
	UpdateSnapshot(ctx context.Context, run *domain.CampaignRun) error

	// Delete removes a run. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all runs in unspecified order.
	List(ctx context.Context) ([]*domain.CampaignRun, error)
}
