package storage

import (
	"context"

	"portsync/internal/domain"
)

// VoyageSnapshotStore provides access to the voyage snapshot: one flat table
// of enriched voyages, always replaced as a unit. There are no incremental
// updates; a fresh batch supersedes the prior snapshot wholesale.
type VoyageSnapshotStore interface {
	// Replace substitutes the entire snapshot with batch. The prior snapshot
	// is discarded even when batch is smaller. Returns ErrInvalidInput if any
	// record has an empty vessel ID.
	Replace(ctx context.Context, batch []domain.EnrichedVoyage) error

	// List retrieves the full snapshot ordered by arrival date ASC, vessel ID
	// ASC. Returns ErrNoSnapshot when no snapshot is stored or it is empty.
	List(ctx context.Context) ([]domain.EnrichedVoyage, error)

	// Count reports the number of voyages in the snapshot. Returns
	// ErrNoSnapshot when no snapshot is stored or it is empty.
	Count(ctx context.Context) (int, error)
}
