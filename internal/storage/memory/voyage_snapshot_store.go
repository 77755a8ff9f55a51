package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

// VoyageSnapshotStore is an in-memory implementation of
// storage.VoyageSnapshotStore. Safe for concurrent use.
type VoyageSnapshotStore struct {
	mu       sync.RWMutex
	snapshot []domain.EnrichedVoyage
}

// NewVoyageSnapshotStore creates an empty in-memory snapshot store.
func NewVoyageSnapshotStore() *VoyageSnapshotStore {
	return &VoyageSnapshotStore{}
}

// Replace substitutes the entire snapshot with batch.
func (s *VoyageSnapshotStore) Replace(ctx context.Context, batch []domain.EnrichedVoyage) error {
	for i, v := range batch {
		if v.VesselID == "" {
			return fmt.Errorf("%w: record %d has empty vessel ID", storage.ErrInvalidInput, i)
		}
	}

	next := make([]domain.EnrichedVoyage, len(batch))
	copy(next, batch)
	sort.Slice(next, func(i, j int) bool {
		if !next[i].ArrivalDate.Equal(next[j].ArrivalDate) {
			return next[i].ArrivalDate.Before(next[j].ArrivalDate)
		}
		return next[i].VesselID < next[j].VesselID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = next
	return nil
}

// List retrieves the full snapshot ordered by arrival date, then vessel ID.
func (s *VoyageSnapshotStore) List(ctx context.Context) ([]domain.EnrichedVoyage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshot) == 0 {
		return nil, storage.ErrNoSnapshot
	}

	result := make([]domain.EnrichedVoyage, len(s.snapshot))
	copy(result, s.snapshot)
	return result, nil
}

// Count reports the number of voyages in the snapshot.
func (s *VoyageSnapshotStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshot) == 0 {
		return 0, storage.ErrNoSnapshot
	}
	return len(s.snapshot), nil
}

// Verify interface compliance at compile time.
var _ storage.VoyageSnapshotStore = (*VoyageSnapshotStore)(nil)
