package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

// VoyageSnapshotStore persists the voyage snapshot as a single CSV file.
// This is the canonical exchange backend: the file on disk is the snapshot,
// and Replace rewrites it atomically (temp file + rename).
type VoyageSnapshotStore struct {
	path string
}

// NewVoyageSnapshotStore creates a store backed by the CSV file at path.
// The file does not need to exist yet; reads before the first Replace
// return ErrNoSnapshot.
func NewVoyageSnapshotStore(path string) *VoyageSnapshotStore {
	return &VoyageSnapshotStore{path: path}
}

// Path reports the snapshot file location.
func (s *VoyageSnapshotStore) Path() string {
	return s.path
}

// Replace substitutes the snapshot file with batch.
func (s *VoyageSnapshotStore) Replace(ctx context.Context, batch []domain.EnrichedVoyage) error {
	for i, v := range batch {
		if v.VesselID == "" {
			return fmt.Errorf("%w: record %d has empty vessel ID", storage.ErrInvalidInput, i)
		}
	}

	sorted := make([]domain.EnrichedVoyage, len(batch))
	copy(sorted, batch)
	sortSnapshot(sorted)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(Encode(sorted)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	return nil
}

// List retrieves the full snapshot ordered by arrival date, then vessel ID.
func (s *VoyageSnapshotStore) List(ctx context.Context) ([]domain.EnrichedVoyage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	voyages, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(voyages) == 0 {
		return nil, storage.ErrNoSnapshot
	}

	// A hand-edited file may be out of order; the read contract still holds.
	sortSnapshot(voyages)
	return voyages, nil
}

// Count reports the number of voyages in the snapshot file.
func (s *VoyageSnapshotStore) Count(ctx context.Context) (int, error) {
	voyages, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(voyages), nil
}

func sortSnapshot(voyages []domain.EnrichedVoyage) {
	sort.Slice(voyages, func(i, j int) bool {
		if !voyages[i].ArrivalDate.Equal(voyages[j].ArrivalDate) {
			return voyages[i].ArrivalDate.Before(voyages[j].ArrivalDate)
		}
		return voyages[i].VesselID < voyages[j].VesselID
	})
}

// Verify interface compliance at compile time.
var _ storage.VoyageSnapshotStore = (*VoyageSnapshotStore)(nil)
