package clickhouse

import (
	"context"
	"fmt"
	"time"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

// VoyageSnapshotStore implements storage.VoyageSnapshotStore using ClickHouse.
// Every Replace writes the batch under a fresh snapshot version; reads scope
// to the highest version, so a new batch supersedes the old one even when it
// is smaller. One batch arrives as a single insert block, so readers never
// see a partially written version. Superseded versions age out via table TTL.
type VoyageSnapshotStore struct {
	conn *Conn
}

// NewVoyageSnapshotStore creates a new VoyageSnapshotStore.
func NewVoyageSnapshotStore(conn *Conn) *VoyageSnapshotStore {
	return &VoyageSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.VoyageSnapshotStore = (*VoyageSnapshotStore)(nil)

// Replace substitutes the entire snapshot with batch.
func (s *VoyageSnapshotStore) Replace(ctx context.Context, batch []domain.EnrichedVoyage) error {
	for i, v := range batch {
		if v.VesselID == "" {
			return fmt.Errorf("%w: record %d has empty vessel ID", storage.ErrInvalidInput, i)
		}
	}

	// An empty batch clears the snapshot outright; a version with zero rows
	// would leave the previous version visible.
	if len(batch) == 0 {
		if err := s.conn.Exec(ctx, `TRUNCATE TABLE voyage_snapshot`); err != nil {
			return fmt.Errorf("truncate voyage snapshot: %w", err)
		}
		return nil
	}

	version := uint64(time.Now().UnixNano())

	prepared, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO voyage_snapshot (
			snapshot_version, vessel_id, arrival_date, queue_size, waiting_days,
			actual_speed_knots, fuel_consumed_tons, optimal_speed_knots,
			demurrage_cost, total_fuel_cost, potential_fuel_savings
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, v := range batch {
		err := prepared.Append(
			version, v.VesselID, v.ArrivalDate, uint32(v.QueueSize), v.WaitingDays,
			v.ActualSpeedKnots, uint32(v.FuelConsumedTons), v.OptimalSpeedKnots,
			v.DemurrageCost, v.TotalFuelCost, v.PotentialFuelSavings,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := prepared.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// List retrieves the full snapshot ordered by arrival date, then vessel ID.
func (s *VoyageSnapshotStore) List(ctx context.Context) ([]domain.EnrichedVoyage, error) {
	query := `
		SELECT
			vessel_id, arrival_date, queue_size, waiting_days,
			actual_speed_knots, fuel_consumed_tons, optimal_speed_knots,
			demurrage_cost, total_fuel_cost, potential_fuel_savings
		FROM voyage_snapshot FINAL
		WHERE snapshot_version = (SELECT max(snapshot_version) FROM voyage_snapshot)
		ORDER BY arrival_date ASC, vessel_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query voyage snapshot: %w", err)
	}
	defer rows.Close()

	var voyages []domain.EnrichedVoyage
	for rows.Next() {
		var (
			v         domain.EnrichedVoyage
			queueSize uint32
			fuelTons  uint32
		)
		err := rows.Scan(
			&v.VesselID, &v.ArrivalDate, &queueSize, &v.WaitingDays,
			&v.ActualSpeedKnots, &fuelTons, &v.OptimalSpeedKnots,
			&v.DemurrageCost, &v.TotalFuelCost, &v.PotentialFuelSavings,
		)
		if err != nil {
			return nil, fmt.Errorf("scan voyage row: %w", err)
		}

		v.QueueSize = int(queueSize)
		v.FuelConsumedTons = int(fuelTons)

		// The two total-cost fields are not stored columns; rebuild them
		// from the persisted ones.
		v.ActualTotalCost = v.DemurrageCost + v.TotalFuelCost
		v.OptimizedTotalCost = v.TotalFuelCost - v.PotentialFuelSavings

		voyages = append(voyages, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voyage rows: %w", err)
	}

	if len(voyages) == 0 {
		return nil, storage.ErrNoSnapshot
	}
	return voyages, nil
}

// Count reports the number of voyages in the snapshot.
func (s *VoyageSnapshotStore) Count(ctx context.Context) (int, error) {
	query := `
		SELECT count() FROM voyage_snapshot FINAL
		WHERE snapshot_version = (SELECT max(snapshot_version) FROM voyage_snapshot)
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count voyage snapshot: %w", err)
	}

	if count == 0 {
		return 0, storage.ErrNoSnapshot
	}
	return int(count), nil
}
