package postgres

import (
	"context"
	"fmt"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

// VoyageSnapshotStore implements storage.VoyageSnapshotStore using PostgreSQL.
// The snapshot lives in a single flat table; Replace runs TRUNCATE plus the
// full insert inside one transaction, so readers never observe a partial
// snapshot.
type VoyageSnapshotStore struct {
	pool *Pool
}

// NewVoyageSnapshotStore creates a new VoyageSnapshotStore.
func NewVoyageSnapshotStore(pool *Pool) *VoyageSnapshotStore {
	return &VoyageSnapshotStore{pool: pool}
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE voyage_snapshot`); err != nil {
		return fmt.Errorf("truncate voyage snapshot: %w", err)
	}

	query := `
		INSERT INTO voyage_snapshot (
			vessel_id, arrival_date, queue_size, waiting_days,
			actual_speed_knots, fuel_consumed_tons, optimal_speed_knots,
			demurrage_cost, total_fuel_cost, potential_fuel_savings
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10
		)
	`

	for _, v := range batch {
		_, err := tx.Exec(ctx, query,
			v.VesselID, v.ArrivalDate, v.QueueSize, v.WaitingDays,
			v.ActualSpeedKnots, v.FuelConsumedTons, v.OptimalSpeedKnots,
			v.DemurrageCost, v.TotalFuelCost, v.PotentialFuelSavings,
		)
		if err != nil {
			return fmt.Errorf("insert voyage %s: %w", v.VesselID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
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
		FROM voyage_snapshot
		ORDER BY arrival_date ASC, vessel_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query voyage snapshot: %w", err)
	}
	defer rows.Close()

	var voyages []domain.EnrichedVoyage
	for rows.Next() {
		var v domain.EnrichedVoyage
		err := rows.Scan(
			&v.VesselID, &v.ArrivalDate, &v.QueueSize, &v.WaitingDays,
			&v.ActualSpeedKnots, &v.FuelConsumedTons, &v.OptimalSpeedKnots,
			&v.DemurrageCost, &v.TotalFuelCost, &v.PotentialFuelSavings,
		)
		if err != nil {
			return nil, fmt.Errorf("scan voyage row: %w", err)
		}

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
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM voyage_snapshot`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count voyage snapshot: %w", err)
	}

	if count == 0 {
		return 0, storage.ErrNoSnapshot
	}
	return count, nil
}
