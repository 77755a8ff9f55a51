package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

func createTestVoyage(vesselID string, arrivalOffset int) domain.EnrichedVoyage {
	return domain.EnrichedVoyage{
		VesselID:             vesselID,
		ArrivalDate:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, arrivalOffset),
		QueueSize:            2,
		WaitingDays:          2.0,
		ActualSpeedKnots:     14.0,
		FuelConsumedTons:     600,
		OptimalSpeedKnots:    10.5,
		DemurrageCost:        60000,
		TotalFuelCost:        360000,
		PotentialFuelSavings: 108000,
		ActualTotalCost:      420000,
		OptimizedTotalCost:   252000,
	}
}

func TestVoyageSnapshotStore_ReplaceAndList(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	want := createTestVoyage("TANKER-001", 0)
	require.NoError(t, store.Replace(ctx, []domain.EnrichedVoyage{want}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, want.VesselID, v.VesselID)
	assert.True(t, want.ArrivalDate.Equal(v.ArrivalDate), "arrival date mismatch: got %v, want %v", v.ArrivalDate, want.ArrivalDate)
	assert.Equal(t, want.QueueSize, v.QueueSize)
	assert.Equal(t, want.WaitingDays, v.WaitingDays)
	assert.Equal(t, want.ActualSpeedKnots, v.ActualSpeedKnots)
	assert.Equal(t, want.FuelConsumedTons, v.FuelConsumedTons)
	assert.Equal(t, want.OptimalSpeedKnots, v.OptimalSpeedKnots)
	assert.Equal(t, want.DemurrageCost, v.DemurrageCost)
	assert.Equal(t, want.TotalFuelCost, v.TotalFuelCost)
	assert.Equal(t, want.PotentialFuelSavings, v.PotentialFuelSavings)
	assert.Equal(t, want.ActualTotalCost, v.ActualTotalCost)
	assert.Equal(t, want.OptimizedTotalCost, v.OptimizedTotalCost)
}

func TestVoyageSnapshotStore_ReplaceIsWholesale(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	first := []domain.EnrichedVoyage{
		createTestVoyage("TANKER-001", 0),
		createTestVoyage("TANKER-002", 1),
		createTestVoyage("TANKER-003", 2),
	}
	require.NoError(t, store.Replace(ctx, first))

	// The smaller batch must fully supersede, including vessels absent from it.
	second := []domain.EnrichedVoyage{createTestVoyage("TANKER-009", 3)}
	require.NoError(t, store.Replace(ctx, second))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TANKER-009", got[0].VesselID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVoyageSnapshotStore_ListOrder(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	batch := []domain.EnrichedVoyage{
		createTestVoyage("TANKER-003", 5),
		createTestVoyage("TANKER-002", 1),
		createTestVoyage("TANKER-001", 1),
	}
	require.NoError(t, store.Replace(ctx, batch))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "TANKER-001", got[0].VesselID)
	assert.Equal(t, "TANKER-002", got[1].VesselID)
	assert.Equal(t, "TANKER-003", got[2].VesselID)
}

func TestVoyageSnapshotStore_EmptyTable(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	_, err := store.List(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)

	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestVoyageSnapshotStore_ReplaceWithEmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	require.NoError(t, store.Replace(ctx, []domain.EnrichedVoyage{createTestVoyage("TANKER-001", 0)}))

	// Empty batch clears the snapshot.
	require.NoError(t, store.Replace(ctx, nil))

	_, err := store.List(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestVoyageSnapshotStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVoyageSnapshotStore(conn)

	require.NoError(t, store.Replace(ctx, []domain.EnrichedVoyage{createTestVoyage("TANKER-001", 0)}))

	bad := createTestVoyage("", 1)
	err := store.Replace(ctx, []domain.EnrichedVoyage{bad})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Rejected batch must leave the previous snapshot intact.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
