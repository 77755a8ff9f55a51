package reporting

import (
	"context"
	"time"

	"portsync/internal/domain"
	"portsync/internal/fleet"
	"portsync/internal/idhash"
	"portsync/internal/storage"
	"portsync/internal/storage/csvfile"
)

// Generator produces fleet reports from the stored snapshot.
type Generator struct {
	store storage.VoyageSnapshotStore
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(store storage.VoyageSnapshotStore) *Generator {
	return &Generator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete fleet report from the stored snapshot.
// Propagates storage.ErrNoSnapshot untouched so callers can degrade to an
// empty view instead of failing.
func (g *Generator) Generate(ctx context.Context) (*FleetReport, error) {
	voyages, err := g.store.List(ctx)
	if err != nil {
		return nil, err
	}

	// List returned at least one voyage, so Summarize cannot see an empty batch.
	summary, err := fleet.Summarize(voyages)
	if err != nil {
		return nil, err
	}

	top := fleet.TopByActualCost(voyages, TopVoyageCount)
	rows := make([]TopVoyageRow, len(top))
	for i, v := range top {
		rows[i] = TopVoyageRow{
			VesselID:             v.VesselID,
			ArrivalDate:          v.ArrivalDate,
			QueueSize:            v.QueueSize,
			WaitingDays:          v.WaitingDays,
			DemurrageCost:        v.DemurrageCost,
			TotalFuelCost:        v.TotalFuelCost,
			ActualTotalCost:      v.ActualTotalCost,
			PotentialFuelSavings: v.PotentialFuelSavings,
			CostBand:             domain.CostBandFor(v.DemurrageCost),
		}
	}

	// The version is derived from the canonical CSV bytes, so reports over
	// identical snapshots carry identical versions regardless of backend.
	version := idhash.ComputeSnapshotVersion(csvfile.Encode(voyages))

	return &FleetReport{
		GeneratedAt:       g.now(),
		SnapshotVersion:   version,
		TotalVoyages:      len(voyages),
		Summary:           summary,
		TopVoyages:        rows,
		QueueDistribution: fleet.QueueDistribution(voyages),
		Voyages:           voyages,
	}, nil
}
