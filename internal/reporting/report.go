package reporting

import (
	"time"

	"portsync/internal/domain"
)

// TopVoyageCount is how many costliest voyages a report lists.
const TopVoyageCount = 10

// FleetReport is the rendered view of one voyage snapshot.
type FleetReport struct {
	// Metadata
	GeneratedAt     time.Time
	SnapshotVersion string
	TotalVoyages    int

	// Fleet aggregates
	Summary domain.FleetSummary

	// Costliest voyages by actual total cost, highest first
	TopVoyages []TopVoyageRow

	// Voyage count per queue size; index is the queue size at arrival
	QueueDistribution []int

	// Full snapshot, arrival-date order; feeds the CSV rendering
	Voyages []domain.EnrichedVoyage
}

// TopVoyageRow is one row of the costliest-voyages table.
type TopVoyageRow struct {
	VesselID             string
	ArrivalDate          time.Time
	QueueSize            int
	WaitingDays          float64
	DemurrageCost        float64
	TotalFuelCost        float64
	ActualTotalCost      float64
	PotentialFuelSavings float64
	CostBand             domain.CostBand
}
