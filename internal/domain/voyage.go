package domain

import "time"

// VoyageRecord represents one simulated tanker voyage before cost derivation.
type VoyageRecord struct {
	VesselID         string    // unique within batch, format TANKER-NNN
	ArrivalDate      time.Time // date within the trailing 90-day window
	QueueSize        int       // ships ahead at arrival, 0..5
	WaitingDays      float64   // 0 iff QueueSize == 0, else [1.0, 4.0] rounded to 2dp
	ActualSpeedKnots float64   // Normal(14.0, 1.0) rounded to 1dp, tails uncorrected
	FuelConsumedTons int       // uniform [500, 800]
}

// EnrichedVoyage represents a voyage with all derived cost fields computed.
// Corresponds to one row of the voyage snapshot. Immutable once derived;
// a fresh batch replaces the prior snapshot wholesale.
type EnrichedVoyage struct {
	// Raw
	VesselID         string
	ArrivalDate      time.Time
	QueueSize        int
	WaitingDays      float64
	ActualSpeedKnots float64
	FuelConsumedTons int

	// Derived
	OptimalSpeedKnots    float64 // ActualSpeedKnots when QueueSize == 0, else reduced
	DemurrageCost        float64 // WaitingDays * demurrage rate
	TotalFuelCost        float64 // FuelConsumedTons * fuel price
	PotentialFuelSavings float64 // 0 iff QueueSize == 0
	ActualTotalCost      float64 // DemurrageCost + TotalFuelCost
	OptimizedTotalCost   float64 // TotalFuelCost - PotentialFuelSavings
}

// MaxQueueSize is the largest queue size the generator produces.
const MaxQueueSize = 5

// QueueSizeWeights is the categorical distribution over queue sizes 0..5.
// The weights sum to 1.00 and are consumed as cumulative thresholds, so no
// renormalization is applied.
var QueueSizeWeights = []float64{0.30, 0.25, 0.25, 0.07, 0.07, 0.06}

// ArrivalWindowDays is the width of the trailing historical window that
// arrival dates are drawn from.
const ArrivalWindowDays = 90
