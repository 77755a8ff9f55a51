package domain

// EfficiencyBand classifies a fleet efficiency score.
type EfficiencyBand string

const (
	EfficiencyHigh EfficiencyBand = "High"
	EfficiencyLow  EfficiencyBand = "Low"
)

// EfficiencyHighThreshold is the score strictly above which a fleet is
// considered high efficiency.
const EfficiencyHighThreshold = 80.0

// EfficiencyBandFor classifies an efficiency score.
func EfficiencyBandFor(score float64) EfficiencyBand {
	if score > EfficiencyHighThreshold {
		return EfficiencyHigh
	}
	return EfficiencyLow
}

// CostBand classifies a single voyage's demurrage exposure.
type CostBand string

const (
	CostBandNormal    CostBand = "NORMAL"
	CostBandAttention CostBand = "ATTENTION"
)

// DemurrageAttentionThreshold is the demurrage cost strictly above which a
// voyage is flagged for attention.
const DemurrageAttentionThreshold = 50000.0

// CostBandFor classifies a demurrage cost.
func CostBandFor(demurrageCost float64) CostBand {
	if demurrageCost > DemurrageAttentionThreshold {
		return CostBandAttention
	}
	return CostBandNormal
}

// FleetSummary holds the aggregate statistics over one enriched batch.
type FleetSummary struct {
	TotalVoyages          int            // batch size
	VesselsWaited         int            // voyages with WaitingDays > 0
	TotalDemurrage        float64        // sum of DemurrageCost
	TotalFuelCost         float64        // sum of TotalFuelCost
	TotalPotentialSavings float64        // sum of PotentialFuelSavings
	EfficiencyScore       float64        // 100 * (1 - VesselsWaited/TotalVoyages)
	EfficiencyBand        EfficiencyBand // High iff score > 80
}
