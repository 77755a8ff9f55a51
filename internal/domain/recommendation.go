package domain

// Decision represents the speed-adjustment decision for an inbound vessel.
type Decision string

const (
	DecisionSlowSteaming  Decision = "SLOW_STEAMING"
	DecisionMaintainSpeed Decision = "MAINTAIN_SPEED"
)

// String returns the string representation of Decision.
func (d Decision) String() string {
	return string(d)
}

// IsValid checks if the decision is a valid value.
func (d Decision) IsValid() bool {
	return d == DecisionSlowSteaming || d == DecisionMaintainSpeed
}

// Recommendation is the result of a single speed-recommendation query.
// Transient: computed on demand, never persisted.
type Recommendation struct {
	Decision          Decision // SLOW_STEAMING | MAINTAIN_SPEED
	SpeedFactor       float64  // multiplier on current service speed
	DaysAtSea         float64  // distance / (reference speed * 24), 0 when maintaining
	EstimatedFuelCost float64  // planning estimate at reference burn rate
	EstimatedSavings  float64  // EstimatedFuelCost * savings rate, 0 when maintaining
}
