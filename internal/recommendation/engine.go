package recommendation

import (
	"fmt"

	"portsync/internal/domain"
)

// Engine computes speed recommendations for inbound vessels. Stateless: the
// result is purely a function of the two query inputs and the tariff.
type Engine struct {
	tariff domain.Tariff
}

// NewEngine creates a recommendation engine over the given tariff.
func NewEngine(tariff domain.Tariff) *Engine {
	return &Engine{tariff: tariff}
}

// Recommend classifies the queue state and estimates slow-steaming savings.
//
//   - queue above the congestion threshold: SLOW_STEAMING at the slow-steaming
//     factor; days_at_sea = distance / (reference speed * 24);
//     estimated_fuel_cost = days_at_sea * reference daily burn * fuel price;
//     estimated_savings = estimated_fuel_cost * savings rate.
//   - otherwise MAINTAIN_SPEED at factor 1.0 with zero estimates.
//
// The fuel estimate is a planning heuristic at the reference burn rate, not
// a per-vessel optimization. Queue sizes above the generated 0..5 range are
// accepted; only negative queues and non-positive distances are rejected.
func (e *Engine) Recommend(distanceNM float64, currentQueue int) (domain.Recommendation, error) {
	if distanceNM <= 0 {
		return domain.Recommendation{}, fmt.Errorf("%w: distance must be > 0 nm, got %v", domain.ErrInvalidInput, distanceNM)
	}
	if currentQueue < 0 {
		return domain.Recommendation{}, fmt.Errorf("%w: queue size must be >= 0, got %d", domain.ErrInvalidInput, currentQueue)
	}

	if currentQueue <= e.tariff.CongestionThreshold {
		return domain.Recommendation{
			Decision:    domain.DecisionMaintainSpeed,
			SpeedFactor: 1.0,
		}, nil
	}

	daysAtSea := distanceNM / (e.tariff.ReferenceSpeedKnots * 24)
	estimatedFuelCost := daysAtSea * e.tariff.ReferenceDailyConsumptionTons * e.tariff.FuelPricePerTon

	return domain.Recommendation{
		Decision:          domain.DecisionSlowSteaming,
		SpeedFactor:       e.tariff.SlowSteamingFactor,
		DaysAtSea:         daysAtSea,
		EstimatedFuelCost: estimatedFuelCost,
		EstimatedSavings:  estimatedFuelCost * e.tariff.SavingsRate,
	}, nil
}
