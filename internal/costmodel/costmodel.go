package costmodel

import (
	"math"

	"portsync/internal/domain"
)

// Model derives the economic fields of a voyage from a tariff. Derivation is
// pure: no I/O, no failure modes for well-formed records.
type Model struct {
	tariff domain.Tariff
}

// New creates a cost model over the given tariff.
func New(tariff domain.Tariff) *Model {
	return &Model{tariff: tariff}
}

// Tariff returns the tariff the model derives with.
func (m *Model) Tariff() domain.Tariff {
	return m.tariff
}

// Derive computes every derived field for one voyage.
//
// Formulas:
//   - demurrage_cost = waiting_days * demurrage rate
//   - total_fuel_cost = fuel_consumed_tons * fuel price
//   - optimal_speed_knots = round1(actual * slowdown factor) when queued, else actual unchanged
//   - potential_fuel_savings = round2(total_fuel_cost * savings rate * waiting_days) when queued, else 0
//   - actual_total_cost = demurrage_cost + total_fuel_cost
//   - optimized_total_cost = total_fuel_cost - potential_fuel_savings
//
// The savings rate scales with waiting days and is deliberately uncapped:
// past roughly 6.7 waiting days the projected savings exceed the fuel bill
// and the optimized total goes negative. The model carries that as-is.
func (m *Model) Derive(r domain.VoyageRecord) domain.EnrichedVoyage {
	e := domain.EnrichedVoyage{
		VesselID:         r.VesselID,
		ArrivalDate:      r.ArrivalDate,
		QueueSize:        r.QueueSize,
		WaitingDays:      r.WaitingDays,
		ActualSpeedKnots: r.ActualSpeedKnots,
		FuelConsumedTons: r.FuelConsumedTons,
	}

	e.DemurrageCost = r.WaitingDays * m.tariff.DemurrageRatePerDay
	e.TotalFuelCost = float64(r.FuelConsumedTons) * m.tariff.FuelPricePerTon

	if r.QueueSize > 0 {
		e.OptimalSpeedKnots = round1(r.ActualSpeedKnots * m.tariff.SlowdownFactor)
		e.PotentialFuelSavings = round2(e.TotalFuelCost * m.tariff.SavingsRate * r.WaitingDays)
	} else {
		e.OptimalSpeedKnots = r.ActualSpeedKnots
		e.PotentialFuelSavings = 0
	}

	e.ActualTotalCost = e.DemurrageCost + e.TotalFuelCost
	e.OptimizedTotalCost = e.TotalFuelCost - e.PotentialFuelSavings

	return e
}

// DeriveBatch derives every record in input order. Each output row depends
// only on its own input row.
func (m *Model) DeriveBatch(records []domain.VoyageRecord) []domain.EnrichedVoyage {
	if len(records) == 0 {
		return nil
	}
	enriched := make([]domain.EnrichedVoyage, len(records))
	for i, r := range records {
		enriched[i] = m.Derive(r)
	}
	return enriched
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
