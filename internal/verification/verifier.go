// Package verification checks snapshot integrity after a pipeline run: the
// stored snapshot must round-trip the in-memory batch, and regenerating from
// the same seed must reproduce the raw batch.
package verification

import (
	"math"

	"portsync/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons. The CSV exchange
// format serializes money at two decimals and speeds at one; the worst
// round-trip error on any derived field is bounded well below this.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between expected and stored values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // in-memory value
	Actual   interface{} // stored value
}

// VerificationResult contains the result of verifying a single voyage.
type VerificationResult struct {
	VesselID    string            // verified vessel
	Match       bool              // true if all fields match
	Divergences []FieldDivergence // list of divergent fields
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalVoyages     int                  // voyages verified
	MatchedVoyages   int                  // voyages that matched
	DivergentVoyages int                  // voyages with divergences
	CountMismatch    bool                 // stored count differs from expected
	Results          []VerificationResult // individual results
}

// Passed reports whether every voyage matched and the counts agree.
func (r *VerificationReport) Passed() bool {
	return !r.CountMismatch && r.DivergentVoyages == 0
}

// CompareVoyages compares an in-memory enriched voyage against its stored
// counterpart and returns divergences. Uses FloatTolerance for float64
// comparisons.
func CompareVoyages(expected, stored domain.EnrichedVoyage) []FieldDivergence {
	var divergences []FieldDivergence

	if expected.VesselID != stored.VesselID {
		divergences = append(divergences, FieldDivergence{
			Field:    "VesselID",
			Expected: expected.VesselID,
			Actual:   stored.VesselID,
		})
	}

	if !expected.ArrivalDate.Equal(stored.ArrivalDate) {
		divergences = append(divergences, FieldDivergence{
			Field:    "ArrivalDate",
			Expected: expected.ArrivalDate,
			Actual:   stored.ArrivalDate,
		})
	}

	if expected.QueueSize != stored.QueueSize {
		divergences = append(divergences, FieldDivergence{
			Field:    "QueueSize",
			Expected: expected.QueueSize,
			Actual:   stored.QueueSize,
		})
	}

	if !floatEquals(expected.WaitingDays, stored.WaitingDays) {
		divergences = append(divergences, FieldDivergence{
			Field:    "WaitingDays",
			Expected: expected.WaitingDays,
			Actual:   stored.WaitingDays,
		})
	}

	if !floatEquals(expected.ActualSpeedKnots, stored.ActualSpeedKnots) {
		divergences = append(divergences, FieldDivergence{
			Field:    "ActualSpeedKnots",
			Expected: expected.ActualSpeedKnots,
			Actual:   stored.ActualSpeedKnots,
		})
	}

	if expected.FuelConsumedTons != stored.FuelConsumedTons {
		divergences = append(divergences, FieldDivergence{
			Field:    "FuelConsumedTons",
			Expected: expected.FuelConsumedTons,
			Actual:   stored.FuelConsumedTons,
		})
	}

	if !floatEquals(expected.OptimalSpeedKnots, stored.OptimalSpeedKnots) {
		divergences = append(divergences, FieldDivergence{
			Field:    "OptimalSpeedKnots",
			Expected: expected.OptimalSpeedKnots,
			Actual:   stored.OptimalSpeedKnots,
		})
	}

	if !floatEquals(expected.DemurrageCost, stored.DemurrageCost) {
		divergences = append(divergences, FieldDivergence{
			Field:    "DemurrageCost",
			Expected: expected.DemurrageCost,
			Actual:   stored.DemurrageCost,
		})
	}

	if !floatEquals(expected.TotalFuelCost, stored.TotalFuelCost) {
		divergences = append(divergences, FieldDivergence{
			Field:    "TotalFuelCost",
			Expected: expected.TotalFuelCost,
			Actual:   stored.TotalFuelCost,
		})
	}

	if !floatEquals(expected.PotentialFuelSavings, stored.PotentialFuelSavings) {
		divergences = append(divergences, FieldDivergence{
			Field:    "PotentialFuelSavings",
			Expected: expected.PotentialFuelSavings,
			Actual:   stored.PotentialFuelSavings,
		})
	}

	if !floatEquals(expected.ActualTotalCost, stored.ActualTotalCost) {
		divergences = append(divergences, FieldDivergence{
			Field:    "ActualTotalCost",
			Expected: expected.ActualTotalCost,
			Actual:   stored.ActualTotalCost,
		})
	}

	if !floatEquals(expected.OptimizedTotalCost, stored.OptimizedTotalCost) {
		divergences = append(divergences, FieldDivergence{
			Field:    "OptimizedTotalCost",
			Expected: expected.OptimizedTotalCost,
			Actual:   stored.OptimizedTotalCost,
		})
	}

	return divergences
}

// CompareRawRecords compares two raw voyage records. Raw fields come straight
// from the seeded generator, so everything must match exactly.
func CompareRawRecords(expected, regenerated domain.VoyageRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if expected.VesselID != regenerated.VesselID {
		divergences = append(divergences, FieldDivergence{
			Field:    "VesselID",
			Expected: expected.VesselID,
			Actual:   regenerated.VesselID,
		})
	}

	if !expected.ArrivalDate.Equal(regenerated.ArrivalDate) {
		divergences = append(divergences, FieldDivergence{
			Field:    "ArrivalDate",
			Expected: expected.ArrivalDate,
			Actual:   regenerated.ArrivalDate,
		})
	}

	if expected.QueueSize != regenerated.QueueSize {
		divergences = append(divergences, FieldDivergence{
			Field:    "QueueSize",
			Expected: expected.QueueSize,
			Actual:   regenerated.QueueSize,
		})
	}

	if expected.WaitingDays != regenerated.WaitingDays {
		divergences = append(divergences, FieldDivergence{
			Field:    "WaitingDays",
			Expected: expected.WaitingDays,
			Actual:   regenerated.WaitingDays,
		})
	}

	if expected.ActualSpeedKnots != regenerated.ActualSpeedKnots {
		divergences = append(divergences, FieldDivergence{
			Field:    "ActualSpeedKnots",
			Expected: expected.ActualSpeedKnots,
			Actual:   regenerated.ActualSpeedKnots,
		})
	}

	if expected.FuelConsumedTons != regenerated.FuelConsumedTons {
		divergences = append(divergences, FieldDivergence{
			Field:    "FuelConsumedTons",
			Expected: expected.FuelConsumedTons,
			Actual:   regenerated.FuelConsumedTons,
		})
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
