package domain

import "fmt"

// Tariff holds every rate, price, and threshold the cost and recommendation
// formulas depend on. Keeping them in one structure keeps the formulas
// auditable and testable in isolation.
type Tariff struct {
	DemurrageRatePerDay           float64 // currency units per waiting day
	FuelPricePerTon               float64 // currency units per ton
	SlowdownFactor                float64 // optimal speed multiplier under congestion
	SavingsRate                   float64 // fuel-cost savings rate per waiting day avoided
	ReferenceSpeedKnots           float64 // nominal cruising speed for planning estimates
	ReferenceDailyConsumptionTons float64 // nominal fuel burn per day at sea
	SlowSteamingFactor            float64 // recommended speed factor under congestion
	CongestionThreshold           int     // queue sizes strictly above this trigger slow steaming
}

// DefaultTariff returns the reference tariff.
func DefaultTariff() Tariff {
	return Tariff{
		DemurrageRatePerDay:           30000,
		FuelPricePerTon:               600,
		SlowdownFactor:                0.75,
		SavingsRate:                   0.15,
		ReferenceSpeedKnots:           14.0,
		ReferenceDailyConsumptionTons: 30,
		SlowSteamingFactor:            0.8,
		CongestionThreshold:           1,
	}
}

// Validate checks that every rate the formulas divide by or scale with is
// usable.
func (t Tariff) Validate() error {
	if t.DemurrageRatePerDay < 0 {
		return fmt.Errorf("%w: demurrage rate must be >= 0, got %v", ErrInvalidInput, t.DemurrageRatePerDay)
	}
	if t.FuelPricePerTon < 0 {
		return fmt.Errorf("%w: fuel price must be >= 0, got %v", ErrInvalidInput, t.FuelPricePerTon)
	}
	if t.SlowdownFactor <= 0 || t.SlowdownFactor > 1 {
		return fmt.Errorf("%w: slowdown factor must be in (0, 1], got %v", ErrInvalidInput, t.SlowdownFactor)
	}
	if t.SavingsRate < 0 {
		return fmt.Errorf("%w: savings rate must be >= 0, got %v", ErrInvalidInput, t.SavingsRate)
	}
	if t.ReferenceSpeedKnots <= 0 {
		return fmt.Errorf("%w: reference speed must be > 0, got %v", ErrInvalidInput, t.ReferenceSpeedKnots)
	}
	if t.ReferenceDailyConsumptionTons <= 0 {
		return fmt.Errorf("%w: reference daily consumption must be > 0, got %v", ErrInvalidInput, t.ReferenceDailyConsumptionTons)
	}
	if t.SlowSteamingFactor <= 0 || t.SlowSteamingFactor > 1 {
		return fmt.Errorf("%w: slow steaming factor must be in (0, 1], got %v", ErrInvalidInput, t.SlowSteamingFactor)
	}
	if t.CongestionThreshold < 0 {
		return fmt.Errorf("%w: congestion threshold must be >= 0, got %d", ErrInvalidInput, t.CongestionThreshold)
	}
	return nil
}
