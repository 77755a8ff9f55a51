package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"portsync/internal/domain"
)

// Sampling parameters for the synthetic fleet.
const (
	nominalSpeedKnots = 14.0 // mean of the actual-speed distribution
	speedStddevKnots  = 1.0
	minWaitingDays    = 1.0 // lower bound when the queue is non-empty
	maxWaitingDays    = 4.0
	minFuelTons       = 500
	maxFuelTons       = 800
)

// Generator produces synthetic voyage batches from a seeded source.
type Generator struct {
	now func() time.Time // Injectable clock anchoring the arrival window
}

// New creates a generator anchored to the current time.
func New() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces count voyage records from the given seed. For a fixed
// clock, the same (count, seed) pair always yields an identical batch.
// Steps:
//  1. Sample arrival-day offsets over the trailing 90-day window, sort ascending
//  2. Assign vessel IDs TANKER-001.. in arrival order
//  3. Sample queue size from the categorical weights
//  4. Sample waiting days (0 iff the queue is empty, else uniform [1.0, 4.0])
//  5. Sample actual speed and fuel consumption
//
// Speeds are drawn from Normal(14.0, 1.0) and not clamped; extreme tails can
// produce unrealistic values. That is an accepted limitation of the model.
func (g *Generator) Generate(count int, seed int64) ([]domain.VoyageRecord, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be > 0, got %d", domain.ErrInvalidInput, count)
	}

	rng := rand.New(rand.NewSource(seed))

	// Arrival dates are date-valued: the window is anchored at UTC midnight.
	ref := g.now().UTC()
	windowStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -domain.ArrivalWindowDays)

	// 1. Offsets sorted before IDs are assigned, so IDs follow arrival order.
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = rng.Intn(domain.ArrivalWindowDays)
	}
	sort.Ints(offsets)

	records := make([]domain.VoyageRecord, count)
	for i := range records {
		queue := sampleQueueSize(rng)

		waiting := 0.0
		if queue > 0 {
			waiting = round2(minWaitingDays + rng.Float64()*(maxWaitingDays-minWaitingDays))
		}

		records[i] = domain.VoyageRecord{
			VesselID:         fmt.Sprintf("TANKER-%03d", i+1),
			ArrivalDate:      windowStart.AddDate(0, 0, offsets[i]),
			QueueSize:        queue,
			WaitingDays:      waiting,
			ActualSpeedKnots: round1(nominalSpeedKnots + rng.NormFloat64()*speedStddevKnots),
			FuelConsumedTons: minFuelTons + rng.Intn(maxFuelTons-minFuelTons+1),
		}
	}

	return records, nil
}

// sampleQueueSize draws a queue size from the categorical weights, treating
// them as cumulative thresholds.
func sampleQueueSize(rng *rand.Rand) int {
	u := rng.Float64()
	cum := 0.0
	for size, w := range domain.QueueSizeWeights {
		cum += w
		if u < cum {
			return size
		}
	}
	return domain.MaxQueueSize
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
