package fleet

import (
	"errors"

	"portsync/internal/domain"
)

// ErrNoVoyages is returned when no voyages are available for aggregation.
// Consumers treat it as the empty state rather than a failure.
var ErrNoVoyages = errors.New("no voyages available for aggregation")

// Summarize computes the fleet aggregates over one enriched batch: total
// demurrage, total fuel cost, total potential savings, and the efficiency
// score 100 * (1 - vessels_waited / total_voyages).
//
// An empty batch returns the zero summary with ErrNoVoyages.
func Summarize(batch []domain.EnrichedVoyage) (domain.FleetSummary, error) {
	if len(batch) == 0 {
		return domain.FleetSummary{}, ErrNoVoyages
	}

	summary := domain.FleetSummary{TotalVoyages: len(batch)}
	for _, v := range batch {
		if v.WaitingDays > 0 {
			summary.VesselsWaited++
		}
		summary.TotalDemurrage += v.DemurrageCost
		summary.TotalFuelCost += v.TotalFuelCost
		summary.TotalPotentialSavings += v.PotentialFuelSavings
	}

	// Integer-first so exact percentages stay exact.
	summary.EfficiencyScore = float64((summary.TotalVoyages-summary.VesselsWaited)*100) / float64(summary.TotalVoyages)
	summary.EfficiencyBand = domain.EfficiencyBandFor(summary.EfficiencyScore)

	return summary, nil
}

// QueueDistribution counts voyages per queue size, indexed 0..MaxQueueSize.
func QueueDistribution(batch []domain.EnrichedVoyage) []int {
	counts := make([]int, domain.MaxQueueSize+1)
	for _, v := range batch {
		if v.QueueSize >= 0 && v.QueueSize <= domain.MaxQueueSize {
			counts[v.QueueSize]++
		}
	}
	return counts
}
