package fleet

import (
	"sort"

	"portsync/internal/domain"
)

// TopByActualCost returns the n costliest voyages by ActualTotalCost in
// descending order. Ties break by VesselID ascending so output is
// deterministic. The input batch is not modified.
func TopByActualCost(batch []domain.EnrichedVoyage, n int) []domain.EnrichedVoyage {
	if n <= 0 || len(batch) == 0 {
		return nil
	}

	ranked := make([]domain.EnrichedVoyage, len(batch))
	copy(ranked, batch)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ActualTotalCost != ranked[j].ActualTotalCost {
			return ranked[i].ActualTotalCost > ranked[j].ActualTotalCost
		}
		return ranked[i].VesselID < ranked[j].VesselID
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
