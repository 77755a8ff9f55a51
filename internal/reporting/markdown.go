package reporting

import (
	"fmt"
	"strings"
	"time"

	"portsync/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *FleetReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Port Traffic Fleet Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Snapshot: %s | Voyages: %d\n\n", r.SnapshotVersion, r.TotalVoyages))

	// Fleet Summary
	sb.WriteString("## Fleet Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Voyages | %d |\n", r.Summary.TotalVoyages))
	sb.WriteString(fmt.Sprintf("| Vessels That Waited | %d |\n", r.Summary.VesselsWaited))
	sb.WriteString(fmt.Sprintf("| Total Demurrage Cost | $%.2f |\n", r.Summary.TotalDemurrage))
	sb.WriteString(fmt.Sprintf("| Total Fuel Cost | $%.2f |\n", r.Summary.TotalFuelCost))
	sb.WriteString(fmt.Sprintf("| Total Potential Savings | $%.2f |\n", r.Summary.TotalPotentialSavings))
	sb.WriteString(fmt.Sprintf("| Port Efficiency Score | %.1f%% (%s) |\n", r.Summary.EfficiencyScore, r.Summary.EfficiencyBand))
	sb.WriteString("\n")

	// Costliest Voyages
	sb.WriteString("## Costliest Voyages\n\n")
	if len(r.TopVoyages) > 0 {
		sb.WriteString("| Vessel | Arrival | Queue | Waiting Days | Demurrage | Fuel Cost | Total Cost | Potential Savings | Flag |\n")
		sb.WriteString("|--------|---------|-------|--------------|-----------|-----------|------------|-------------------|------|\n")
		for _, v := range r.TopVoyages {
			flag := ""
			if v.CostBand == domain.CostBandAttention {
				flag = string(domain.CostBandAttention)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | $%.2f | $%.2f | $%.2f | $%.2f | %s |\n",
				v.VesselID, v.ArrivalDate.Format("2006-01-02"), v.QueueSize, v.WaitingDays,
				v.DemurrageCost, v.TotalFuelCost, v.ActualTotalCost, v.PotentialFuelSavings, flag))
		}
	} else {
		sb.WriteString("No voyages available.\n")
	}
	sb.WriteString("\n")

	// Queue Distribution
	sb.WriteString("## Queue Distribution\n\n")
	if len(r.QueueDistribution) > 0 {
		sb.WriteString("| Queue Size | Voyages |\n")
		sb.WriteString("|------------|--------|\n")
		for size, count := range r.QueueDistribution {
			sb.WriteString(fmt.Sprintf("| %d | %d |\n", size, count))
		}
	} else {
		sb.WriteString("No queue data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
