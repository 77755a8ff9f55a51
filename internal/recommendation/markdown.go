package recommendation

import (
	"fmt"
	"strings"

	"portsync/internal/domain"
)

// RenderMarkdown renders a Recommendation as a Markdown string.
func RenderMarkdown(distanceNM float64, currentQueue int, rec domain.Recommendation) string {
	var sb strings.Builder

	sb.WriteString("# Speed Recommendation\n\n")
	sb.WriteString(fmt.Sprintf("## Decision: %s\n\n", rec.Decision))

	sb.WriteString("| Input | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Distance to port | %.0f nm |\n", distanceNM))
	sb.WriteString(fmt.Sprintf("| Current queue | %d ships |\n\n", currentQueue))

	sb.WriteString("| Result | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Speed factor | %.2f |\n", rec.SpeedFactor))

	if rec.Decision == domain.DecisionSlowSteaming {
		sb.WriteString(fmt.Sprintf("| Days at sea | %.2f |\n", rec.DaysAtSea))
		sb.WriteString(fmt.Sprintf("| Estimated fuel cost | $%.0f |\n", rec.EstimatedFuelCost))
		sb.WriteString(fmt.Sprintf("| Estimated savings | $%.0f |\n\n", rec.EstimatedSavings))
		sb.WriteString("Reduce speed to arrive after the queue clears.\n")
	} else {
		sb.WriteString("| Estimated savings | $0 |\n\n")
		sb.WriteString("Port is clear. Proceed at normal service speed.\n")
	}

	return sb.String()
}
