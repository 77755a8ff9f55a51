// Package main provides the speed recommendation entry point.
// Computes a transient queue-based speed recommendation for an inbound
// vessel; nothing is persisted.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"portsync/internal/domain"
	"portsync/internal/recommendation"
)

// recommendationResponse is the JSON output shape.
type recommendationResponse struct {
	Decision          string  `json:"decision"`
	SpeedFactor       float64 `json:"speed_factor"`
	DaysAtSea         float64 `json:"days_at_sea"`
	EstimatedFuelCost float64 `json:"estimated_fuel_cost"`
	EstimatedSavings  float64 `json:"estimated_savings"`
}

func main() {
	// Missing .env file is fine; system env vars take precedence
	_ = godotenv.Load()

	defaults := domain.DefaultTariff()

	distanceNM := flag.Float64("distance-nm", 0, "Remaining distance to port in nautical miles (required)")
	queue := flag.Int("queue", 0, "Current queue size at the port")
	format := flag.String("format", "text", "Output format: text or json")
	fuelPrice := flag.Float64("fuel-price", defaults.FuelPricePerTon, "Fuel price per ton (USD)")
	flag.Parse()

	tariff := defaults
	tariff.FuelPricePerTon = *fuelPrice
	if err := tariff.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rec, err := recommendation.NewEngine(tariff).Recommend(*distanceNM, *queue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "text":
		fmt.Print(recommendation.RenderMarkdown(*distanceNM, *queue, rec))
	case "json":
		resp := recommendationResponse{
			Decision:          rec.Decision.String(),
			SpeedFactor:       rec.SpeedFactor,
			DaysAtSea:         rec.DaysAtSea,
			EstimatedFuelCost: rec.EstimatedFuelCost,
			EstimatedSavings:  rec.EstimatedSavings,
		}
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (use text or json)\n", *format)
		os.Exit(1)
	}
}
