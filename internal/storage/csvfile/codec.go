package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portsync/internal/domain"
)

// Header is the snapshot exchange header. Column order is fixed; consumers
// match columns by position.
const Header = "Vessel_ID,Arrival_Date,Queue_Size,Waiting_Days,Actual_Speed_Knots,Fuel_Consumed_Tons,Optimal_Speed_Knots,Demurrage_Cost,Total_Fuel_Cost,Potential_Fuel_Savings_USD"

const (
	columnCount = 10
	dateLayout  = "2006-01-02"
)

// Encode renders a batch as canonical snapshot CSV bytes. Waiting days,
// demurrage, fuel cost, and savings carry two decimals; speeds carry one.
// The same bytes feed the snapshot version hash, so formatting here is part
// of the exchange contract.
func Encode(batch []domain.EnrichedVoyage) []byte {
	var sb strings.Builder

	sb.WriteString(Header)
	sb.WriteByte('\n')

	for _, v := range batch {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%.2f,%.1f,%d,%.1f,%.2f,%.2f,%.2f\n",
			v.VesselID,
			v.ArrivalDate.Format(dateLayout),
			v.QueueSize,
			v.WaitingDays,
			v.ActualSpeedKnots,
			v.FuelConsumedTons,
			v.OptimalSpeedKnots,
			v.DemurrageCost,
			v.TotalFuelCost,
			v.PotentialFuelSavings,
		))
	}

	return []byte(sb.String())
}

// Decode parses snapshot CSV bytes back into enriched voyages. The two
// total-cost fields are not columns of the exchange format; they are
// recomputed from the persisted columns on the way in.
func Decode(data []byte) ([]domain.EnrichedVoyage, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = columnCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := strings.Join(rows[0], ",")
	if header != Header {
		return nil, fmt.Errorf("decode snapshot: unexpected header %q", header)
	}

	voyages := make([]domain.EnrichedVoyage, 0, len(rows)-1)
	for i, row := range rows[1:] {
		v, err := decodeRow(row)
		if err != nil {
			// Row numbers count from the first data row.
			return nil, fmt.Errorf("decode snapshot: row %d: %w", i+1, err)
		}
		voyages = append(voyages, v)
	}

	return voyages, nil
}

func decodeRow(row []string) (domain.EnrichedVoyage, error) {
	var v domain.EnrichedVoyage

	if row[0] == "" {
		return v, fmt.Errorf("empty vessel ID")
	}
	v.VesselID = row[0]

	arrival, err := time.Parse(dateLayout, row[1])
	if err != nil {
		return v, fmt.Errorf("arrival date %q: %w", row[1], err)
	}
	v.ArrivalDate = arrival

	if v.QueueSize, err = strconv.Atoi(row[2]); err != nil {
		return v, fmt.Errorf("queue size %q: %w", row[2], err)
	}
	if v.WaitingDays, err = strconv.ParseFloat(row[3], 64); err != nil {
		return v, fmt.Errorf("waiting days %q: %w", row[3], err)
	}
	if v.ActualSpeedKnots, err = strconv.ParseFloat(row[4], 64); err != nil {
		return v, fmt.Errorf("actual speed %q: %w", row[4], err)
	}
	if v.FuelConsumedTons, err = strconv.Atoi(row[5]); err != nil {
		return v, fmt.Errorf("fuel consumed %q: %w", row[5], err)
	}
	if v.OptimalSpeedKnots, err = strconv.ParseFloat(row[6], 64); err != nil {
		return v, fmt.Errorf("optimal speed %q: %w", row[6], err)
	}
	if v.DemurrageCost, err = strconv.ParseFloat(row[7], 64); err != nil {
		return v, fmt.Errorf("demurrage cost %q: %w", row[7], err)
	}
	if v.TotalFuelCost, err = strconv.ParseFloat(row[8], 64); err != nil {
		return v, fmt.Errorf("fuel cost %q: %w", row[8], err)
	}
	if v.PotentialFuelSavings, err = strconv.ParseFloat(row[9], 64); err != nil {
		return v, fmt.Errorf("fuel savings %q: %w", row[9], err)
	}

	v.ActualTotalCost = v.DemurrageCost + v.TotalFuelCost
	v.OptimizedTotalCost = v.TotalFuelCost - v.PotentialFuelSavings

	return v, nil
}
