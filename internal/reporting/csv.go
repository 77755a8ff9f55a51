package reporting

import "portsync/internal/storage/csvfile"

// RenderCSV renders the report's snapshot in the exchange format: the fixed
// ten-column header, one row per voyage. The bytes match what the csvfile
// backend persists, so the report CSV can be fed straight back in.
func RenderCSV(r *FleetReport) string {
	return string(csvfile.Encode(r.Voyages))
}
