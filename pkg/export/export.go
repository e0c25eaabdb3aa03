// Package export writes estimate history records for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/carprice/core/pricing/history"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json"}

// Write encodes recs to w in the named format.
func Write(w io.Writer, format string, recs []history.Record) error {
	switch format {
	case "csv":
		return WriteCSV(w, recs)
	case "json":
		return WriteJSON(w, recs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the records as a JSON array.
func WriteJSON(w io.Writer, recs []history.Record) error {
	if recs == nil {
		recs = []history.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

var csvHeader = []string{
	"id", "timestamp", "outcome", "reason", "brand", "model", "year", "odometer_km",
	"engine_cc", "transmission", "fuel_type", "owner", "mean_usd", "lower_usd", "upper_usd", "low_mileage",
}

// WriteCSV writes one row per record. Price columns are empty for rejections.
func WriteCSV(w io.Writer, recs []history.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		v := r.Vehicle
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Outcome,
			r.Reason,
			v.Brand,
			v.Model,
			strconv.Itoa(v.Year),
			strconv.Itoa(v.OdometerKM),
			strconv.Itoa(v.EngineCC),
			string(v.Transmission),
			string(v.FuelType),
			string(v.Owner),
			"", "", "", "",
		}
		if e := r.Estimate; e != nil {
			row[12] = money(e.Mean)
			row[13] = money(e.Lower)
			row[14] = money(e.Upper)
			row[15] = strconv.FormatBool(e.LowMileageWarning)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
