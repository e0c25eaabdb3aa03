package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/pricing/history"
)

func records() []history.Record {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	swift := model.Vehicle{Brand: "Maruti", Model: "Swift", Year: 2018, OdometerKM: 50000, EngineCC: 1200,
		Transmission: model.TransmissionManual, FuelType: model.FuelPetrol, Owner: model.OwnerFirst}
	return []history.Record{
		{ID: "a", Timestamp: ts, Vehicle: swift, Outcome: history.OutcomeEstimated,
			Estimate: &model.PriceEstimate{Mean: 9880, Lower: 9880, Upper: 10304.6}},
		{ID: "b", Timestamp: ts.Add(time.Minute), Vehicle: model.Vehicle{Brand: "Ferrari", Model: "488 Gtb", EngineCC: 900},
			Outcome: history.OutcomeRejected, Reason: "implausible_engine"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"a", "2026-03-01T12:00:00Z", "estimated", "", "Maruti", "Swift", "2018", "50000",
		"1200", "Manual", "Petrol", "First Owner", "9880.00", "9880.00", "10304.60", "false"}, rows[1])
	assert.Equal(t, "implausible_engine", rows[2][3])
	assert.Equal(t, "", rows[2][12])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, "json", records()))
	var out []history.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Nil(t, out[1].Estimate)
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
