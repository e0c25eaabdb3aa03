package model

import "time"

// Currency is the unit every estimate is expressed in.
const Currency = "USD"

// Breakdown exposes the intermediate values of the calibration pipeline.
type Breakdown struct {
	RawMean           float64 `json:"raw_mean"`
	Spread            float64 `json:"spread"`
	Votes             int     `json:"votes"`
	Age               int     `json:"age"`
	AgeFactor         float64 `json:"age_factor"`
	MileageMultiplier float64 `json:"mileage_multiplier"`
	Factor            float64 `json:"factor"`
	Cap               float64 `json:"cap"`
}

// PriceEstimate is the calibrated result of one prediction request.
type PriceEstimate struct {
	ID                string    `json:"id"`
	Vehicle           Vehicle   `json:"vehicle"`
	Mean              float64   `json:"mean"`
	Lower             float64   `json:"lower"`
	Upper             float64   `json:"upper"`
	Currency          string    `json:"currency"`
	LowMileageWarning bool      `json:"low_mileage_warning"`
	Breakdown         Breakdown `json:"breakdown"`
	CreatedAt         time.Time `json:"created_at"`
}
