package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVehicle is returned when a descriptor cannot be priced because one
// of its attributes falls outside the reference catalog or input limits.
var ErrInvalidVehicle = errors.New("invalid vehicle")

// Transmission is the gearbox type of a vehicle.
type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
)

// FuelType is the energy source of a vehicle.
type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelCNG      FuelType = "CNG"
)

// Owner is the ownership rank of the seller.
type Owner string

const (
	OwnerFirst  Owner = "First Owner"
	OwnerSecond Owner = "Second Owner"
	OwnerThird  Owner = "Third Owner"
)

// Color is the body color of a vehicle.
type Color string

const (
	ColorWhite  Color = "White"
	ColorBlack  Color = "Black"
	ColorSilver Color = "Silver"
	ColorGrey   Color = "Grey"
	ColorRed    Color = "Red"
	ColorBlue   Color = "Blue"
)

// Transmissions lists every transmission in display order.
var Transmissions = []Transmission{TransmissionManual, TransmissionAutomatic}

// FuelTypes lists every fuel type in display order.
var FuelTypes = []FuelType{FuelPetrol, FuelDiesel, FuelElectric, FuelCNG}

// Owners lists every owner rank in display order.
var Owners = []Owner{OwnerFirst, OwnerSecond, OwnerThird}

// Colors is the fixed body color palette.
var Colors = []Color{ColorWhite, ColorBlack, ColorSilver, ColorGrey, ColorRed, ColorBlue}

// Vehicle describes the car being priced. It is request scoped and assembled
// by the input layer from catalog values.
type Vehicle struct {
	Brand          string       `json:"brand"`
	Model          string       `json:"model"`
	Year           int          `json:"year"`
	OdometerKM     int          `json:"odometer_km"`
	EngineCC       int          `json:"engine_cc"`
	MaxPowerBHP    int          `json:"max_power_bhp"`
	FuelTankLiters int          `json:"fuel_tank_liters"`
	Transmission   Transmission `json:"transmission"`
	FuelType       FuelType     `json:"fuel_type"`
	Owner          Owner        `json:"owner"`
	Color          Color        `json:"color"`
}

// Age returns the vehicle age in whole years relative to currentYear.
func (v Vehicle) Age(currentYear int) int {
	return currentYear - v.Year
}

// ParseTransmission matches s case-insensitively against the known transmissions.
func ParseTransmission(s string) (Transmission, error) {
	for _, t := range Transmissions {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown transmission %q", ErrInvalidVehicle, s)
}

// ParseFuelType matches s case-insensitively against the known fuel types.
func ParseFuelType(s string) (FuelType, error) {
	for _, f := range FuelTypes {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown fuel type %q", ErrInvalidVehicle, s)
}

// ParseOwner accepts both the full label ("Second Owner") and the short rank ("second").
func ParseOwner(s string) (Owner, error) {
	s = strings.TrimSpace(s)
	for _, o := range Owners {
		if strings.EqualFold(string(o), s) || strings.EqualFold(strings.TrimSuffix(string(o), " Owner"), s) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: unknown owner %q", ErrInvalidVehicle, s)
}

// ParseColor matches s case-insensitively against the palette.
func ParseColor(s string) (Color, error) {
	for _, c := range Colors {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown color %q", ErrInvalidVehicle, s)
}

func validEnum[T comparable](v T, all []T) bool {
	for _, x := range all {
		if x == v {
			return true
		}
	}
	return false
}

// ValidateEnums checks the categorical attributes against the fixed enumerations.
// Catalog membership and numeric limits are checked by the catalog.
func (v Vehicle) ValidateEnums() error {
	if !validEnum(v.Transmission, Transmissions) {
		return fmt.Errorf("%w: unknown transmission %q", ErrInvalidVehicle, v.Transmission)
	}
	if !validEnum(v.FuelType, FuelTypes) {
		return fmt.Errorf("%w: unknown fuel type %q", ErrInvalidVehicle, v.FuelType)
	}
	if !validEnum(v.Owner, Owners) {
		return fmt.Errorf("%w: unknown owner %q", ErrInvalidVehicle, v.Owner)
	}
	if !validEnum(v.Color, Colors) {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidVehicle, v.Color)
	}
	return nil
}
