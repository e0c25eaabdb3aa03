package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnums(t *testing.T) {
	tr, err := ParseTransmission("automatic")
	require.NoError(t, err)
	assert.Equal(t, TransmissionAutomatic, tr)

	f, err := ParseFuelType(" cng ")
	require.NoError(t, err)
	assert.Equal(t, FuelCNG, f)

	o, err := ParseOwner("second")
	require.NoError(t, err)
	assert.Equal(t, OwnerSecond, o)
	o, err = ParseOwner("Third Owner")
	require.NoError(t, err)
	assert.Equal(t, OwnerThird, o)

	c, err := ParseColor("GREY")
	require.NoError(t, err)
	assert.Equal(t, ColorGrey, c)

	_, err = ParseColor("Purple")
	assert.True(t, errors.Is(err, ErrInvalidVehicle))
}

func TestVehicle_ValidateEnums(t *testing.T) {
	v := Vehicle{Transmission: TransmissionManual, FuelType: FuelPetrol, Owner: OwnerFirst, Color: ColorWhite}
	assert.NoError(t, v.ValidateEnums())

	bad := v
	bad.Color = "Purple"
	assert.ErrorIs(t, bad.ValidateEnums(), ErrInvalidVehicle)

	bad = v
	bad.Owner = "Fourth Owner"
	assert.ErrorIs(t, bad.ValidateEnums(), ErrInvalidVehicle)
}

func TestVehicle_Age(t *testing.T) {
	assert.Equal(t, 8, Vehicle{Year: 2018}.Age(2026))
}
