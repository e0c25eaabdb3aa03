package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/carprice/core/model"
)

var trained = MustSchema(
	"Year", "Kilometer", "engine_cc", "max_power", "Fuel_Tank_Capacity",
	"Make_Maruti", "Make_BMW",
	"Model_Swift", "Model_X5",
	"Fuel Type_Petrol", "Fuel Type_Diesel",
	"Transmission_Manual", "Transmission_Automatic",
	"Owner_First Owner", "Owner_Second Owner",
	"Color_White", "Color_Black", "Color_Red",
)

func swift() model.Vehicle {
	return model.Vehicle{
		Brand: "Maruti", Model: "Swift", Year: 2018, OdometerKM: 50_000,
		EngineCC: 1200, MaxPowerBHP: 82, FuelTankLiters: 37,
		Transmission: model.TransmissionManual, FuelType: model.FuelPetrol,
		Owner: model.OwnerFirst, Color: model.ColorWhite,
	}
}

func indicators(v Vector, prefix string) map[string]float64 {
	out := map[string]float64{}
	for _, c := range v.Schema().Columns() {
		if strings.HasPrefix(c, prefix+"_") {
			x, _ := v.Get(c)
			out[c] = x
		}
	}
	return out
}

func TestBuild_Numeric(t *testing.T) {
	v, err := Build(swift(), trained)
	require.NoError(t, err)
	require.Equal(t, trained.Len(), v.Len())
	assert.Equal(t, []float64{2018, 50_000, 1200, 82, 37}, v.Values()[:5])
}

func TestBuild_OneHot(t *testing.T) {
	v, err := Build(swift(), trained)
	require.NoError(t, err)
	for _, prefix := range []string{PrefixMake, PrefixModel, PrefixFuelType, PrefixTransmission, PrefixOwner, PrefixColor} {
		sum := 0.0
		for _, x := range indicators(v, prefix) {
			sum += x
		}
		assert.Equal(t, 1.0, sum, prefix)
	}
	x, _ := v.Get("Owner_First Owner")
	assert.Equal(t, 1.0, x)
	x, _ = v.Get("Make_BMW")
	assert.Equal(t, 0.0, x)
}

func TestBuild_UnknownCategorySkipped(t *testing.T) {
	veh := swift()
	veh.Color = "Purple"
	veh.Owner = model.OwnerThird
	v, err := Build(veh, trained)
	require.NoError(t, err)
	for c, x := range indicators(v, PrefixColor) {
		assert.Zero(t, x, c)
	}
	for c, x := range indicators(v, PrefixOwner) {
		assert.Zero(t, x, c)
	}
}

func TestBuild_FollowsSchemaOrder(t *testing.T) {
	s := MustSchema("Color_White", "Year", "Make_Maruti", "unused")
	v, err := Build(swift(), s)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2018, 1, 0}, v.Values())
}

func TestBuild_InvalidSchema(t *testing.T) {
	_, err := Build(swift(), Schema{})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestNewSchema(t *testing.T) {
	_, err := NewSchema(nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = NewSchema([]string{"a", "a"})
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = NewSchema([]string{"a", " "})
	assert.ErrorIs(t, err, ErrInvalidSchema)

	cols := []string{"a", "b"}
	s, err := NewSchema(cols)
	require.NoError(t, err)
	cols[0] = "z"
	assert.Equal(t, []string{"a", "b"}, s.Columns())
}

func TestVector_Immutable(t *testing.T) {
	v, err := Build(swift(), trained)
	require.NoError(t, err)
	vals := v.Values()
	vals[0] = 0
	assert.Equal(t, 2018.0, v.At(0))
}

func TestFromValues(t *testing.T) {
	s := MustSchema("a", "b")
	_, err := FromValues(s, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidSchema)
	v, err := FromValues(s, []float64{1, 2})
	require.NoError(t, err)
	x, ok := v.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, x)
}
