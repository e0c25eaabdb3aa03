package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/model"
)

func TestCheckLuxuryEngine(t *testing.T) {
	cat := catalog.Default()
	err := CheckLuxuryEngine(model.Vehicle{Brand: "Ferrari", EngineCC: 900}, cat, 1000)
	assert.ErrorIs(t, err, ErrImplausibleEngine)
	assert.ErrorContains(t, err, "Ferrari")

	assert.NoError(t, CheckLuxuryEngine(model.Vehicle{Brand: "Ferrari", EngineCC: 1000}, cat, 1000))
	assert.NoError(t, CheckLuxuryEngine(model.Vehicle{Brand: "Maruti", EngineCC: 800}, cat, 1000))
}

func TestLowMileage(t *testing.T) {
	assert.True(t, LowMileage(10, 29_999, 3000))
	assert.False(t, LowMileage(10, 30_000, 3000))
	assert.False(t, LowMileage(0, 0, 3000))
}

func TestMessages(t *testing.T) {
	assert.Empty(t, Messages(model.PriceEstimate{}))
	assert.Equal(t, []string{LowMileageMessage}, Messages(model.PriceEstimate{LowMileageWarning: true}))
}
