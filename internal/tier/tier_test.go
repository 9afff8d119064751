package tier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

func TestLevels(t *testing.T) {
	// Test case 1: Twelve tiers, ascending levels
	all := All()
	assert.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, Level(all[i]), Level(all[i-1]))
	}

	// Test case 2: Herald and Sage share a level
	assert.Equal(t, Level(types.TierHerald), Level(types.TierSage))

	// Test case 3: Endpoints
	assert.Equal(t, 0, Level(types.TierFoundation))
	assert.Equal(t, 10, Level(types.TierMonarch))

	// Test case 4: Validity
	assert.True(t, Valid(types.TierJade))
	assert.False(t, Valid(types.Tier("copper")))
}

func TestBonus(t *testing.T) {
	// Test case 1: Three points per level of separation
	assert.Equal(t, 3, Bonus(types.TierIron, types.TierFoundation))
	assert.Equal(t, 9, Bonus(types.TierLowgold, types.TierFoundation))
	assert.Equal(t, 30, Bonus(types.TierMonarch, types.TierFoundation))

	// Test case 2: Antisymmetric over every pair
	for _, a := range All() {
		for _, b := range All() {
			assert.Equal(t, Bonus(a, b), -Bonus(b, a))
		}
	}

	// Test case 3: Zero against self and against the shared level
	assert.Equal(t, 0, Bonus(types.TierJade, types.TierJade))
	assert.Equal(t, 0, Bonus(types.TierHerald, types.TierSage))
}

func TestPerceptionRange(t *testing.T) {
	// Test case 1: Ceiling at Herald and Sage, halving below
	assert.Equal(t, 1.0, PerceptionRange(types.TierHerald))
	assert.Equal(t, 1.0, PerceptionRange(types.TierSage))
	assert.Equal(t, 0.5, PerceptionRange(types.TierArchlord))
	assert.InDelta(t, 1.0/512.0, PerceptionRange(types.TierFoundation), 1e-12)

	// Test case 2: Each level doubles the range
	all := []types.Tier{
		types.TierFoundation, types.TierIron, types.TierJade,
		types.TierLowgold, types.TierHighgold, types.TierTruegold,
		types.TierUnderlord, types.TierOverlord, types.TierArchlord,
	}
	for i := 1; i < len(all); i++ {
		assert.InDelta(t, 2.0, PerceptionRange(all[i])/PerceptionRange(all[i-1]), 1e-12)
	}

	// Test case 3: Monarch is unbounded
	assert.True(t, math.IsInf(PerceptionRange(types.TierMonarch), 1))
}

func TestTravelSpeed(t *testing.T) {
	// Test case 1: Half the perception ceiling, same halving schedule
	assert.Equal(t, 0.5, TravelSpeed(types.TierHerald))
	assert.Equal(t, 0.25, TravelSpeed(types.TierArchlord))
	assert.InDelta(t, 0.5/512.0, TravelSpeed(types.TierFoundation), 1e-12)

	// Test case 2: Travel is always half of perception below Monarch
	for _, tr := range All() {
		if tr == types.TierMonarch {
			continue
		}
		assert.InDelta(t, 0.5, TravelSpeed(tr)/PerceptionRange(tr), 1e-12)
	}

	// Test case 3: Monarch is unbounded
	assert.True(t, math.IsInf(TravelSpeed(types.TierMonarch), 1))
}
