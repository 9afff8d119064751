package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyseLabs/perpetu.ai/internal/dice"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

func TestGenerateScaleDrop(t *testing.T) {
	// Test case 1: Seed 42's first draw is 0.88588..., so a victim holding
	// 300 madra drops a scale charged at 14.4294...
	engine := NewEngine(dice.New(42))
	victim := newActor("victim", types.TierJade, 0, 0)
	victim.Core.Nature = "shadow"
	victim.Core.CurrentMadra = 300
	victim.Core.MaxMadra = 300

	scale := engine.GenerateScaleDrop(victim)
	assert.NotEmpty(t, scale.ID)
	assert.Equal(t, "shadow scale", scale.Name)
	assert.Equal(t, types.ItemTypeScale, scale.Type)
	assert.Equal(t, "shadow", scale.Nature)
	assert.InDelta(t, 14.429419581618657, scale.Charge, 1e-12)

	// Test case 2: The cut always stays inside [1/30, 1/20) of remaining madra
	for i := 0; i < 1000; i++ {
		drop := engine.GenerateScaleDrop(victim)
		assert.GreaterOrEqual(t, drop.Charge, 300.0/30.0)
		assert.Less(t, drop.Charge, 300.0/20.0)
	}

	// Test case 3: The drop scales with remaining madra, not maximum
	victim.Core.CurrentMadra = 0
	drop := engine.GenerateScaleDrop(victim)
	assert.Equal(t, 0.0, drop.Charge)
}

func TestCycleScale(t *testing.T) {
	engine := NewEngine(dice.New(1))
	actor := newActor("cycler", types.TierIron, 0, 0)
	actor.Core.CurrentMadra = 50
	actor.Core.MaxMadra = 100
	actor.Inventory = []types.Item{
		{ID: "scale-1", Name: "fire scale", Type: types.ItemTypeScale, Charge: 20},
		{ID: "rock-1", Name: "rock", Type: types.ItemTypeGeneric},
		{ID: "scale-2", Name: "spent scale", Type: types.ItemTypeScale, Charge: 0},
	}

	// Test case 1: Cycling adds the charge and consumes the scale
	result := engine.CycleScale(actor, "scale-1")
	assert.True(t, result.Cycled)
	assert.False(t, result.Advanced)
	assert.Equal(t, 0.0, result.Overflow)
	assert.Equal(t, 70.0, actor.Core.CurrentMadra)
	require.Len(t, actor.Inventory, 2)
	assert.Equal(t, "rock-1", actor.Inventory[0].ID)

	// Test case 2: Unknown item fails without mutation
	result = engine.CycleScale(actor, "scale-1")
	assert.False(t, result.Cycled)
	assert.Equal(t, "item not found in inventory", result.Reason)
	assert.Equal(t, 70.0, actor.Core.CurrentMadra)

	// Test case 3: Non-scale items cannot be cycled
	result = engine.CycleScale(actor, "rock-1")
	assert.False(t, result.Cycled)
	assert.Equal(t, "item is not a scale", result.Reason)
	assert.Len(t, actor.Inventory, 2)

	// Test case 4: Chargeless scales cannot be cycled
	result = engine.CycleScale(actor, "scale-2")
	assert.False(t, result.Cycled)
	assert.Equal(t, "scale carries no charge", result.Reason)
	assert.Len(t, actor.Inventory, 2)
}

func TestCycleScaleOverflow(t *testing.T) {
	engine := NewEngine(dice.New(1))
	actor := newActor("cycler", types.TierIron, 0, 0)
	actor.Core.CurrentMadra = 90
	actor.Core.MaxMadra = 100
	actor.Inventory = []types.Item{
		{ID: "scale-1", Name: "fire scale", Type: types.ItemTypeScale, Charge: 25},
	}

	// Overflow past the ceiling becomes a permanent maximum increase
	result := engine.CycleScale(actor, "scale-1")
	assert.True(t, result.Cycled)
	assert.Equal(t, 15.0, result.Overflow)
	assert.Equal(t, 115.0, actor.Core.MaxMadra)
	assert.Equal(t, actor.Core.MaxMadra, actor.Core.CurrentMadra)
	assert.Empty(t, actor.Inventory)
}

type fixedAdvancer struct {
	tier types.Tier
}

func (f fixedAdvancer) Advance(*types.Character) (types.Tier, bool) { return f.tier, true }

func TestTierAdvancement(t *testing.T) {
	// Test case 1: The default strategy never advances
	engine := NewEngine(dice.New(1))
	actor := newActor("cycler", types.TierIron, 0, 0)
	actor.Inventory = []types.Item{
		{ID: "scale-1", Type: types.ItemTypeScale, Charge: 10},
	}
	result := engine.CycleScale(actor, "scale-1")
	assert.True(t, result.Cycled)
	assert.False(t, result.Advanced)
	assert.Equal(t, types.TierIron, actor.Tier)

	// Test case 2: A custom advancer promotes on cycle
	engine.SetTierAdvancer(fixedAdvancer{tier: types.TierJade})
	actor.Inventory = []types.Item{
		{ID: "scale-2", Type: types.ItemTypeScale, Charge: 10},
	}
	result = engine.CycleScale(actor, "scale-2")
	assert.True(t, result.Cycled)
	assert.True(t, result.Advanced)
	assert.Equal(t, types.TierJade, result.NewTier)
	assert.Equal(t, types.TierJade, actor.Tier)
}
