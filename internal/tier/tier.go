// Package tier maps advancement ranks to combat, perception and travel
// scaling. All functions are pure lookups over a single level table so that
// perception and travel halve on matching schedules.
package tier

import (
	"math"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// levels is the one source of truth for rank ordering. Herald and Sage
// deliberately share level 9: parallel-but-equal paths.
var levels = map[types.Tier]int{
	types.TierFoundation: 0,
	types.TierIron:       1,
	types.TierJade:       2,
	types.TierLowgold:    3,
	types.TierHighgold:   4,
	types.TierTruegold:   5,
	types.TierUnderlord:  6,
	types.TierOverlord:   7,
	types.TierArchlord:   8,
	types.TierHerald:     9,
	types.TierSage:       9,
	types.TierMonarch:    10,
}

const (
	// topLevel is the terminal rank; perception and travel become unbounded.
	topLevel = 10
	// ceilingLevel is where the halving schedules bottom out.
	ceilingLevel = 9

	// A Herald or Sage perceives the whole map and crosses half of it per
	// turn; each level below halves both.
	perceptionCeiling = 1.0
	travelCeiling     = 0.5

	bonusPerLevel = 3
)

// ordered lists every tier from weakest to strongest, Herald before Sage.
var ordered = []types.Tier{
	types.TierFoundation, types.TierIron, types.TierJade,
	types.TierLowgold, types.TierHighgold, types.TierTruegold,
	types.TierUnderlord, types.TierOverlord, types.TierArchlord,
	types.TierHerald, types.TierSage, types.TierMonarch,
}

// All returns every tier in ascending order.
func All() []types.Tier {
	out := make([]types.Tier, len(ordered))
	copy(out, ordered)
	return out
}

// Valid reports whether t is a known tier. Callers are expected to validate
// input at their boundary; the scaling functions assume valid tiers.
func Valid(t types.Tier) bool {
	_, ok := levels[t]
	return ok
}

// Level returns the numeric level (0-10) for a tier.
func Level(t types.Tier) int {
	return levels[t]
}

// Bonus is the signed combat adjustment for a relative to b: three points
// per level of separation.
func Bonus(a, b types.Tier) int {
	return (Level(a) - Level(b)) * bonusPerLevel
}

// PerceptionRange returns the fraction of the world diagonal within which
// the tier can perceive, or +Inf for the terminal tier.
func PerceptionRange(t types.Tier) float64 {
	return scaled(t, perceptionCeiling)
}

// TravelSpeed returns the fraction of the world diagonal the tier covers
// per turn, or +Inf for the terminal tier.
func TravelSpeed(t types.Tier) float64 {
	return scaled(t, travelCeiling)
}

func scaled(t types.Tier, ceiling float64) float64 {
	l := Level(t)
	if l >= topLevel {
		return math.Inf(1)
	}
	return ceiling / float64(int64(1)<<uint(ceilingLevel-l))
}
