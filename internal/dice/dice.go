// Package dice implements the deterministic roller behind every random
// draw in the simulation. For a given seed, two rollers produce identical
// sequences for the same call sequence.
package dice

import (
	"time"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// Linear-congruential parameters. The generator's entire state is one
// integer in [0, lcgModulus).
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Roller holds the single mutable seed. It is not safe for concurrent use;
// concurrent simulations must each own their own Roller.
type Roller struct {
	seed int64
}

// New returns a roller starting from the given seed.
func New(seed int64) *Roller {
	r := &Roller{}
	r.Reseed(seed)
	return r
}

// NewFromTime returns a roller seeded from the current time.
func NewFromTime() *Roller {
	return New(time.Now().UnixNano())
}

// Reseed replaces the seed, and with it all future draws.
func (r *Roller) Reseed(seed int64) {
	seed %= lcgModulus
	if seed < 0 {
		seed += lcgModulus
	}
	r.seed = seed
}

// Float64 advances the generator once and returns the normalized draw in
// [0, 1).
func (r *Roller) Float64() float64 {
	r.seed = (r.seed*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.seed) / float64(lcgModulus)
}

// draw returns a value uniformly in [1, sides]. Out-of-range die types are
// accepted literally: sides=1 always draws 1.
func (r *Roller) draw(sides int) int {
	return int(r.Float64()*float64(sides)) + 1
}

// Roll draws count independent dice of the given type, sums them and adds
// the modifier. The critical flags are set only for a single d20.
func (r *Roller) Roll(sides, count, modifier int) types.DiceRoll {
	results := make([]int, 0, count)
	total := modifier
	for i := 0; i < count; i++ {
		v := r.draw(sides)
		results = append(results, v)
		total += v
	}

	roll := types.DiceRoll{
		DieType:   sides,
		DiceCount: count,
		Results:   results,
		Modifier:  modifier,
		Total:     total,
	}
	if sides == 20 && count == 1 {
		roll.CriticalHit = results[0] == 20
		roll.CriticalFail = results[0] == 1
	}
	return roll
}

// RollWithAdvantage draws two single dice and keeps the higher raw result
// before applying the modifier.
func (r *Roller) RollWithAdvantage(sides, modifier int) types.DiceRoll {
	a, b := r.draw(sides), r.draw(sides)
	if b > a {
		a = b
	}
	return r.single(sides, a, modifier)
}

// RollWithDisadvantage draws two single dice and keeps the lower raw result
// before applying the modifier.
func (r *Roller) RollWithDisadvantage(sides, modifier int) types.DiceRoll {
	a, b := r.draw(sides), r.draw(sides)
	if b < a {
		a = b
	}
	return r.single(sides, a, modifier)
}

func (r *Roller) single(sides, raw, modifier int) types.DiceRoll {
	roll := types.DiceRoll{
		DieType:   sides,
		DiceCount: 1,
		Results:   []int{raw},
		Modifier:  modifier,
		Total:     raw + modifier,
	}
	if sides == 20 {
		roll.CriticalHit = raw == 20
		roll.CriticalFail = raw == 1
	}
	return roll
}

// AbilityModifier converts a D&D-style ability score to its modifier,
// floor((score-10)/2), correct for scores below 10.
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}
