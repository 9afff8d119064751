package sim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// A defeated character drops a scale worth a randomized 1/30 to 1/20 cut of
// their remaining madra, so a drop is always strictly smaller than what the
// victim still held.
const (
	scaleCutMin = 1.0 / 30.0
	scaleCutMax = 1.0 / 20.0
)

// TierAdvancer decides whether cycling a scale pushed a character over an
// advancement threshold. The threshold formula is an open extension point;
// the default strategy never advances, so callers can detect the gap
// explicitly rather than getting a guessed rank.
type TierAdvancer interface {
	Advance(actor *types.Character) (types.Tier, bool)
}

type noAdvancement struct{}

func (noAdvancement) Advance(*types.Character) (types.Tier, bool) { return "", false }

// CycleResult reports the outcome of cycling a scale into a core.
type CycleResult struct {
	Cycled   bool       `json:"cycled"`
	Advanced bool       `json:"advanced"`
	NewTier  types.Tier `json:"new_tier,omitempty"`
	Overflow float64    `json:"overflow"`
	Reason   string     `json:"reason,omitempty"`
}

// GenerateScaleDrop produces the scale left behind by a defeated character.
// The cut is drawn from the engine's roller, so drops are seed-reproducible.
func (e *Engine) GenerateScaleDrop(defeated *types.Character) types.Item {
	cut := scaleCutMin + e.roller.Float64()*(scaleCutMax-scaleCutMin)
	return types.Item{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("%s scale", defeated.Core.Nature),
		Type:        types.ItemTypeScale,
		Description: fmt.Sprintf("A crystallized sliver of %s's madra", defeated.Name),
		Nature:      defeated.Core.Nature,
		Charge:      defeated.Core.CurrentMadra * cut,
	}
}

// CycleScale consumes the identified scale from the character's inventory
// and adds its charge to their core. Charge beyond the core's maximum
// becomes a permanent increase to the maximum rather than being discarded.
// A non-scale or chargeless item fails without mutating the character.
func (e *Engine) CycleScale(actor *types.Character, itemID string) CycleResult {
	idx := -1
	for i := range actor.Inventory {
		if actor.Inventory[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CycleResult{Reason: "item not found in inventory"}
	}

	item := actor.Inventory[idx]
	if item.Type != types.ItemTypeScale {
		return CycleResult{Reason: "item is not a scale"}
	}
	if item.Charge <= 0 {
		return CycleResult{Reason: "scale carries no charge"}
	}

	var overflow float64
	total := actor.Core.CurrentMadra + item.Charge
	if total > actor.Core.MaxMadra {
		overflow = total - actor.Core.MaxMadra
		actor.Core.MaxMadra += overflow
		actor.Core.CurrentMadra = actor.Core.MaxMadra
	} else {
		actor.Core.CurrentMadra = total
	}

	actor.Inventory = append(actor.Inventory[:idx], actor.Inventory[idx+1:]...)

	result := CycleResult{Cycled: true, Overflow: overflow}
	if newTier, ok := e.advancer.Advance(actor); ok {
		actor.Tier = newTier
		result.Advanced = true
		result.NewTier = newTier
	}
	return result
}
