// Package combat resolves single combat actions into rolls, damage and
// narrative-ready effect tags. The resolver is a pure function of the
// supplied character snapshots plus the shared dice roller's seed state; it
// never mutates a character. Applying damage, deducting madra and expiring
// effect tags is the caller's job.
package combat

import (
	"fmt"
	"sort"

	"github.com/RyseLabs/perpetu.ai/internal/dice"
	"github.com/RyseLabs/perpetu.ai/internal/tier"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

const (
	proficiencyBonus = 2
	weaponDie        = 8
	techniqueDie     = 10
	defendACBonus    = 2
)

// Resolver resolves combat actions against a dice roller.
type Resolver struct {
	roller *dice.Roller
}

// NewResolver returns a resolver drawing from the given roller.
func NewResolver(roller *dice.Roller) *Resolver {
	return &Resolver{roller: roller}
}

// Resolve turns one combat action into exactly one result.
func (r *Resolver) Resolve(action types.CombatAction, actor, target *types.Character) types.CombatResult {
	switch action.Kind {
	case types.CombatAttack:
		return r.resolveAttack(actor, target)
	case types.CombatTechnique:
		return r.resolveTechnique(action, actor, target)
	case types.CombatDefend:
		return types.CombatResult{
			Success:     true,
			Effects:     []string{types.EffectACBonus},
			Description: fmt.Sprintf("%s takes a defensive stance (+%d AC for one turn)", actor.Name, defendACBonus),
		}
	case types.CombatDodge:
		return types.CombatResult{
			Success:     true,
			Effects:     []string{types.EffectDisadvantage},
			Description: fmt.Sprintf("%s weaves evasively (attacks against them have disadvantage for one turn)", actor.Name),
		}
	default:
		return types.CombatResult{
			Success:     false,
			Description: fmt.Sprintf("unknown combat action %q", action.Kind),
		}
	}
}

func (r *Resolver) resolveAttack(actor, target *types.Character) types.CombatResult {
	strMod := dice.AbilityModifier(actor.Stats.Strength)
	modifier := strMod + proficiencyBonus + tier.Bonus(actor.Tier, target.Tier)

	roll := r.attackRoll(modifier, target)
	ac := effectiveArmorClass(target)
	if roll.Total < ac && !roll.CriticalHit {
		return types.CombatResult{
			Success:     false,
			Roll:        &roll,
			Effects:     []string{"miss"},
			Description: fmt.Sprintf("%s misses %s (rolled %d vs AC %d)", actor.Name, target.Name, roll.Total, ac),
		}
	}

	damageRoll := r.roller.Roll(weaponDie, 1, strMod)
	damage := damageRoll.Total
	effects := []string{"hit"}
	if roll.CriticalHit {
		// Double damage dice: one extra unmodified weapon die.
		extra := r.roller.Roll(weaponDie, 1, 0)
		damage += extra.Total
		effects = append(effects, "critical")
	}
	if damage < 1 {
		damage = 1
	}

	return types.CombatResult{
		Success:     true,
		Roll:        &roll,
		Damage:      damage,
		Effects:     effects,
		Description: fmt.Sprintf("%s hits %s for %d damage (rolled %d vs AC %d)", actor.Name, target.Name, damage, roll.Total, ac),
	}
}

func (r *Resolver) resolveTechnique(action types.CombatAction, actor, target *types.Character) types.CombatResult {
	tech := actor.Technique(action.TechniqueID)
	if tech == nil {
		return types.CombatResult{
			Success:     false,
			Description: fmt.Sprintf("%s does not know technique %q", actor.Name, action.TechniqueID),
		}
	}
	if actor.Core.CurrentMadra < tech.Cost {
		return types.CombatResult{
			Success:     false,
			MadraCost:   tech.Cost,
			Description: fmt.Sprintf("%s lacks the madra to use %s (%.1f needed, %.1f available)", actor.Name, tech.Name, tech.Cost, actor.Core.CurrentMadra),
		}
	}

	intMod := dice.AbilityModifier(actor.Stats.Intelligence)
	modifier := intMod + proficiencyBonus + tier.Bonus(actor.Tier, target.Tier)

	roll := r.attackRoll(modifier, target)
	ac := effectiveArmorClass(target)
	if roll.Total < ac && !roll.CriticalHit {
		return types.CombatResult{
			Success:     false,
			Roll:        &roll,
			MadraCost:   tech.Cost,
			Effects:     []string{"miss"},
			Description: fmt.Sprintf("%s's %s misses %s (rolled %d vs AC %d)", actor.Name, tech.Name, target.Name, roll.Total, ac),
		}
	}

	// Proficiency scales the payoff: every 10 points is +1 damage.
	damageRoll := r.roller.Roll(techniqueDie, 2, tech.Proficiency/10)
	damage := damageRoll.Total
	if damage < 1 {
		damage = 1
	}

	return types.CombatResult{
		Success:     true,
		Roll:        &roll,
		Damage:      damage,
		MadraCost:   tech.Cost,
		Effects:     []string{"hit", "technique:" + tech.Nature},
		Description: fmt.Sprintf("%s strikes %s with %s for %d damage (rolled %d vs AC %d)", actor.Name, target.Name, tech.Name, damage, roll.Total, ac),
	}
}

// attackRoll honors a dodge tag present on the target snapshot; the caller
// owns putting the tag there and taking it off again.
func (r *Resolver) attackRoll(modifier int, target *types.Character) types.DiceRoll {
	if target.HasEffect(types.EffectDisadvantage) {
		return r.roller.RollWithDisadvantage(20, modifier)
	}
	return r.roller.Roll(20, 1, modifier)
}

func effectiveArmorClass(target *types.Character) int {
	ac := target.Combat.ArmorClass
	if target.HasEffect(types.EffectACBonus) {
		ac += defendACBonus
	}
	return ac
}

// Initiative rolls 1d20 + dexterity modifier per character and returns the
// IDs ordered descending. Ties keep the caller's input order.
func (r *Resolver) Initiative(actors []*types.Character) []string {
	type entry struct {
		id    string
		total int
	}

	entries := make([]entry, 0, len(actors))
	for _, actor := range actors {
		roll := r.roller.Roll(20, 1, dice.AbilityModifier(actor.Stats.Dexterity))
		entries = append(entries, entry{id: actor.ID, total: roll.Total})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].total > entries[j].total
	})

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids
}
