package types

import (
	"math"
	"time"
)

// Tier is one of the twelve ordered advancement ranks a character can hold.
// Herald and Sage are parallel-but-equal paths sharing the same numeric level.
type Tier string

const (
	TierFoundation Tier = "foundation"
	TierIron       Tier = "iron"
	TierJade       Tier = "jade"
	TierLowgold    Tier = "lowgold"
	TierHighgold   Tier = "highgold"
	TierTruegold   Tier = "truegold"
	TierUnderlord  Tier = "underlord"
	TierOverlord   Tier = "overlord"
	TierArchlord   Tier = "archlord"
	TierHerald     Tier = "herald"
	TierSage       Tier = "sage"
	TierMonarch    Tier = "monarch"
)

// Activity is what a character is currently doing between turns.
type Activity string

const (
	ActivityIdle      Activity = "idle"
	ActivityTraveling Activity = "traveling"
	ActivityTraining  Activity = "training"
	ActivityResting   Activity = "resting"
	ActivityFighting  Activity = "fighting"
)

// ActionKind classifies a scheduled timeline event.
type ActionKind string

const (
	ActionMove     ActionKind = "move"
	ActionTrain    ActionKind = "train"
	ActionCombat   ActionKind = "combat"
	ActionInteract ActionKind = "interact"
	ActionCustom   ActionKind = "custom"
)

// ItemType classifies an inventory entry.
type ItemType string

const (
	ItemTypeGeneric ItemType = "generic"
	ItemTypeScale   ItemType = "scale"
)

// WorldEventKind classifies an entry in the world's append-only event log.
type WorldEventKind string

const (
	WorldEventCombat      WorldEventKind = "combat"
	WorldEventInteraction WorldEventKind = "interaction"
	WorldEventCustom      WorldEventKind = "custom"
)

// CombatActionKind is the intent of a single combat action.
type CombatActionKind string

const (
	CombatAttack    CombatActionKind = "attack"
	CombatTechnique CombatActionKind = "technique"
	CombatDefend    CombatActionKind = "defend"
	CombatDodge     CombatActionKind = "dodge"
)

// Effect tags emitted by defend/dodge resolutions and honored for exactly
// one subsequent turn.
const (
	EffectACBonus      = "ac_bonus"
	EffectDisadvantage = "attack_disadvantage"
)

// Position is a 2-D point on the world map.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Core is a character's madra pool, typed by a nature and bounded by
// current/maximum charge.
type Core struct {
	Nature       string  `json:"nature"`
	CurrentMadra float64 `json:"current_madra"`
	MaxMadra     float64 `json:"max_madra"`
}

// Technique is a learned ability with a nature, madra cost and a proficiency
// that improves with use.
type Technique struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Nature       string  `json:"nature"`
	Cost         float64 `json:"cost"`
	Proficiency  int     `json:"proficiency"` // 0-100
	RequiredTier Tier    `json:"required_tier"`
}

// AbilityScores are the six D&D-style ability scores.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// CombatStats are the derived combat numbers.
type CombatStats struct {
	MaxHP      int `json:"max_hp"`
	CurrentHP  int `json:"current_hp"`
	ArmorClass int `json:"armor_class"`
	Initiative int `json:"initiative"`
}

// Item is an inventory entry. A scale carries a madra charge and the source
// nature of the character it dropped from.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Description string   `json:"description,omitempty"`
	Nature      string   `json:"nature,omitempty"`
	Charge      float64  `json:"charge,omitempty"`
}

// TimelineEvent is a one-shot action bound to a specific future turn.
// The trigger turn is fixed at creation; only the completion flag mutates.
type TimelineEvent struct {
	ID             string     `json:"id"`
	TriggerTurn    int        `json:"trigger_turn"`
	Completed      bool       `json:"completed"`
	Action         ActionKind `json:"action"`
	TargetPosition *Position  `json:"target_position,omitempty"`
	TargetID       string     `json:"target_id,omitempty"`
}

// ActiveEffect is a combat effect tag applied to a character until the world
// advances past its expiry turn.
type ActiveEffect struct {
	Tag         string `json:"tag"`
	ExpiresTurn int    `json:"expires_turn"`
}

// Character is the mutable simulation entity. The engine never retains a
// copy; every operation takes the caller's snapshot and mutates only the
// fields documented per operation.
type Character struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Tier       Tier            `json:"tier"`
	Core       Core            `json:"core"`
	Techniques []Technique     `json:"techniques"`
	Stats      AbilityScores   `json:"stats"`
	Combat     CombatStats     `json:"combat"`
	Inventory  []Item          `json:"inventory"`
	Position   Position        `json:"position"`
	Activity   Activity        `json:"activity"`
	Goal       string          `json:"goal,omitempty"`
	Timeline   []TimelineEvent `json:"timeline"`
	Effects    []ActiveEffect  `json:"effects,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// HasEffect reports whether an effect with the given tag is present on the
// character. Expiry is the state owner's job, not the reader's.
func (c *Character) HasEffect(tag string) bool {
	for _, e := range c.Effects {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

// Technique returns the owned technique with the given ID, or nil.
func (c *Character) Technique(id string) *Technique {
	for i := range c.Techniques {
		if c.Techniques[i].ID == id {
			return &c.Techniques[i]
		}
	}
	return nil
}

// DiceRoll is an immutable record of one dice resolution. The critical flags
// are meaningful only for single d20 rolls.
type DiceRoll struct {
	DieType      int   `json:"die_type"`
	DiceCount    int   `json:"dice_count"`
	Results      []int `json:"results"`
	Modifier     int   `json:"modifier"`
	Total        int   `json:"total"`
	CriticalHit  bool  `json:"critical_hit"`
	CriticalFail bool  `json:"critical_fail"`
}

// CombatAction is the intent for a single combat resolution.
type CombatAction struct {
	ActorID     string           `json:"actor_id"`
	Kind        CombatActionKind `json:"kind"`
	TargetID    string           `json:"target_id,omitempty"`
	TechniqueID string           `json:"technique_id,omitempty"`
	ItemID      string           `json:"item_id,omitempty"`
}

// CombatResult is the engine's verdict on one action. Precondition failures
// (missing technique, insufficient madra) surface here with Success=false
// rather than as errors, so the narrator can always render something.
type CombatResult struct {
	Success     bool      `json:"success"`
	Roll        *DiceRoll `json:"roll,omitempty"`
	Damage      int       `json:"damage"`
	MadraCost   float64   `json:"madra_cost"`
	Effects     []string  `json:"effects,omitempty"`
	Description string    `json:"description"`
}

// WorldEvent is an immutable log record of something that happened on a turn.
type WorldEvent struct {
	ID          string         `json:"id"`
	Turn        int            `json:"turn"`
	Kind        WorldEventKind `json:"kind"`
	Description string         `json:"description"`
	ActorIDs    []string       `json:"actor_ids"`
	Location    Position       `json:"location"`
	CreatedAt   time.Time      `json:"created_at"`
}

// World is the map and turn counter the simulation advances over.
type World struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Turn      int       `json:"turn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Diagonal returns the Euclidean span of the map, used to normalize
// tier-based perception and travel fractions into absolute distances.
func (w *World) Diagonal() float64 {
	return math.Sqrt(w.Width*w.Width + w.Height*w.Height)
}
