// Package travel computes distance, visibility and movement over the world
// map. Everything is a pure function of the supplied snapshots; speeds and
// ranges are normalized to fractions of the map diagonal so the engine is
// map-size-independent.
package travel

import (
	"math"

	"github.com/RyseLabs/perpetu.ai/internal/tier"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// interactionRadius is the fixed fraction of the world diagonal within
// which two characters can interact, independent of tier.
const interactionRadius = 0.01

// Distance returns the Euclidean distance between two positions.
func Distance(a, b types.Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CanPerceive reports whether the observer's tier-scaled perception radius
// covers the target.
func CanPerceive(observer, target *types.Character, worldDiagonal float64) bool {
	return Distance(observer.Position, target.Position) <= worldDiagonal*tier.PerceptionRange(observer.Tier)
}

// MoveToward returns the actor's new position after one turn of movement
// toward the target. Unbounded speed snaps to the exact target; otherwise
// the actor advances at most one tier-scaled step and never overshoots.
func MoveToward(actor *types.Character, target types.Position, worldDiagonal float64) types.Position {
	speed := tier.TravelSpeed(actor.Tier)
	if math.IsInf(speed, 1) {
		return target
	}

	maxStep := worldDiagonal * speed
	dist := Distance(actor.Position, target)
	if dist <= maxStep {
		return target
	}

	return types.Position{
		X: actor.Position.X + (target.X-actor.Position.X)/dist*maxStep,
		Y: actor.Position.Y + (target.Y-actor.Position.Y)/dist*maxStep,
	}
}

// WithinInteractionRange reports whether two positions are inside the fixed
// interaction radius.
func WithinInteractionRange(a, b types.Position, worldDiagonal float64) bool {
	return Distance(a, b) <= worldDiagonal*interactionRadius
}

// CanInteract reports whether two characters are close enough to interact.
func CanInteract(a, b *types.Character, worldDiagonal float64) bool {
	return WithinInteractionRange(a.Position, b.Position, worldDiagonal)
}

// FindNearby returns every other character within interaction range of the
// actor, excluding the actor itself.
func FindNearby(actor *types.Character, all []*types.Character, worldDiagonal float64) []*types.Character {
	nearby := make([]*types.Character, 0)
	for _, other := range all {
		if other.ID == actor.ID {
			continue
		}
		if CanInteract(actor, other, worldDiagonal) {
			nearby = append(nearby, other)
		}
	}
	return nearby
}

// TravelTime returns the whole turns needed to move between two positions
// at the tier's speed; zero when the speed is unbounded.
func TravelTime(t types.Tier, from, to types.Position, worldDiagonal float64) int {
	speed := tier.TravelSpeed(t)
	if math.IsInf(speed, 1) {
		return 0
	}
	return int(math.Ceil(Distance(from, to) / (worldDiagonal * speed)))
}
