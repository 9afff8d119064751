// Package sim advances the world one discrete turn at a time and runs the
// madra progression economy. It composes the travel and dice engines; every
// ProcessTurn call is a pure transform of the supplied world and character
// snapshots plus the turn-counter increment.
package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RyseLabs/perpetu.ai/internal/dice"
	"github.com/RyseLabs/perpetu.ai/internal/travel"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

const (
	restingRegenRate    = 0.05  // fraction of max madra per resting turn
	trainingMadraGrowth = 0.001 // max madra growth per train event
	maxProficiency      = 100
)

// Engine is the turn engine. It holds no world state between calls; the
// caller re-supplies world and characters every turn.
type Engine struct {
	roller   *dice.Roller
	advancer TierAdvancer
	logger   *zap.Logger
}

// NewEngine returns a turn engine drawing randomness from the given roller.
func NewEngine(roller *dice.Roller) *Engine {
	return &Engine{
		roller:   roller,
		advancer: noAdvancement{},
		logger:   zap.NewNop(),
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(logger *zap.Logger) {
	e.logger = logger
}

// SetTierAdvancer replaces the tier-advancement strategy consulted by
// CycleScale.
func (e *Engine) SetTierAdvancer(advancer TierAdvancer) {
	e.advancer = advancer
}

// TurnResult is the output of one turn: every character snapshot after the
// turn, the timeline events that fired, and the world events generated.
type TurnResult struct {
	UpdatedActors   []*types.Character    `json:"updated_actors"`
	TriggeredEvents []types.TimelineEvent `json:"triggered_events"`
	WorldEvents     []types.WorldEvent    `json:"world_events"`
}

// ProcessTurn advances the world by exactly one turn: it increments the turn
// counter, fires due timeline events per character, regenerates resting
// characters, and detects proximity encounters. Characters are mutated in
// place and returned in the result.
//
// Encounter detection reads the turn's starting positions, so the result is
// independent of the order characters are supplied in (only the sequence of
// dice draws depends on ordering). A mutual encounter between two characters
// is reported once from each side; deduplication is the narrator's call.
func (e *Engine) ProcessTurn(world *types.World, actors []*types.Character) TurnResult {
	now := time.Now()
	world.Turn++
	world.UpdatedAt = now
	diagonal := world.Diagonal()

	startPositions := make(map[string]types.Position, len(actors))
	for _, actor := range actors {
		startPositions[actor.ID] = actor.Position
	}

	result := TurnResult{
		UpdatedActors:   make([]*types.Character, 0, len(actors)),
		TriggeredEvents: make([]types.TimelineEvent, 0),
		WorldEvents:     make([]types.WorldEvent, 0),
	}

	for _, actor := range actors {
		for i := range actor.Timeline {
			ev := &actor.Timeline[i]
			if ev.Completed || ev.TriggerTurn != world.Turn {
				continue
			}

			e.dispatch(actor, ev, diagonal)
			ev.Completed = true
			result.TriggeredEvents = append(result.TriggeredEvents, *ev)

			kind := types.WorldEventCustom
			if ev.Action == types.ActionCombat {
				kind = types.WorldEventCombat
			}
			result.WorldEvents = append(result.WorldEvents, types.WorldEvent{
				ID:          uuid.New().String(),
				Turn:        world.Turn,
				Kind:        kind,
				Description: fmt.Sprintf("%s: %s event fired", actor.Name, ev.Action),
				ActorIDs:    []string{actor.ID},
				Location:    actor.Position,
				CreatedAt:   now,
			})

			e.logger.Debug("timeline event fired",
				zap.String("actor_id", actor.ID),
				zap.String("action", string(ev.Action)),
				zap.Int("turn", world.Turn))
		}

		if actor.Activity == types.ActivityResting {
			actor.Core.CurrentMadra += actor.Core.MaxMadra * restingRegenRate
			if actor.Core.CurrentMadra > actor.Core.MaxMadra {
				actor.Core.CurrentMadra = actor.Core.MaxMadra
			}
		}

		nearbyIDs := make([]string, 0)
		for _, other := range actors {
			if other.ID == actor.ID {
				continue
			}
			if travel.WithinInteractionRange(startPositions[actor.ID], startPositions[other.ID], diagonal) {
				nearbyIDs = append(nearbyIDs, other.ID)
			}
		}
		if len(nearbyIDs) > 0 && actor.Activity != types.ActivityFighting {
			result.WorldEvents = append(result.WorldEvents, types.WorldEvent{
				ID:          uuid.New().String(),
				Turn:        world.Turn,
				Kind:        types.WorldEventInteraction,
				Description: fmt.Sprintf("%s crosses paths with %d other(s)", actor.Name, len(nearbyIDs)),
				ActorIDs:    append([]string{actor.ID}, nearbyIDs...),
				Location:    startPositions[actor.ID],
				CreatedAt:   now,
			})
		}

		actor.UpdatedAt = now
		result.UpdatedActors = append(result.UpdatedActors, actor)
	}

	return result
}

// dispatch applies a due timeline event to its character. Combat, interact
// and custom kinds are recorded but resolved by the caller.
func (e *Engine) dispatch(actor *types.Character, ev *types.TimelineEvent, diagonal float64) {
	switch ev.Action {
	case types.ActionMove:
		if ev.TargetPosition == nil {
			return
		}
		actor.Position = travel.MoveToward(actor, *ev.TargetPosition, diagonal)
		actor.Activity = types.ActivityTraveling
	case types.ActionTrain:
		for i := range actor.Techniques {
			if actor.Techniques[i].Proficiency < maxProficiency {
				actor.Techniques[i].Proficiency++
			}
		}
		actor.Core.MaxMadra *= 1 + trainingMadraGrowth
		actor.Activity = types.ActivityTraining
	}
}
