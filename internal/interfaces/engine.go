package interfaces

import (
	"github.com/RyseLabs/perpetu.ai/internal/sim"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// Simulation defines the interface for driving the game simulation
type Simulation interface {
	World() types.World
	RegisterCharacter(character *types.Character) (*types.Character, error)
	GetCharacter(id string) (*types.Character, error)
	ListCharacters() []*types.Character
	ScheduleEvent(characterID string, event types.TimelineEvent) (*types.TimelineEvent, error)
	ResolveCombatAction(action types.CombatAction) (*types.CombatResult, error)
	Initiative(characterIDs []string) ([]string, error)
	AdvanceTurn() (*sim.TurnResult, error)
	CycleScale(characterID, itemID string) (*sim.CycleResult, error)
	WorldEvents(sinceTurn int) []types.WorldEvent
}
