package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RyseLabs/perpetu.ai/config"
	"github.com/RyseLabs/perpetu.ai/internal/combat"
	"github.com/RyseLabs/perpetu.ai/internal/dice"
	"github.com/RyseLabs/perpetu.ai/internal/interfaces"
	"github.com/RyseLabs/perpetu.ai/internal/sim"
	"github.com/RyseLabs/perpetu.ai/internal/storage"
	"github.com/RyseLabs/perpetu.ai/internal/tier"
	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// Manager owns the world and character state and drives the simulation
// engine against it. The engine packages stay side-effect-free; the manager
// is where combat results get applied, madra gets deducted, defeats drop
// scales and everything is persisted.
type Manager struct {
	stateLock  sync.RWMutex
	cfg        config.Config
	Logger     *zap.Logger
	world      *types.World
	characters map[string]*types.Character
	events     []types.WorldEvent
	roller     *dice.Roller
	resolver   *combat.Resolver
	engine     *sim.Engine
	store      *storage.Store
	ticker     *sim.Ticker
}

// Ensure Manager satisfies the interfaces.Simulation interface
var _ interfaces.Simulation = (*Manager)(nil)

// NewManager creates a new manager with a fresh world sized from config.
// A zero seed draws the dice seed from the current time.
func NewManager(cfg config.Config) *Manager {
	var roller *dice.Roller
	if cfg.Game.Seed != 0 {
		roller = dice.New(cfg.Game.Seed)
	} else {
		roller = dice.NewFromTime()
	}

	now := time.Now()
	m := &Manager{
		cfg:    cfg,
		Logger: zap.NewNop(), // Will be set by the server
		world: &types.World{
			ID:        uuid.New().String(),
			Name:      cfg.Game.WorldName,
			Width:     cfg.Game.WorldWidth,
			Height:    cfg.Game.WorldHeight,
			Turn:      0,
			CreatedAt: now,
			UpdatedAt: now,
		},
		characters: make(map[string]*types.Character),
		events:     make([]types.WorldEvent, 0),
		roller:     roller,
	}
	m.resolver = combat.NewResolver(roller)
	m.engine = sim.NewEngine(roller)
	return m
}

// SetLogger replaces the manager's logger and propagates it to the engine.
func (m *Manager) SetLogger(logger *zap.Logger) {
	m.Logger = logger
	m.engine.SetLogger(logger)
}

// SetStore attaches a persistence store. Without one the manager runs
// purely in memory.
func (m *Manager) SetStore(store *storage.Store) {
	m.store = store
}

// RestoreState reloads the world and characters from the attached store.
func (m *Manager) RestoreState() error {
	if m.store == nil {
		return errors.New("no store attached")
	}

	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	// The in-memory world gets a fresh ID every boot; restore from whatever
	// world the previous run persisted last.
	world, err := m.store.LoadLatestWorld()
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	if world != nil {
		m.world = world
	}

	characters, err := m.store.LoadCharacters()
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	for _, c := range characters {
		m.characters[c.ID] = c
	}
	return nil
}

// World returns a copy of the current world.
func (m *Manager) World() types.World {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()
	return *m.world
}

// LoadWorld replaces the current world with one loaded from data files.
func (m *Manager) LoadWorld(world *types.World) {
	if world == nil {
		return
	}
	m.stateLock.Lock()
	defer m.stateLock.Unlock()
	if world.ID == "" {
		world.ID = uuid.New().String()
	}
	m.world = world
}

// LoadCharacters bulk-loads characters from data files. Characters whose ID
// is already registered are skipped.
func (m *Manager) LoadCharacters(characters []*types.Character) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()
	for _, character := range characters {
		if character.ID == "" {
			character.ID = uuid.New().String()
		}
		if _, exists := m.characters[character.ID]; exists {
			continue
		}
		clampResources(character)
		if character.Activity == "" {
			character.Activity = types.ActivityIdle
		}
		m.characters[character.ID] = character
	}
}

// RegisterCharacter adds a new character to the simulation. Missing IDs are
// assigned; resource values are clamped into their legal ranges.
func (m *Manager) RegisterCharacter(character *types.Character) (*types.Character, error) {
	if character == nil {
		return nil, errors.New("character is nil")
	}
	if !tier.Valid(character.Tier) {
		return nil, fmt.Errorf("unknown tier %q", character.Tier)
	}

	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	if _, exists := m.characters[character.ID]; exists {
		return nil, errors.New("character already registered")
	}

	clampResources(character)
	if character.Activity == "" {
		character.Activity = types.ActivityIdle
	}
	now := time.Now()
	character.CreatedAt = now
	character.UpdatedAt = now

	m.characters[character.ID] = character
	if err := m.persistCharacter(character); err != nil {
		return nil, err
	}

	m.Logger.Info("Registered character",
		zap.String("character_id", character.ID),
		zap.String("name", character.Name),
		zap.String("tier", string(character.Tier)))

	return character, nil
}

// GetCharacter retrieves a character by ID
func (m *Manager) GetCharacter(id string) (*types.Character, error) {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	character, exists := m.characters[id]
	if !exists {
		return nil, errors.New("character not found")
	}
	return character, nil
}

// ListCharacters returns all characters sorted by ID for consistent order.
func (m *Manager) ListCharacters() []*types.Character {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	ids := make([]string, 0, len(m.characters))
	for id := range m.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	characters := make([]*types.Character, 0, len(ids))
	for _, id := range ids {
		characters = append(characters, m.characters[id])
	}
	return characters
}

// ScheduleEvent appends a one-shot timeline event to a character. The
// trigger turn must still be in the future.
func (m *Manager) ScheduleEvent(characterID string, event types.TimelineEvent) (*types.TimelineEvent, error) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	character, exists := m.characters[characterID]
	if !exists {
		return nil, errors.New("character not found")
	}
	if event.TriggerTurn <= m.world.Turn {
		return nil, fmt.Errorf("trigger turn %d has already passed (current turn %d)", event.TriggerTurn, m.world.Turn)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.Completed = false
	character.Timeline = append(character.Timeline, event)

	if err := m.persistCharacter(character); err != nil {
		return nil, err
	}
	return &character.Timeline[len(character.Timeline)-1], nil
}

// ResolveCombatAction resolves one combat action and applies its outcome:
// madra cost is deducted on successful technique use, damage is applied to
// the target, a defeat drops a scale into the attacker's inventory, and
// defend/dodge tags go live for exactly one subsequent turn.
func (m *Manager) ResolveCombatAction(action types.CombatAction) (*types.CombatResult, error) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	actor, exists := m.characters[action.ActorID]
	if !exists {
		return nil, errors.New("character not found")
	}

	var target *types.Character
	switch action.Kind {
	case types.CombatAttack, types.CombatTechnique:
		target, exists = m.characters[action.TargetID]
		if !exists {
			return nil, errors.New("target not found")
		}
	}

	result := m.resolver.Resolve(action, actor, target)

	if action.Kind == types.CombatTechnique && result.Success {
		actor.Core.CurrentMadra -= result.MadraCost
		if actor.Core.CurrentMadra < 0 {
			actor.Core.CurrentMadra = 0
		}
	}

	switch action.Kind {
	case types.CombatDefend, types.CombatDodge:
		for _, tag := range result.Effects {
			actor.Effects = append(actor.Effects, types.ActiveEffect{
				Tag:         tag,
				ExpiresTurn: m.world.Turn + 1,
			})
		}
	case types.CombatAttack, types.CombatTechnique:
		actor.Activity = types.ActivityFighting
		target.Activity = types.ActivityFighting
		if result.Damage > 0 {
			target.Combat.CurrentHP -= result.Damage
			if target.Combat.CurrentHP < 0 {
				target.Combat.CurrentHP = 0
			}
			if target.Combat.CurrentHP == 0 {
				m.handleDefeat(actor, target)
			}
		}
	}

	now := time.Now()
	actor.UpdatedAt = now
	if err := m.persistCharacter(actor); err != nil {
		return nil, err
	}
	if target != nil {
		target.UpdatedAt = now
		if err := m.persistCharacter(target); err != nil {
			return nil, err
		}
	}

	m.Logger.Info("Combat action resolved",
		zap.String("actor_id", actor.ID),
		zap.String("kind", string(action.Kind)),
		zap.Bool("success", result.Success),
		zap.Int("damage", result.Damage))

	return &result, nil
}

// handleDefeat drops a scale from the defeated character into the victor's
// inventory and records the kill. Caller holds the state lock.
func (m *Manager) handleDefeat(victor, defeated *types.Character) {
	scale := m.engine.GenerateScaleDrop(defeated)
	victor.Inventory = append(victor.Inventory, scale)
	defeated.Activity = types.ActivityIdle

	m.appendWorldEvent(types.WorldEvent{
		ID:          uuid.New().String(),
		Turn:        m.world.Turn,
		Kind:        types.WorldEventCombat,
		Description: fmt.Sprintf("%s defeated %s", victor.Name, defeated.Name),
		ActorIDs:    []string{victor.ID, defeated.ID},
		Location:    defeated.Position,
		CreatedAt:   time.Now(),
	})

	m.Logger.Info("Character defeated",
		zap.String("victor_id", victor.ID),
		zap.String("defeated_id", defeated.ID),
		zap.Float64("scale_charge", scale.Charge))
}

// Initiative rolls initiative for the identified characters, preserving the
// supplied order for tie-breaking. Rolling mutates the shared dice seed, so
// this takes the write lock.
func (m *Manager) Initiative(characterIDs []string) ([]string, error) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	actors := make([]*types.Character, 0, len(characterIDs))
	for _, id := range characterIDs {
		character, exists := m.characters[id]
		if !exists {
			return nil, errors.New("character not found")
		}
		actors = append(actors, character)
	}
	return m.resolver.Initiative(actors), nil
}

// AdvanceTurn advances the world by one turn and persists the outcome.
// Effect tags from defend/dodge expire once the turn they covered is over.
func (m *Manager) AdvanceTurn() (*sim.TurnResult, error) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	actors := make([]*types.Character, 0, len(m.characters))
	ids := make([]string, 0, len(m.characters))
	for id := range m.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		actors = append(actors, m.characters[id])
	}

	result := m.engine.ProcessTurn(m.world, actors)

	for _, actor := range result.UpdatedActors {
		m.expireEffects(actor)
		if err := m.persistCharacter(actor); err != nil {
			return nil, err
		}
	}
	for _, event := range result.WorldEvents {
		m.appendWorldEvent(event)
	}
	if m.store != nil {
		if err := m.store.SaveWorld(m.world); err != nil {
			return nil, err
		}
	}

	m.Logger.Info("Turn advanced",
		zap.Int("turn", m.world.Turn),
		zap.Int("events_fired", len(result.TriggeredEvents)),
		zap.Int("world_events", len(result.WorldEvents)))

	return &result, nil
}

// CycleScale cycles an inventory scale into a character's core.
func (m *Manager) CycleScale(characterID, itemID string) (*sim.CycleResult, error) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	character, exists := m.characters[characterID]
	if !exists {
		return nil, errors.New("character not found")
	}

	result := m.engine.CycleScale(character, itemID)
	if result.Cycled {
		character.UpdatedAt = time.Now()
		if err := m.persistCharacter(character); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// WorldEvents returns logged world events from the given turn onward.
func (m *Manager) WorldEvents(sinceTurn int) []types.WorldEvent {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	events := make([]types.WorldEvent, 0)
	for _, event := range m.events {
		if event.Turn >= sinceTurn {
			events = append(events, event)
		}
	}
	return events
}

// StartTicker begins automatic turn advancement per the configured
// interval; it is a no-op when the interval is zero or a ticker is already
// running.
func (m *Manager) StartTicker() {
	if m.cfg.Game.TurnInterval <= 0 || m.ticker != nil {
		return
	}
	m.ticker = sim.NewTicker(m, time.Duration(m.cfg.Game.TurnInterval)*time.Second, m.Logger)
	m.ticker.Start()
}

// StopTicker halts automatic turn advancement. Safe to call more than once.
func (m *Manager) StopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Manager) expireEffects(actor *types.Character) {
	if len(actor.Effects) == 0 {
		return
	}
	kept := actor.Effects[:0]
	for _, effect := range actor.Effects {
		if effect.ExpiresTurn >= m.world.Turn {
			kept = append(kept, effect)
		}
	}
	actor.Effects = kept
}

func (m *Manager) appendWorldEvent(event types.WorldEvent) {
	m.events = append(m.events, event)
	if m.store != nil {
		if err := m.store.AppendWorldEvent(m.world.ID, event); err != nil {
			m.Logger.Error("Failed to persist world event", zap.Error(err))
		}
	}
}

func (m *Manager) persistCharacter(character *types.Character) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveCharacter(character); err != nil {
		return fmt.Errorf("failed to save character: %w", err)
	}
	return nil
}

func clampResources(character *types.Character) {
	if character.Core.CurrentMadra < 0 {
		character.Core.CurrentMadra = 0
	}
	if character.Core.CurrentMadra > character.Core.MaxMadra {
		character.Core.CurrentMadra = character.Core.MaxMadra
	}
	if character.Combat.CurrentHP < 0 {
		character.Combat.CurrentHP = 0
	}
	if character.Combat.CurrentHP > character.Combat.MaxHP {
		character.Combat.CurrentHP = character.Combat.MaxHP
	}
}
