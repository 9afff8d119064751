// Package storage persists character snapshots and the append-only world
// event log to SQLite. The engine itself never touches persistence; only
// the state-owning manager does, and snapshots are stored as opaque JSON so
// the schema survives engine data-model growth.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// Store provides SQLite-backed persistence for worlds, characters and
// world events.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at the given DSN and
// prepares the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New returns a Store bound to an existing database handle and prepares the
// schema.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("new store: db is nil")
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			id TEXT PRIMARY KEY,
			turn INTEGER NOT NULL,
			snapshot TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS characters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			snapshot TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS world_events (
			id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_world_events_world_turn
			ON world_events(world_id, turn);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveWorld upserts the world snapshot.
func (s *Store) SaveWorld(world *types.World) error {
	if world == nil {
		return fmt.Errorf("save world: world is nil")
	}
	snapshot, err := json.Marshal(world)
	if err != nil {
		return fmt.Errorf("save world: marshal: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(
		`INSERT INTO worlds(id, turn, snapshot, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET turn = excluded.turn, snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		world.ID, world.Turn, string(snapshot), now,
	)
	if err != nil {
		return fmt.Errorf("save world: upsert: %w", err)
	}
	return nil
}

// LoadWorld returns the stored world snapshot, or nil when none exists.
func (s *Store) LoadWorld(id string) (*types.World, error) {
	var snapshot string
	err := s.db.QueryRow(`SELECT snapshot FROM worlds WHERE id = ?`, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load world: query: %w", err)
	}
	var world types.World
	if err := json.Unmarshal([]byte(snapshot), &world); err != nil {
		return nil, fmt.Errorf("load world: unmarshal: %w", err)
	}
	return &world, nil
}

// LoadLatestWorld returns the most recently saved world snapshot, or nil
// when none exists. Restarted servers use this to pick up where the previous
// run left off without knowing the stored world's ID.
func (s *Store) LoadLatestWorld() (*types.World, error) {
	var snapshot string
	err := s.db.QueryRow(`SELECT snapshot FROM worlds ORDER BY updated_at DESC LIMIT 1`).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest world: query: %w", err)
	}
	var world types.World
	if err := json.Unmarshal([]byte(snapshot), &world); err != nil {
		return nil, fmt.Errorf("load latest world: unmarshal: %w", err)
	}
	return &world, nil
}

// SaveCharacter upserts a character snapshot.
func (s *Store) SaveCharacter(character *types.Character) error {
	if character == nil {
		return fmt.Errorf("save character: character is nil")
	}
	snapshot, err := json.Marshal(character)
	if err != nil {
		return fmt.Errorf("save character: marshal: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(
		`INSERT INTO characters(id, name, snapshot, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		character.ID, character.Name, string(snapshot), now,
	)
	if err != nil {
		return fmt.Errorf("save character: upsert: %w", err)
	}
	return nil
}

// LoadCharacters returns every stored character snapshot ordered by ID.
func (s *Store) LoadCharacters() ([]*types.Character, error) {
	rows, err := s.db.Query(`SELECT snapshot FROM characters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load characters: query: %w", err)
	}
	defer rows.Close()

	characters := make([]*types.Character, 0)
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("load characters: scan: %w", err)
		}
		var character types.Character
		if err := json.Unmarshal([]byte(snapshot), &character); err != nil {
			return nil, fmt.Errorf("load characters: unmarshal: %w", err)
		}
		characters = append(characters, &character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load characters: rows: %w", err)
	}
	return characters, nil
}

// DeleteCharacter removes a character snapshot.
func (s *Store) DeleteCharacter(id string) error {
	result, err := s.db.Exec(`DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete character: not found (id=%s)", id)
	}
	return nil
}

// AppendWorldEvent appends one immutable world event row.
func (s *Store) AppendWorldEvent(worldID string, event types.WorldEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("append world event: marshal: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO world_events(id, world_id, turn, kind, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, worldID, event.Turn, string(event.Kind), string(payload),
		event.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append world event: insert: %w", err)
	}
	return nil
}

// ListWorldEvents returns events for a world from the given turn onward,
// oldest first.
func (s *Store) ListWorldEvents(worldID string, sinceTurn int) ([]types.WorldEvent, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM world_events
		 WHERE world_id = ? AND turn >= ?
		 ORDER BY turn ASC, created_at ASC`,
		worldID, sinceTurn,
	)
	if err != nil {
		return nil, fmt.Errorf("list world events: query: %w", err)
	}
	defer rows.Close()

	events := make([]types.WorldEvent, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("list world events: scan: %w", err)
		}
		var event types.WorldEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("list world events: unmarshal: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list world events: rows: %w", err)
	}
	return events, nil
}
