package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWorldRoundtrip(t *testing.T) {
	store := openTestStore(t)

	// Test case 1: Missing world loads as nil, not an error
	world, err := store.LoadWorld("missing")
	assert.NoError(t, err)
	assert.Nil(t, world)

	// Test case 2: Save and reload
	saved := &types.World{
		ID: "world-1", Name: "Riven Vale",
		Width: 1000, Height: 1000, Turn: 7,
	}
	require.NoError(t, store.SaveWorld(saved))

	loaded, err := store.LoadWorld("world-1")
	require.NoError(t, err)
	assert.Equal(t, "Riven Vale", loaded.Name)
	assert.Equal(t, 7, loaded.Turn)

	// Test case 3: Saving again upserts
	saved.Turn = 8
	require.NoError(t, store.SaveWorld(saved))
	loaded, err = store.LoadWorld("world-1")
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.Turn)

	// Test case 4: Nil world is rejected
	assert.Error(t, store.SaveWorld(nil))
}

func TestLoadLatestWorld(t *testing.T) {
	store := openTestStore(t)

	// Test case 1: Empty store yields nil, not an error
	world, err := store.LoadLatestWorld()
	assert.NoError(t, err)
	assert.Nil(t, world)

	// Test case 2: The most recently saved world wins
	require.NoError(t, store.SaveWorld(&types.World{ID: "world-old", Turn: 3}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.SaveWorld(&types.World{ID: "world-new", Turn: 9}))

	world, err = store.LoadLatestWorld()
	require.NoError(t, err)
	assert.Equal(t, "world-new", world.ID)
	assert.Equal(t, 9, world.Turn)

	// Test case 3: Re-saving an older world makes it the latest again
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.SaveWorld(&types.World{ID: "world-old", Turn: 4}))
	world, err = store.LoadLatestWorld()
	require.NoError(t, err)
	assert.Equal(t, "world-old", world.ID)
	assert.Equal(t, 4, world.Turn)
}

func TestCharacterRoundtrip(t *testing.T) {
	store := openTestStore(t)

	character := &types.Character{
		ID:   "char-1",
		Name: "Wander",
		Tier: types.TierIron,
		Core: types.Core{Nature: "fire", CurrentMadra: 80, MaxMadra: 100},
		Inventory: []types.Item{
			{ID: "scale-1", Name: "fire scale", Type: types.ItemTypeScale, Charge: 4.5},
		},
		Position: types.Position{X: 10, Y: 20},
		Activity: types.ActivityResting,
	}

	// Test case 1: Save and reload with nested data intact
	require.NoError(t, store.SaveCharacter(character))
	characters, err := store.LoadCharacters()
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "Wander", characters[0].Name)
	assert.Equal(t, types.TierIron, characters[0].Tier)
	assert.Equal(t, 80.0, characters[0].Core.CurrentMadra)
	require.Len(t, characters[0].Inventory, 1)
	assert.Equal(t, 4.5, characters[0].Inventory[0].Charge)

	// Test case 2: Upsert replaces the snapshot
	character.Core.CurrentMadra = 95
	require.NoError(t, store.SaveCharacter(character))
	characters, err = store.LoadCharacters()
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, 95.0, characters[0].Core.CurrentMadra)

	// Test case 3: Results come back ordered by ID
	require.NoError(t, store.SaveCharacter(&types.Character{ID: "char-0", Name: "First"}))
	characters, err = store.LoadCharacters()
	require.NoError(t, err)
	require.Len(t, characters, 2)
	assert.Equal(t, "char-0", characters[0].ID)

	// Test case 4: Delete removes the row; deleting again fails
	require.NoError(t, store.DeleteCharacter("char-0"))
	assert.Error(t, store.DeleteCharacter("char-0"))
}

func TestWorldEventLog(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	for turn := 1; turn <= 3; turn++ {
		err := store.AppendWorldEvent("world-1", types.WorldEvent{
			ID:          string(rune('a' + turn)),
			Turn:        turn,
			Kind:        types.WorldEventCustom,
			Description: "something happened",
			ActorIDs:    []string{"char-1"},
			CreatedAt:   now,
		})
		require.NoError(t, err)
	}

	// Test case 1: Since turn zero returns everything oldest first
	events, err := store.ListWorldEvents("world-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Turn)
	assert.Equal(t, 3, events[2].Turn)

	// Test case 2: Since filters by turn
	events, err = store.ListWorldEvents("world-1", 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Turn)

	// Test case 3: Other worlds see nothing
	events, err = store.ListWorldEvents("world-2", 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDataLoader(t *testing.T) {
	dir := t.TempDir()

	world := `{"id":"world-1","name":"Riven Vale","width":1000,"height":1000,"turn":0}`
	characters := `[{"id":"char-1","name":"Wander","tier":"iron"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.json"), []byte(world), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "characters.json"), []byte(characters), 0644))

	loader := NewDataLoader(dir)

	// Test case 1: World definition parses
	loadedWorld, err := loader.LoadWorld()
	require.NoError(t, err)
	assert.Equal(t, "Riven Vale", loadedWorld.Name)
	assert.Equal(t, 1000.0, loadedWorld.Width)

	// Test case 2: Character definitions parse
	loadedCharacters, err := loader.LoadCharacters()
	require.NoError(t, err)
	require.Len(t, loadedCharacters, 1)
	assert.Equal(t, types.TierIron, loadedCharacters[0].Tier)

	// Test case 3: Missing files report an error
	empty := NewDataLoader(t.TempDir())
	_, err = empty.LoadWorld()
	assert.Error(t, err)
}
