package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RyseLabs/perpetu.ai/internal/types"
)

// DataLoader reads world definition files produced by the world generator
// (or written by hand) out of a base directory.
type DataLoader struct {
	basePath string
}

// NewDataLoader creates a new data loader
func NewDataLoader(basePath string) *DataLoader {
	return &DataLoader{
		basePath: basePath,
	}
}

// LoadCharacters loads character definitions from file
func (dl *DataLoader) LoadCharacters() ([]*types.Character, error) {
	path := filepath.Join(dl.basePath, "characters.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file: %w", err)
	}

	var characters []*types.Character
	if err := json.Unmarshal(data, &characters); err != nil {
		return nil, fmt.Errorf("failed to parse characters data: %w", err)
	}

	return characters, nil
}

// LoadWorld loads the world definition from file
func (dl *DataLoader) LoadWorld() (*types.World, error) {
	path := filepath.Join(dl.basePath, "world.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	var world types.World
	if err := json.Unmarshal(data, &world); err != nil {
		return nil, fmt.Errorf("failed to parse world data: %w", err)
	}

	return &world, nil
}
