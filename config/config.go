package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Game configuration
	Game GameConfig `json:"game"`
}

// ServerConfig holds HTTP server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level"`
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	// Database driver (sqlite)
	Driver string `json:"driver"`

	// Database connection string
	DSN string `json:"dsn"`
}

// GameConfig holds simulation specific configuration
type GameConfig struct {
	// World name
	WorldName string `json:"world_name"`

	// World dimensions
	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	// Dice seed; 0 means seed from the current time
	Seed int64 `json:"seed"`

	// Seconds between automatic turns; 0 disables the ticker
	TurnInterval int `json:"turn_interval"`

	// Directory with world definition files
	DataDir string `json:"data_dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./perpetu.db",
		},
		Game: GameConfig{
			WorldName:    "Riven Vale",
			WorldWidth:   1000,
			WorldHeight:  1000,
			Seed:         0,
			TurnInterval: 0,
			DataDir:      "./assets/data",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config file
		file, err := os.Create(path)
		if err != nil {
			return config, err
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(config); err != nil {
			return config, err
		}

		return config, nil
	}

	// Read config file
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create or truncate file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write config to file
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return err
	}

	return nil
}
