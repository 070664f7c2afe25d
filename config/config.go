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

	// Database configuration (optional Postgres persistence)
	Database DatabaseConfig `json:"database"`

	// Inference configuration (optional AI decision backend)
	Inference InferenceConfig `json:"inference"`

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
	// Postgres connection URL; empty disables database persistence
	URL string `json:"url"`
}

// InferenceConfig holds AI inference backend configuration
type InferenceConfig struct {
	// Endpoint URL; empty means the deterministic fallback policy only
	URL string `json:"url"`

	// Model identifier passed through to the backend
	Model string `json:"model"`

	// Request timeout in seconds before falling back locally
	TimeoutSeconds int `json:"timeout_seconds"`
}

// GameConfig holds simulation specific configuration
type GameConfig struct {
	// Simulation tick interval in milliseconds
	TickIntervalMS int `json:"tick_interval_ms"`

	// Starting capital for every company
	StartingCapital int64 `json:"starting_capital"`

	// Capital level under which a low-asset warning is raised
	EliminationThreshold int64 `json:"elimination_threshold"`

	// Share of total active capital that wins the game (0-1)
	VictoryShare float64 `json:"victory_share"`

	// Ticks before low-asset warnings start firing
	GracePeriodTicks int64 `json:"grace_period_ticks"`

	// Number of AI-controlled companies
	AICompanyCount int `json:"ai_company_count"`

	// AI aggressiveness hint passed into decision contexts (0-1)
	AIAggressiveness float64 `json:"ai_aggressiveness"`

	// Ticks between AI decision rounds
	DecisionCooldownTicks int64 `json:"decision_cooldown_ticks"`

	// Randomized decision apply delay bounds, in ticks
	DecisionDelayMinTicks int64 `json:"decision_delay_min_ticks"`
	DecisionDelayMaxTicks int64 `json:"decision_delay_max_ticks"`

	// Agents spawned per company
	AgentsPerCompany int `json:"agents_per_company"`

	// Agent movement speed in map units per tick
	AgentSpeed float64 `json:"agent_speed"`

	// Probability an idle AI agent picks a wandering target each tick (0-1)
	WanderChance float64 `json:"wander_chance"`

	// Global multiplier applied to per-stock volatility
	MarketVolatilityScale float64 `json:"market_volatility_scale"`

	// Ticks between opportunistic snapshot saves; 0 disables autosave
	AutosaveTicks int64 `json:"autosave_ticks"`

	// Map bounds
	MapWidth  float64 `json:"map_width"`
	MapHeight float64 `json:"map_height"`

	// RNG seed; 0 means time-based
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			URL: "",
		},
		Inference: InferenceConfig{
			URL:            "",
			Model:          "default",
			TimeoutSeconds: 10,
		},
		Game: GameConfig{
			TickIntervalMS:        100,
			StartingCapital:       1_000_000,
			EliminationThreshold:  50_000,
			VictoryShare:          0.60,
			GracePeriodTicks:      300,
			AICompanyCount:        3,
			AIAggressiveness:      0.5,
			DecisionCooldownTicks: 50,
			DecisionDelayMinTicks: 2,
			DecisionDelayMaxTicks: 6,
			AgentsPerCompany:      3,
			AgentSpeed:            5,
			WanderChance:          0.02,
			MarketVolatilityScale: 1.0,
			AutosaveTicks:         100,
			MapWidth:              1000,
			MapHeight:             1000,
			Seed:                  0,
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
