// Package config provides centralized configuration management.
// Every tunable of the simulation, the sync layer and the relay lives here;
// other packages receive values, they never read the environment directly.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds per-frame simulation settings.
type SimConfig struct {
	TickRate          int     // Frames per second of the local loop
	TileSize          float64 // Pixels per tile
	BaseSpeed         float64 // Pixels per frame while moving between tiles
	SandSlow          float64 // Speed multiplier while standing on sand
	NormalizeDiagonal bool    // Cap diagonal steps to Euclidean speed
	MapWidth          int     // Default lobby map width in tiles
	MapHeight         int     // Default lobby map height in tiles
	MaxProjectiles    int     // Hard cap on live projectiles
	EnemyWaveSize     int     // Enemies the owner spawns per wave
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:          60,
		TileSize:          32,
		BaseSpeed:         4,
		SandSlow:          0.7,
		NormalizeDiagonal: false, // inherited behaviour: diagonal moves are ~1.41x faster
		MapWidth:          48,
		MapHeight:         32,
		MaxProjectiles:    128,
		EnemyWaveSize:     6,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if v := getEnvInt("TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvFloat("TILE_SIZE", 0); v > 0 {
		cfg.TileSize = v
	}
	if v := getEnvFloat("BASE_SPEED", 0); v > 0 {
		cfg.BaseSpeed = v
	}
	if os.Getenv("NORMALIZE_DIAGONAL") == "true" {
		cfg.NormalizeDiagonal = true
	}
	if v := getEnvInt("MAP_WIDTH", 0); v > 0 {
		cfg.MapWidth = v
	}
	if v := getEnvInt("MAP_HEIGHT", 0); v > 0 {
		cfg.MapHeight = v
	}
	if v := getEnvInt("ENEMY_WAVE_SIZE", -1); v >= 0 {
		cfg.EnemyWaveSize = v
	}

	return cfg
}

// =============================================================================
// SYNC CONFIGURATION
// =============================================================================

// SyncConfig holds reconciliation layer settings.
type SyncConfig struct {
	SendInterval      time.Duration // Minimum gap between player-state broadcasts
	PositionEpsilon   float64       // Pixel delta below which a position is "unchanged"
	EnemySyncInterval time.Duration // Gap between owner enemy-state broadcasts
	BackoffWindow     time.Duration // Write suppression after exhaustion/unavailability
	InboundBuffer     int           // Queued peer messages before drops
}

// DefaultSync returns the default sync configuration.
func DefaultSync() SyncConfig {
	return SyncConfig{
		SendInterval:      100 * time.Millisecond,
		PositionEpsilon:   0.5,
		EnemySyncInterval: 200 * time.Millisecond,
		BackoffWindow:     30 * time.Second,
		InboundBuffer:     512,
	}
}

// SyncFromEnv returns sync configuration with environment overrides.
func SyncFromEnv() SyncConfig {
	cfg := DefaultSync()

	if ms := getEnvInt("SYNC_SEND_INTERVAL_MS", 0); ms > 0 {
		cfg.SendInterval = time.Duration(ms) * time.Millisecond
	}
	if eps := getEnvFloat("SYNC_POSITION_EPSILON", -1); eps >= 0 {
		cfg.PositionEpsilon = eps
	}
	if ms := getEnvInt("SYNC_ENEMY_INTERVAL_MS", 0); ms > 0 {
		cfg.EnemySyncInterval = time.Duration(ms) * time.Millisecond
	}
	if s := getEnvInt("SYNC_BACKOFF_SECONDS", 0); s > 0 {
		cfg.BackoffWindow = time.Duration(s) * time.Second
	}

	return cfg
}

// =============================================================================
// RELAY SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds relay HTTP server settings.
type ServerConfig struct {
	Port            int
	MaxLobbies      int
	MaxLobbyMembers int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            3000,
		MaxLobbies:      256,
		MaxLobbyMembers: 16,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if v := getEnvInt("MAX_LOBBIES", 0); v > 0 {
		cfg.MaxLobbies = v
	}
	if v := getEnvInt("MAX_LOBBY_MEMBERS", 0); v > 0 {
		cfg.MaxLobbyMembers = v
	}

	return cfg
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig identifies a headless client session.
type ClientConfig struct {
	RelayURL      string // ws:// base URL of the relay
	LobbyID       string
	Username      string
	Character     string
	AbilitiesPath string // YAML ability catalog; embedded defaults when empty
	EventLogPath  string // JSONL event log; disabled when empty
}

// ClientFromEnv returns client configuration from the environment.
func ClientFromEnv() ClientConfig {
	return ClientConfig{
		RelayURL:      getEnv("RELAY_URL", "ws://localhost:3000"),
		LobbyID:       getEnv("LOBBY_ID", "main"),
		Username:      getEnv("ARENA_USERNAME", "trainer"),
		Character:     getEnv("ARENA_CHARACTER", "Gengar"),
		AbilitiesPath: os.Getenv("ABILITIES_PATH"),
		EventLogPath:  os.Getenv("EVENT_LOG_PATH"),
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Sync   SyncConfig
	Server ServerConfig
	Client ClientConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Sync:   SyncFromEnv(),
		Server: ServerFromEnv(),
		Client: ClientFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
