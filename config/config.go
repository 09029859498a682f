// Package config loads net-sync's runtime configuration from environment
// variables (optionally via a local .env file), the way ws/config.go does
// for the teacher server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every knob the server and client entrypoints need.
type Config struct {
	// Server basics
	Addr string `env:"NETSYNC_ADDR" envDefault:":7777"`

	// Command buffers (C7/C8)
	IgnoreOlderThan  uint `env:"NETSYNC_IGNORE_OLDER_THAN" envDefault:"10"`
	IgnoreNewerThan  uint `env:"NETSYNC_IGNORE_NEWER_THAN" envDefault:"10"`
	ClientBufferSpan uint `env:"NETSYNC_CLIENT_BUFFER_SPAN" envDefault:"60"`

	// Simulation tick (C6)
	SimulationSpeedMs float32 `env:"NETSYNC_SIMULATION_SPEED_MS" envDefault:"16.6"`

	// Capacity
	MaxSessions int `env:"NETSYNC_MAX_SESSIONS" envDefault:"500"`

	// Cluster bridge (§3.3)
	KafkaBrokers  string `env:"NETSYNC_KAFKA_BROKERS" envDefault:""`
	ConsumerGroup string `env:"NETSYNC_KAFKA_CONSUMER_GROUP" envDefault:"net-sync-shard"`
	WorldStateTopic string `env:"NETSYNC_KAFKA_TOPIC" envDefault:"net-sync.worldstate.changed"`

	// Event bus mirror (§3.4)
	NatsURL          string `env:"NETSYNC_NATS_URL" envDefault:""`
	NatsSubjectPrefix string `env:"NETSYNC_NATS_SUBJECT_PREFIX" envDefault:"net-sync.events"`

	// Resource guard (§2.5)
	CPURejectThreshold float64 `env:"NETSYNC_CPU_REJECT_THRESHOLD" envDefault:"75.0"`
	MemoryRejectBytes  int64   `env:"NETSYNC_MEMORY_REJECT_BYTES" envDefault:"536870912"`

	// Rate limiting (§3.5)
	SessionCommandsPerSec int `env:"NETSYNC_SESSION_COMMANDS_PER_SEC" envDefault:"120"`
	SessionBurst          int `env:"NETSYNC_SESSION_BURST" envDefault:"30"`

	// Monitoring
	MetricsAddr     string        `env:"NETSYNC_METRICS_ADDR" envDefault:":9090"`
	MetricsInterval time.Duration `env:"NETSYNC_METRICS_INTERVAL" envDefault:"15s"`

	// Logging
	LogLevel  string `env:"NETSYNC_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"NETSYNC_LOG_FORMAT" envDefault:"json"`
}

// Load reads .env (if present) then environment variables, validating the
// result. logger may be nil before a logger exists yet.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("no .env file found, using environment variables only")
		}
	} else if logger != nil {
		logger.Info().Msg("loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("NETSYNC_ADDR is required")
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("NETSYNC_MAX_SESSIONS must be > 0, got %d", c.MaxSessions)
	}
	if c.SimulationSpeedMs <= 0 {
		return fmt.Errorf("NETSYNC_SIMULATION_SPEED_MS must be > 0, got %v", c.SimulationSpeedMs)
	}
	if c.CPURejectThreshold < 0 || c.CPURejectThreshold > 100 {
		return fmt.Errorf("NETSYNC_CPU_REJECT_THRESHOLD must be 0-100, got %.1f", c.CPURejectThreshold)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("NETSYNC_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("NETSYNC_LOG_FORMAT must be one of: json, console (got: %s)", c.LogFormat)
	}

	return nil
}

// LogFields logs the loaded configuration via structured logging.
func (c *Config) LogFields(logger zerolog.Logger) {
	logger.Info().
		Str("addr", c.Addr).
		Uint("ignore_older_than", c.IgnoreOlderThan).
		Uint("ignore_newer_than", c.IgnoreNewerThan).
		Uint("client_buffer_span", c.ClientBufferSpan).
		Float32("simulation_speed_ms", c.SimulationSpeedMs).
		Int("max_sessions", c.MaxSessions).
		Str("kafka_brokers", c.KafkaBrokers).
		Str("nats_url", c.NatsURL).
		Float64("cpu_reject_threshold", c.CPURejectThreshold).
		Int64("memory_reject_bytes", c.MemoryRejectBytes).
		Int("session_commands_per_sec", c.SessionCommandsPerSec).
		Dur("metrics_interval", c.MetricsInterval).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Msg("configuration loaded")
}
