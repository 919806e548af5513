// Package config loads the syncer configuration from a YAML file.
// The Config value is constructed once in main and passed into every
// constructor; nothing reads ambient package-level state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hub       HubConfig       `yaml:"hub"`
	NATS      NATSConfig      `yaml:"nats"`
	Adapters  []AdapterConfig `yaml:"adapters"`
	Intervals IntervalConfig  `yaml:"intervals"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// MaxOpenConns must cover one borrow per scheduled task or an
	// unrelated task can starve waiting on the pool.
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// HubConfig hub ledger endpoint configuration
type HubConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// Timeout returns the hub RPC timeout
func (c HubConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NATSConfig event publication configuration. Publishing is optional;
// an empty URL disables it.
type NATSConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout"`
	StreamName     string `yaml:"stream_name"`
}

// AdapterKind distinguishes asset-locking customs from asset-minting
// routes.
type AdapterKind string

const (
	AdapterKindCustom AdapterKind = "custom"
	AdapterKindRoute  AdapterKind = "route"
)

// AdapterConfig configures one chain adapter binding
type AdapterConfig struct {
	ChainID string      `yaml:"chain_id"`
	Kind    AdapterKind `yaml:"kind"`
	// Family selects the wire protocol: evm, icp, bitcoin, solana, ton
	Family   string `yaml:"family"`
	Endpoint string `yaml:"endpoint"`
	// RPCURL is the chain node RPC, used by families that verify
	// on-chain state directly (evm).
	RPCURL         string `yaml:"rpc_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// Timeout returns the adapter RPC timeout
func (c AdapterConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IntervalConfig holds per-task scheduling intervals in seconds.
// Zero values fall back to the defaults below.
type IntervalConfig struct {
	ChainSync   int `yaml:"chain_sync"`
	TokenSync   int `yaml:"token_sync"`
	TicketSync  int `yaml:"ticket_sync"`
	Reconcile   int `yaml:"reconcile"`
	PendingPoll int `yaml:"pending_poll"`
	Tombstone   int `yaml:"tombstone"`
	Volume      int `yaml:"volume"`
}

func orDefault(seconds int, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

// Chain/token/ticket sync run every few seconds; aggregates are
// low-churn and run far less often.
func (c IntervalConfig) ChainSyncInterval() time.Duration   { return orDefault(c.ChainSync, 5*time.Second) }
func (c IntervalConfig) TokenSyncInterval() time.Duration   { return orDefault(c.TokenSync, 5*time.Second) }
func (c IntervalConfig) TicketSyncInterval() time.Duration  { return orDefault(c.TicketSync, 3*time.Second) }
func (c IntervalConfig) ReconcileInterval() time.Duration   { return orDefault(c.Reconcile, 10*time.Second) }
func (c IntervalConfig) PendingPollInterval() time.Duration { return orDefault(c.PendingPoll, 10*time.Second) }
func (c IntervalConfig) TombstoneInterval() time.Duration   { return orDefault(c.Tombstone, 30*time.Second) }
func (c IntervalConfig) VolumeInterval() time.Duration      { return orDefault(c.Volume, 20*time.Minute) }

// Load reads and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("config: database.dsn is required")
	}
	if cfg.Hub.BaseURL == "" {
		return nil, fmt.Errorf("config: hub.base_url is required")
	}
	for i, adapter := range cfg.Adapters {
		if adapter.ChainID == "" {
			return nil, fmt.Errorf("config: adapters[%d].chain_id is required", i)
		}
		if adapter.Kind != AdapterKindCustom && adapter.Kind != AdapterKindRoute {
			return nil, fmt.Errorf("config: adapters[%d].kind must be custom or route", i)
		}
		if adapter.Endpoint == "" {
			return nil, fmt.Errorf("config: adapters[%d].endpoint is required", i)
		}
	}

	if cfg.Database.MaxOpenConns <= 0 {
		// one borrow per task plus headroom for the admin surface
		cfg.Database.MaxOpenConns = len(cfg.Adapters) + 8
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 4
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.NATS.StreamName == "" {
		cfg.NATS.StreamName = "BRIDGE_EVENTS"
	}

	return &cfg, nil
}
