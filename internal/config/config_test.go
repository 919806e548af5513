package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
server:
  host: 0.0.0.0
  port: 9090
database:
  dsn: "host=localhost user=syncer dbname=syncer sslmode=disable"
hub:
  base_url: "http://hub.internal:8000"
  timeout: 10
adapters:
  - chain_id: Bitcoin
    kind: custom
    family: bitcoin
    endpoint: "http://btc-custom:8001"
  - chain_id: eICP
    kind: route
    family: icp
    endpoint: "http://icp-route:8002"
intervals:
  ticket_sync: 7
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "http://hub.internal:8000", cfg.Hub.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Hub.Timeout())
	require.Len(t, cfg.Adapters, 2)
	require.Equal(t, AdapterKindCustom, cfg.Adapters[0].Kind)
	require.Equal(t, "bitcoin", cfg.Adapters[0].Family)
	require.Equal(t, 7*time.Second, cfg.Intervals.TicketSyncInterval())
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  dsn: "host=localhost"
hub:
  base_url: "http://hub:8000"
adapters:
  - chain_id: eICP
    kind: route
    family: icp
    endpoint: "http://icp-route:8002"
`))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 9, cfg.Database.MaxOpenConns) // one adapter plus headroom
	require.Equal(t, 4, cfg.Database.MaxIdleConns)
	require.Equal(t, "BRIDGE_EVENTS", cfg.NATS.StreamName)
	require.Equal(t, 30*time.Second, cfg.Hub.Timeout())
	require.Equal(t, 3*time.Second, cfg.Intervals.TicketSyncInterval())
	require.Equal(t, 20*time.Minute, cfg.Intervals.VolumeInterval())
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	_, err := Load(writeConfig(t, `
hub:
  base_url: "http://hub:8000"
`))
	require.ErrorContains(t, err, "database.dsn")
}

func TestLoadRejectsMissingHubURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  dsn: "host=localhost"
`))
	require.ErrorContains(t, err, "hub.base_url")
}

func TestLoadRejectsBadAdapterKind(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  dsn: "host=localhost"
hub:
  base_url: "http://hub:8000"
adapters:
  - chain_id: eICP
    kind: gateway
    family: icp
    endpoint: "http://icp-route:8002"
`))
	require.ErrorContains(t, err, "kind must be custom or route")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
