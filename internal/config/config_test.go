package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, StorageFile, cfg.Storage.Driver)
	require.Equal(t, DefaultAlertzyURL, cfg.Alertzy.Endpoint)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("volume: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chronodesk.yaml")
	body := `
data_dir: /tmp/cd
poll_interval: 20ms
volume: 99
utc_offset: 2h
storage:
  driver: sqlite
mqtt:
  broker: tcp://broker.local:1883
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/cd", cfg.DataDir)
	require.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	require.Equal(t, MaxVolume, cfg.Volume)
	require.Equal(t, 2*time.Hour, cfg.UTCOffset)
	require.Equal(t, StorageSQLite, cfg.Storage.Driver)
	require.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	// untouched sections keep defaults
	require.Equal(t, 26, cfg.Pins.Select)
	require.Equal(t, DefaultHeartbeat, cfg.MQTT.Heartbeat)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Storage.Driver = "postgres"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Pins.Down = cfg.Pins.Up
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Alertzy.Endpoint = "not a url"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Volume = -4
	require.NoError(t, Validate(cfg))
	require.Equal(t, 0, cfg.Volume)

	require.Error(t, Validate(nil))
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "chronodesk.yaml")

	cfg := Default()
	cfg.Volume = 12
	cfg.MQTT.Broker = "tcp://10.0.0.2:1883"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
