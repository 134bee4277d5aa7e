// Package config loads the device settings file (chronodesk.yaml).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFilename is the settings file looked up when no path is given.
	DefaultFilename = "chronodesk.yaml"

	DefaultDataDir      = "/var/lib/chronodesk"
	DefaultPollInterval = 10 * time.Millisecond
	DefaultVolume       = 25
	MaxVolume           = 30
	DefaultGPIOChip     = "gpiochip0"
	DefaultAlertzyURL   = "https://alertzy.app/send"
	DefaultSendTimeout  = 5 * time.Second
	DefaultHeartbeat    = time.Hour
	DefaultHTTPAddr     = ":80"

	StorageFile   = "file"
	StorageSQLite = "sqlite"

	filePerm = 0o600
)

var (
	errConfigIsNotSet   = errors.New("configuration is not set")
	errBadStorageDriver = errors.New("storage driver must be file or sqlite")
	errPinsRequired     = errors.New("all button pins must be distinct and set")
)

// Config is the on-disk device configuration.
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Volume       int           `yaml:"volume"`
	UTCOffset    time.Duration `yaml:"utc_offset"`
	LogLevel     string        `yaml:"log_level"`

	Storage Storage `yaml:"storage"`
	Pins    Pins    `yaml:"pins"`
	Audio   Audio   `yaml:"audio"`
	Alertzy Alertzy `yaml:"alertzy"`
	MQTT    MQTT    `yaml:"mqtt"`
	HTTP    HTTP    `yaml:"http"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string `yaml:"driver"`
}

// Pins are BCM line offsets on Chip.
type Pins struct {
	Chip   string `yaml:"chip"`
	Up     int    `yaml:"up"`
	Down   int    `yaml:"down"`
	Left   int    `yaml:"left"`
	Right  int    `yaml:"right"`
	Select int    `yaml:"select"`
	LED    int    `yaml:"led"`
}

// Audio configures the external clip player. An empty Command disables audio.
type Audio struct {
	Command   string `yaml:"command"`
	TracksDir string `yaml:"tracks_dir"`
}

// Alertzy configures the push notification endpoint.
type Alertzy struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MQTT configures the device event bus. An empty Broker disables it.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// HTTP configures the status server. An empty Addr disables it.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Volume: DefaultVolume,
		Pins:   Pins{Up: 5, Down: 6, Left: 13, Right: 19, Select: 26, LED: 16},
		HTTP:   HTTP{Addr: DefaultHTTPAddr},
		Audio: Audio{
			Command:   "mpv --no-video --really-quiet --volume={percent} {file}",
			TracksDir: "/usr/share/chronodesk/tracks",
		},
	}
	_ = Validate(cfg)

	return cfg
}

// Load reads path. A missing file yields Default(); a malformed one is an
// error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Clean(path), data, filePerm); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and rejects values the device cannot run with.
// Volume is clamped rather than rejected.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	switch {
	case cfg.Volume < 0:
		cfg.Volume = 0
	case cfg.Volume > MaxVolume:
		cfg.Volume = MaxVolume
	}

	switch cfg.Storage.Driver {
	case "":
		cfg.Storage.Driver = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: %q", errBadStorageDriver, cfg.Storage.Driver)
	}

	if cfg.Pins.Chip == "" {
		cfg.Pins.Chip = DefaultGPIOChip
	}
	if err := validatePins(cfg.Pins); err != nil {
		return err
	}

	if cfg.Alertzy.Endpoint == "" {
		cfg.Alertzy.Endpoint = DefaultAlertzyURL
	}
	if _, err := url.ParseRequestURI(cfg.Alertzy.Endpoint); err != nil {
		return fmt.Errorf("invalid alertzy endpoint: %w", err)
	}
	if cfg.Alertzy.Timeout <= 0 {
		cfg.Alertzy.Timeout = DefaultSendTimeout
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "chronodesk"
	}
	if cfg.MQTT.Heartbeat <= 0 {
		cfg.MQTT.Heartbeat = DefaultHeartbeat
	}

	return nil
}

func validatePins(p Pins) error {
	seen := make(map[int]bool)
	for _, pin := range []int{p.Up, p.Down, p.Left, p.Right, p.Select, p.LED} {
		if pin <= 0 || seen[pin] {
			return errPinsRequired
		}
		seen[pin] = true
	}

	return nil
}
