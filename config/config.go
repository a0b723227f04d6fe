// Package config loads and persists the monitor configuration: scan
// settings, logging, CSV logging and the user-selected sensor list.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Scan    ScanConfig     `yaml:"scan"`
	Logging LoggingConfig  `yaml:"logging"`
	CSV     CSVConfig      `yaml:"csv"`
	Sensors []SensorConfig `yaml:"sensors"`
}

// ScanConfig contains BLE scanning configuration.
type ScanConfig struct {
	DiscoverSeconds int `yaml:"discoverSeconds" env:"DISCOVER_SECONDS" env-default:"10"`
	DedupSeconds    int `yaml:"dedupSeconds" env:"DEDUP_SECONDS" env-default:"1"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `yaml:"logFormat" env:"LOG_FORMAT" env-default:"console"`
	Level  string `yaml:"logLevel" env:"LOG_LEVEL" env-default:"info"`
}

// CSVConfig contains CSV logging configuration. SnapshotCron, when set,
// schedules periodic full-table snapshot rows (cron spec, e.g.
// "@every 1m").
type CSVConfig struct {
	Enabled      bool   `yaml:"enabled" env:"CSV_ENABLED" env-default:"false"`
	Path         string `yaml:"path" env:"CSV_PATH" env-default:"tpms_log.csv"`
	SnapshotCron string `yaml:"snapshotCron" env:"CSV_SNAPSHOT_CRON"`
}

// SensorConfig is one monitored sensor: user-assigned name plus MAC.
type SensorConfig struct {
	Name       string `yaml:"name"`
	MACAddress string `yaml:"macAddress"`
}

var macAddressRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Load loads configuration from a YAML file with environment variable
// overrides. A missing file is not an error: the sensor list starts
// empty and is filled through discovery.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration back to disk, persisting the sensor
// selections made through the interactive menu.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scan.DiscoverSeconds < 1 {
		return fmt.Errorf("discover duration must be at least 1 second")
	}
	if c.Scan.DedupSeconds < 0 {
		return fmt.Errorf("dedup interval must not be negative")
	}

	seenMACs := make(map[string]bool)
	for i, sensor := range c.Sensors {
		if sensor.Name == "" {
			return fmt.Errorf("sensor %d: name is required", i)
		}
		if !macAddressRegex.MatchString(sensor.MACAddress) {
			return fmt.Errorf("sensor %s: invalid MAC address format: %s (expected format: XX:XX:XX:XX:XX:XX)", sensor.Name, sensor.MACAddress)
		}
		macUpper := strings.ToUpper(sensor.MACAddress)
		if seenMACs[macUpper] {
			return fmt.Errorf("sensor %s: duplicate MAC address %s", sensor.Name, sensor.MACAddress)
		}
		seenMACs[macUpper] = true
	}

	if err := ValidateLogging(&c.Logging); err != nil {
		return err
	}

	if c.CSV.Enabled && c.CSV.Path == "" {
		return fmt.Errorf("csv path is required when csv logging is enabled")
	}

	return nil
}

// AddSensor appends or renames a sensor entry, keyed by MAC.
func (c *Config) AddSensor(mac, name string) {
	mac = strings.ToUpper(mac)
	for i := range c.Sensors {
		if strings.ToUpper(c.Sensors[i].MACAddress) == mac {
			c.Sensors[i].Name = name
			return
		}
	}
	c.Sensors = append(c.Sensors, SensorConfig{Name: name, MACAddress: mac})
}

// RemoveSensor drops a sensor entry by MAC. Returns true if it existed.
func (c *Config) RemoveSensor(mac string) bool {
	mac = strings.ToUpper(mac)
	for i := range c.Sensors {
		if strings.ToUpper(c.Sensors[i].MACAddress) == mac {
			c.Sensors = append(c.Sensors[:i], c.Sensors[i+1:]...)
			return true
		}
	}
	return false
}
