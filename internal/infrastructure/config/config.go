package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Coop Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Door     DoorConfig     `yaml:"door"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for sunrise/sunset calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DoorConfig contains door scheduling and actuation settings.
type DoorConfig struct {
	// BufferAfterSunset is how long after sunset to wait before the evening
	// close, in seconds. Gives stragglers time to get inside. May be zero.
	BufferAfterSunset int `yaml:"buffer_after_sunset"`

	// EarliestOpen is an optional lower bound on the morning opening time,
	// formatted "HH:MM:SS" in the site timezone. Empty means no lower bound.
	// It only delays opening; it never affects closing.
	EarliestOpen string `yaml:"earliest_open"`

	// ActuationDuration is how long the motor runs for one full door
	// movement, in seconds. Fractional values are allowed.
	ActuationDuration float64 `yaml:"actuation_duration"`

	// PollInterval is the delay between control loop iterations, in seconds.
	PollInterval float64 `yaml:"poll_interval"`

	// StateFile is the path of the persisted door state record (open/closed).
	StateFile string `yaml:"state_file"`

	// ModeFile is the path of the persisted door mode record (auto/manual).
	ModeFile string `yaml:"mode_file"`
}

// GPIOConfig contains the H-bridge wiring for the door motor.
// Consumed only by the hardware actuator; ignored in simulation mode.
type GPIOConfig struct {
	// Chip is the GPIO character device name (e.g. "gpiochip0").
	Chip string `yaml:"chip"`

	// In1 and In2 are the H-bridge direction line offsets.
	In1 int `yaml:"in1"`
	In2 int `yaml:"in2"`

	// Enable is the H-bridge enable line offset.
	Enable int `yaml:"enable"`
}

// DatabaseConfig contains SQLite database settings for the door event log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker is optional; when disabled the controller runs standalone.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: COOPCTL_SECTION_KEY
// For example: COOPCTL_DATABASE_PATH, COOPCTL_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "coop-001",
			Name:     "Coop Core",
			Timezone: "Local",
		},
		Door: DoorConfig{
			BufferAfterSunset: 1800,
			ActuationDuration: 30,
			PollInterval:      60,
			StateFile:         "./data/door_state",
			ModeFile:          "./data/door_mode",
		},
		GPIO: GPIOConfig{
			Chip:   "gpiochip0",
			In1:    23,
			In2:    24,
			Enable: 25,
		},
		Database: DatabaseConfig{
			Path:        "./data/coop.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "coopctl",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: COOPCTL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Door
	if v := os.Getenv("COOPCTL_DOOR_STATE_FILE"); v != "" {
		cfg.Door.StateFile = v
	}
	if v := os.Getenv("COOPCTL_DOOR_MODE_FILE"); v != "" {
		cfg.Door.ModeFile = v
	}

	// Database
	if v := os.Getenv("COOPCTL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("COOPCTL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("COOPCTL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("COOPCTL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("COOPCTL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}
	if c.Site.Timezone != "" && c.Site.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("site.timezone %q is not a valid IANA timezone", c.Site.Timezone))
		}
	}

	// Door validation
	if c.Door.BufferAfterSunset < 0 {
		errs = append(errs, "door.buffer_after_sunset must be >= 0")
	}
	if c.Door.ActuationDuration <= 0 {
		errs = append(errs, "door.actuation_duration must be > 0")
	}
	if c.Door.PollInterval <= 0 {
		errs = append(errs, "door.poll_interval must be > 0")
	}
	if c.Door.StateFile == "" {
		errs = append(errs, "door.state_file is required")
	}
	if c.Door.ModeFile == "" {
		errs = append(errs, "door.mode_file is required")
	}
	if c.Door.EarliestOpen != "" {
		if err := validateTimeOfDay(c.Door.EarliestOpen); err != nil {
			errs = append(errs, fmt.Sprintf("door.earliest_open: %v", err))
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateTimeOfDay checks that s is a well-formed "HH:MM:SS" string.
// The solar calculator repeats this parse at each recompute and degrades a bad
// value to "no lower bound"; validating here makes a bad value fatal at
// startup instead, where the operator can still fix it.
func validateTimeOfDay(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return fmt.Errorf("%q is not in HH:MM:SS format", s)
	}
	bounds := [3]int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > bounds[i] {
			return fmt.Errorf("%q is not in HH:MM:SS format", s)
		}
	}
	return nil
}

// Location returns the time.Location for the configured site timezone.
// "Local" or empty uses the system timezone, matching how an operator
// reasons about when the door should move.
func (c *Config) Location() *time.Location {
	if c.Site.Timezone == "" || c.Site.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetBufferAfterSunset returns the post-sunset buffer as a Duration.
func (c *Config) GetBufferAfterSunset() time.Duration {
	return time.Duration(c.Door.BufferAfterSunset) * time.Second
}

// GetActuationDuration returns the actuation duration as a Duration.
func (c *Config) GetActuationDuration() time.Duration {
	return time.Duration(c.Door.ActuationDuration * float64(time.Second))
}

// GetPollInterval returns the control loop poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Door.PollInterval * float64(time.Second))
}
