package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-coop"
  timezone: "Europe/Copenhagen"
  location:
    latitude: 55.4
    longitude: 12.3
door:
  buffer_after_sunset: 1800
  earliest_open: "07:00:00"
  actuation_duration: 30
  poll_interval: 60
  state_file: "/tmp/door_state"
  mode_file: "/tmp/door_mode"
database:
  path: "/tmp/coop.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-coop" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-coop")
	}
	if cfg.Site.Location.Latitude != 55.4 {
		t.Errorf("Site.Location.Latitude = %v, want 55.4", cfg.Site.Location.Latitude)
	}
	if cfg.Door.EarliestOpen != "07:00:00" {
		t.Errorf("Door.EarliestOpen = %q, want %q", cfg.Door.EarliestOpen, "07:00:00")
	}
	if cfg.Door.StateFile != "/tmp/door_state" {
		t.Errorf("Door.StateFile = %q, want %q", cfg.Door.StateFile, "/tmp/door_state")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `site: {id: "coop"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Door.PollInterval != 60 {
		t.Errorf("Door.PollInterval = %v, want default 60", cfg.Door.PollInterval)
	}
	if cfg.Door.BufferAfterSunset != 1800 {
		t.Errorf("Door.BufferAfterSunset = %v, want default 1800", cfg.Door.BufferAfterSunset)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COOPCTL_DOOR_STATE_FILE", "/override/door_state")

	cfg, err := Load(writeConfig(t, `site: {id: "coop"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Door.StateFile != "/override/door_state" {
		t.Errorf("Door.StateFile = %q, want env override", cfg.Door.StateFile)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			modify:  func(_ *Config) {},
			wantErr: "",
		},
		{
			name:    "latitude out of range",
			modify:  func(c *Config) { c.Site.Location.Latitude = 91 },
			wantErr: "latitude",
		},
		{
			name:    "longitude out of range",
			modify:  func(c *Config) { c.Site.Location.Longitude = -181 },
			wantErr: "longitude",
		},
		{
			name:    "negative sunset buffer",
			modify:  func(c *Config) { c.Door.BufferAfterSunset = -1 },
			wantErr: "buffer_after_sunset",
		},
		{
			name:    "zero actuation duration",
			modify:  func(c *Config) { c.Door.ActuationDuration = 0 },
			wantErr: "actuation_duration",
		},
		{
			name:    "zero poll interval",
			modify:  func(c *Config) { c.Door.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name:    "missing state file",
			modify:  func(c *Config) { c.Door.StateFile = "" },
			wantErr: "state_file",
		},
		{
			name:    "malformed earliest open",
			modify:  func(c *Config) { c.Door.EarliestOpen = "7am" },
			wantErr: "earliest_open",
		},
		{
			name:    "earliest open hour out of range",
			modify:  func(c *Config) { c.Door.EarliestOpen = "25:00:00" },
			wantErr: "earliest_open",
		},
		{
			name:    "bad timezone",
			modify:  func(c *Config) { c.Site.Timezone = "Mars/Olympus" },
			wantErr: "timezone",
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "qos",
		},
		{
			name:    "influxdb enabled without url",
			modify:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := defaultConfig()
	cfg.Door.ActuationDuration = 2.5
	cfg.Door.PollInterval = 0.25
	cfg.Door.BufferAfterSunset = 60

	if got := cfg.GetActuationDuration().Seconds(); got != 2.5 {
		t.Errorf("GetActuationDuration() = %vs, want 2.5s", got)
	}
	if got := cfg.GetPollInterval().Seconds(); got != 0.25 {
		t.Errorf("GetPollInterval() = %vs, want 0.25s", got)
	}
	if got := cfg.GetBufferAfterSunset().Seconds(); got != 60 {
		t.Errorf("GetBufferAfterSunset() = %vs, want 60s", got)
	}
}
