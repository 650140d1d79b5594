package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "living-room"
bus:
  port: "/dev/ttyACM0"
  osd_name: "Lounge"
  device_type: "playback"
api:
  port: 8081
mqtt:
  enabled: true
  broker:
    host: "broker.local"
database:
  path: "/tmp/cecctl-test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "living-room" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "living-room")
	}
	if cfg.Bus.Port != "/dev/ttyACM0" {
		t.Errorf("Bus.Port = %q", cfg.Bus.Port)
	}
	if cfg.Bus.DeviceType != "playback" {
		t.Errorf("Bus.DeviceType = %q", cfg.Bus.DeviceType)
	}
	if cfg.API.Port != 8081 {
		t.Errorf("API.Port = %d, want 8081", cfg.API.Port)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
	// Defaults survive a partial file
	if cfg.Bus.Binary != "cec-client" {
		t.Errorf("Bus.Binary = %q, want default", cfg.Bus.Binary)
	}
	if cfg.MQTT.TopicPrefix != "cec" {
		t.Errorf("MQTT.TopicPrefix = %q, want default", cfg.MQTT.TopicPrefix)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.API.Port != 3308 {
		t.Errorf("API.Port = %d, want 3308", cfg.API.Port)
	}
	if cfg.GetBatchDelay() != 300*time.Millisecond {
		t.Errorf("GetBatchDelay() = %v", cfg.GetBatchDelay())
	}
	if cfg.GetCommandTimeout() != 10*time.Second {
		t.Errorf("GetCommandTimeout() = %v", cfg.GetCommandTimeout())
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load(sample) error = %v", err)
	}
	if cfg.API.Port != 3308 || cfg.Bus.DeviceType != "recording" {
		t.Errorf("sample config = %+v", cfg)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.Discovery.Enabled {
		t.Error("sample config should leave optional integrations disabled")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
bus:
  port: "/dev/ttyACM0"
`)
	t.Setenv("CECCTL_BUS_PORT", "RPI")
	t.Setenv("CECCTL_API_PORT", "9000")
	t.Setenv("CECCTL_MQTT_PASSWORD", "secret")
	t.Setenv("CECCTL_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bus.Port != "RPI" {
		t.Errorf("Bus.Port = %q, want RPI", cfg.Bus.Port)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("MQTT.Auth.Password not overridden")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_BadEnvPort(t *testing.T) {
	t.Setenv("CECCTL_API_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for non-numeric CECCTL_API_PORT")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing site id",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: "site.id",
		},
		{
			name:    "missing binary",
			mutate:  func(c *Config) { c.Bus.Binary = "" },
			wantErr: "bus.binary",
		},
		{
			name:    "bad device type",
			mutate:  func(c *Config) { c.Bus.DeviceType = "toaster" },
			wantErr: "bus.device_type",
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Bus.CommandTimeout = 0 },
			wantErr: "bus.command_timeout",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name: "bad qos when mqtt enabled",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 3
			},
			wantErr: "mqtt.qos",
		},
		{
			name:   "bad qos ignored when mqtt disabled",
			mutate: func(c *Config) { c.MQTT.QoS = 3 },
		},
		{
			name:    "database without path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name: "influxdb without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Org = "home"
				c.InfluxDB.Bucket = "cec"
			},
			wantErr: "influxdb.url",
		},
		{
			name: "discovery service malformed",
			mutate: func(c *Config) {
				c.Discovery.Enabled = true
				c.Discovery.Service = "cecctl"
			},
			wantErr: "discovery.service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := &Config{API: APIConfig{Timeouts: APITimeoutConfig{Read: 5, Write: 10, Idle: 15}}}
	if cfg.GetReadTimeout() != 5*time.Second {
		t.Errorf("GetReadTimeout() = %v", cfg.GetReadTimeout())
	}
	if cfg.GetWriteTimeout() != 10*time.Second {
		t.Errorf("GetWriteTimeout() = %v", cfg.GetWriteTimeout())
	}
	if cfg.GetIdleTimeout() != 15*time.Second {
		t.Errorf("GetIdleTimeout() = %v", cfg.GetIdleTimeout())
	}
}
