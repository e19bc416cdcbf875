// Package config loads the host tool configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host tool configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Bench   BenchConfig   `yaml:"bench"`
	Divider DividerConfig `yaml:"divider"`
	NTC     NTCConfig     `yaml:"ntc"`
	Log     LogConfig     `yaml:"log"`
}

// SerialConfig selects the firmware console port.
type SerialConfig struct {
	Port string `yaml:"port"` // empty picks the first USB CDC device
	Baud int    `yaml:"baud"`
}

// BenchConfig describes sensors and lines wired to a Linux host for the
// bench runner.
type BenchConfig struct {
	I2CBus     string        `yaml:"i2c_bus"` // empty opens the first bus
	SupplyADC  uint8         `yaml:"supply_adc"`
	SensorADC  uint8         `yaml:"sensor_adc"`
	CapSensor  uint8         `yaml:"cap_sensor"`
	CapChannel int           `yaml:"cap_channel"` // 1-4
	CapRate    int           `yaml:"cap_rate"`    // 100, 200 or 400 S/s
	PollLimit  int           `yaml:"poll_limit"`
	Interval   time.Duration `yaml:"interval"`
	DataPin    string        `yaml:"data_pin"`
	ShiftPin   string        `yaml:"shift_pin"`
	StoragePin string        `yaml:"storage_pin"`
}

// DividerConfig is the fixed upper leg of the thermistor dividers.
type DividerConfig struct {
	TopOhm float64 `yaml:"top_ohm"`
}

// NTCConfig is the thermistor beta model.
type NTCConfig struct {
	R25  float64 `yaml:"r25"`
	Beta float64 `yaml:"beta"`
}

// LogConfig controls host log output.
type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn or error
	ShowDevice bool   `yaml:"show_device"`
}

// Default returns a default configuration matching the apec r0b board.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Baud: 115200,
		},
		Bench: BenchConfig{
			SupplyADC:  0x49,
			SensorADC:  0x48,
			CapSensor:  0x50,
			CapChannel: 4,
			CapRate:    100,
			PollLimit:  100,
			Interval:   time.Second,
			DataPin:    "GPIO17",
			ShiftPin:   "GPIO27",
			StoragePin: "GPIO22",
		},
		Divider: DividerConfig{
			TopOhm: 3300,
		},
		NTC: NTCConfig{
			R25:  50000,
			Beta: 4016,
		},
		Log: LogConfig{
			Level:      "info",
			ShowDevice: true,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values a partial file left behind.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Bench.SupplyADC == 0 {
		c.Bench.SupplyADC = def.Bench.SupplyADC
	}
	if c.Bench.SensorADC == 0 {
		c.Bench.SensorADC = def.Bench.SensorADC
	}
	if c.Bench.CapSensor == 0 {
		c.Bench.CapSensor = def.Bench.CapSensor
	}
	if c.Bench.CapChannel < 1 || c.Bench.CapChannel > 4 {
		c.Bench.CapChannel = def.Bench.CapChannel
	}
	switch c.Bench.CapRate {
	case 100, 200, 400:
	default:
		c.Bench.CapRate = def.Bench.CapRate
	}
	if c.Bench.Interval == 0 {
		c.Bench.Interval = def.Bench.Interval
	}
	if c.Bench.DataPin == "" {
		c.Bench.DataPin = def.Bench.DataPin
	}
	if c.Bench.ShiftPin == "" {
		c.Bench.ShiftPin = def.Bench.ShiftPin
	}
	if c.Bench.StoragePin == "" {
		c.Bench.StoragePin = def.Bench.StoragePin
	}

	if c.Divider.TopOhm == 0 {
		c.Divider.TopOhm = def.Divider.TopOhm
	}
	if c.NTC.R25 == 0 {
		c.NTC.R25 = def.NTC.R25
	}
	if c.NTC.Beta == 0 {
		c.NTC.Beta = def.NTC.Beta
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
