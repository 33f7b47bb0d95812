// Package config merges the bridge's built-in defaults, a YAML overlay,
// and environment variables into one Config, per spec §6. Grounded on
// brendaboryszanski-smart-home/config's Load (ReadFile + os.ExpandEnv +
// yaml.Unmarshal + setDefaults), generalized from a single flat struct to
// the pool bridge's nested comms/location/log layout.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type CommsConfig struct {
	NetConnect    bool   `yaml:"netConnect"`
	NetHost       string `yaml:"netHost"`
	NetPort       int    `yaml:"netPort"`
	RS485Port     string `yaml:"rs485Port"`
	WSURL         string `yaml:"wsURL"`
	WSUsername    string `yaml:"wsUsername"`
	WSSkipVerify  bool   `yaml:"wsSkipVerify"`
}

type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type ControllerConfig struct {
	Type  string      `yaml:"type"`
	Comms CommsConfig `yaml:"comms"`
}

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Location   LocationConfig   `yaml:"location"`
	Log        LogConfig        `yaml:"log"`
	DataDir    string           `yaml:"dataDir"`
}

// Defaults returns the built-in template merged before any YAML overlay
// or environment override is applied.
func Defaults() Config {
	return Config{
		Controller: ControllerConfig{
			Type: "IntelliTouch",
			Comms: CommsConfig{
				NetConnect: false,
				NetPort:    6200,
				RS485Port:  "/dev/ttyUSB0",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		DataDir: "./data",
	}
}

// Load reads the defaults, overlays path's YAML (if path is non-empty and
// the file exists), expands ${VAR} references the same way the teacher's
// config.Load does, then applies the environment variable mapping from
// spec §6.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else {
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv applies the exhaustive POOL_* mapping from spec §6, the
// highest-precedence layer.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("POOL_NET_CONNECT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Controller.Comms.NetConnect = b
		}
	}
	if v, ok := os.LookupEnv("POOL_NET_HOST"); ok {
		cfg.Controller.Comms.NetHost = v
	}
	if v, ok := os.LookupEnv("POOL_NET_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Controller.Comms.NetPort = n
		}
	}
	if v, ok := os.LookupEnv("POOL_RS485_PORT"); ok {
		cfg.Controller.Comms.RS485Port = v
	}
	if v, ok := os.LookupEnv("POOL_WS_URL"); ok {
		cfg.Controller.Comms.WSURL = v
	}
	if v, ok := os.LookupEnv("POOL_WS_USERNAME"); ok {
		cfg.Controller.Comms.WSUsername = v
	}
	if v, ok := os.LookupEnv("POOL_LATITUDE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Latitude = f
		}
	}
	if v, ok := os.LookupEnv("POOL_LONGITUDE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Longitude = f
		}
	}
	if v, ok := os.LookupEnv("POOL_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
}
