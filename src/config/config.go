// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [Load].
const (
	// EnvConfigFile names the configuration file when no path is given.
	EnvConfigFile = "ROOT_REMEDIATOR_CONFIG_FILE"
	// EnvDebug overrides the debug setting. Any value accepted by
	// [strconv.ParseBool] is allowed.
	EnvDebug = "ROOT_REMEDIATOR_DEBUG"
)

// Defaults applied before a file is merged.
const (
	DefaultMode           = "distrust"
	DefaultBackend        = "system"
	DefaultFingerprint    = "spki"
	DefaultTimeoutSeconds = 10
	DefaultMaxTickets     = 64
)

//go:embed schema.json
var schema []byte

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the remediator configuration.
//
// It is loaded from a JSON or YAML file named by the --config flag or the
// ROOT_REMEDIATOR_CONFIG_FILE environment variable. Missing values keep
// their defaults.
type Config struct {
	// Mode: "distrust" or "remove"
	Mode string `json:"mode" yaml:"mode"`
	// Platform overrides the detected OS identity. Intended for dry runs
	// together with a static registry.
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
	// Fingerprint: "spki" or "certificate"
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	// TimeoutSeconds bounds each host call. Zero disables the bound.
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	// Debug enables log output.
	Debug bool `json:"debug" yaml:"debug"`

	// Store selects the trust store.
	Store struct {
		// Backend: "system" (Windows certificate store) or "file"
		Backend string `json:"backend" yaml:"backend"`
		// Path of the database for the file backend
		Path string `json:"path,omitempty" yaml:"path,omitempty"`
	} `json:"store" yaml:"store"`

	// SessionCache describes the caches torn down after remediation.
	SessionCache struct {
		// Dir is an on-disk session cache whose contents are removed.
		Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
		// MaxTickets sizes the in-process TLS session ticket cache.
		MaxTickets int `json:"maxTickets" yaml:"maxTickets"`
	} `json:"sessionCache" yaml:"sessionCache"`

	// Registry replaces the host registry with a fixed key set when Static
	// is true.
	Registry struct {
		Static bool     `json:"static,omitempty" yaml:"static,omitempty"`
		Keys   []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	} `json:"registry" yaml:"registry"`
}

// Timeout returns TimeoutSeconds as a duration. A zero setting yields a
// negative duration, which disables the bound.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return -1
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns a configuration holding only default values.
func Default() *Config {
	c := &Config{
		Mode:           DefaultMode,
		Fingerprint:    DefaultFingerprint,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
	c.Store.Backend = DefaultBackend
	c.SessionCache.MaxTickets = DefaultMaxTickets
	return c
}

// detectConfigFormat determines the configuration file format based on
// file extension. Anything that is not .yaml or .yml is read as JSON.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// decode parses data into a generic document for validation and then into
// config.
func decode(data []byte, config *Config, format configFormat) error {
	var doc any
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}

	// An empty YAML document decodes to nil.
	if doc == nil {
		return nil
	}
	if err := validate(doc); err != nil {
		return err
	}

	switch format {
	case configFormatYAML:
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// validate checks doc against the embedded JSON schema.
func validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load builds the configuration.
//
// Configuration Priority:
//  1. Default values are set
//  2. ROOT_REMEDIATOR_CONFIG_FILE is consulted if configPath is empty
//  3. Config file values override defaults
//  4. ROOT_REMEDIATOR_DEBUG overrides the debug setting
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}

		if config.Mode == "" {
			config.Mode = DefaultMode
		}
		if config.Fingerprint == "" {
			config.Fingerprint = DefaultFingerprint
		}
		if config.Store.Backend == "" {
			config.Store.Backend = DefaultBackend
		}
		if config.SessionCache.MaxTickets <= 0 {
			config.SessionCache.MaxTickets = DefaultMaxTickets
		}
	}

	if config.Store.Backend == "file" && config.Store.Path == "" {
		return nil, fmt.Errorf("invalid config: store.path is required for the file backend")
	}

	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		config.Debug = debug
	}

	return config, nil
}
