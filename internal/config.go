package internal

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the declarative description of loggers and service clients.
type Config struct {
	// Loggers maps a service name to the logger options
	// (name, timezone, handlers, processors, error_handler).
	Loggers map[string]Options `yaml:"loggers"`

	// Clients maps a service name to a service client definition.
	Clients map[string]ClientConfig `yaml:"clients"`

	Handlers             PluginConfig `yaml:"handlers"`
	Formatters           PluginConfig `yaml:"formatters"`
	Processors           PluginConfig `yaml:"processors"`
	ServiceClients       PluginConfig `yaml:"service_clients"`
	ActivationStrategies PluginConfig `yaml:"activation_strategies"`
}

// ClientConfig selects a service client factory and its options.
type ClientConfig struct {
	Options any    `yaml:"options"`
	Type    string `yaml:"type"`
}

// PluginConfig holds per-category plugin manager settings.
type PluginConfig struct {
	// Aliases maps an alias to a registered plugin type.
	Aliases map[string]string `yaml:"aliases"`
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with environment values.
// Bare $VAR is left alone so that line formats survive unchanged.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := envRef.FindSubmatch(ref)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// ParseConfig decodes a YAML document after expanding ${VAR} references.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}
