package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/publisher"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML file pointed to by CONFIG_PATH.
// Fields left out of the file keep their defaults.
type Config struct {
	Game grill.Rules `yaml:"game"`
	NATS struct {
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
		PublishTicks  bool   `yaml:"publish_ticks"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	js := publisher.DefaultJetStreamConfig()

	cfg := &Config{Game: grill.DefaultRules()}
	cfg.NATS.StreamName = js.StreamName
	cfg.NATS.SubjectPrefix = js.SubjectPrefix
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads path on top of the defaults. An empty path means defaults only.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	return config, nil
}

// jetStreamConfig merges the file settings with NATS_URL
func (c *Config) jetStreamConfig(url string) publisher.JetStreamConfig {
	js := publisher.DefaultJetStreamConfig()
	js.URL = url
	js.StreamName = c.NATS.StreamName
	js.SubjectPrefix = c.NATS.SubjectPrefix
	js.PublishTicks = c.NATS.PublishTicks
	return js
}
