package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "FOODVALUE_CONFIG"
	verboseEnv     = "FOODVALUE_VERBOSE"
	interactiveEnv = "FOODVALUE_INTERACTIVE"
	metricsAddrEnv = "FOODVALUE_METRICS_ADDR"
	metricsFileEnv = "FOODVALUE_METRICS_FILE"
	targetEnv      = "FOODVALUE_TARGET"
)

// Load builds the configuration from defaults, the optional YAML file named
// by FOODVALUE_CONFIG and the remaining FOODVALUE_* environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path, ok := EnvString(configPathEnv); ok {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if value, ok, err := EnvBool(verboseEnv); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", verboseEnv, err)
	} else if ok {
		cfg.Verbose = value
	}
	if value, ok, err := EnvBool(interactiveEnv); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", interactiveEnv, err)
	} else if ok {
		cfg.Interactive = value
	}
	if value, ok, err := EnvInt(targetEnv); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", targetEnv, err)
	} else if ok {
		cfg.TargetPerCategory = value
	}
	if value, ok := EnvString(metricsAddrEnv); ok {
		cfg.MetricsAddr = value
	}
	if value, ok := EnvString(metricsFileEnv); ok {
		cfg.MetricsFile = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in a YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, err
	}
	return parsed, true, nil
}
