// Package config loads and validates the mjrelay YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens and passwords can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	if cfg.Chat.Bridge != nil {
		cfg.Chat.Bridge.Token = expandEnvVars(cfg.Chat.Bridge.Token)
	}
	if cfg.Chat.IRC != nil {
		cfg.Chat.IRC.Password = expandEnvVars(cfg.Chat.IRC.Password)
	}
}

// Load reads the config file, applies defaults and environment overrides,
// and returns a merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Notify.Port == 0 {
		cfg.Notify.Port = 80
	}
	if cfg.Chat.Transport == "" {
		cfg.Chat.Transport = "bridge"
	}
	if cfg.Chat.SelfName == "" {
		cfg.Chat.SelfName = "mjrelay"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads MJRELAY_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MJRELAY_MJ_ENDPOINT"); v != "" {
		cfg.MJ.Endpoint = v
	}
	if v := os.Getenv("MJRELAY_NOTIFY_HOOK"); v != "" {
		cfg.MJ.NotifyHook = v
	}
	if v := os.Getenv("MJRELAY_NOTIFY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Notify.Port = port
		}
	}
	if v := os.Getenv("MJRELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
