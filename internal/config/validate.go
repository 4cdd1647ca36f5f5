package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.MJ.Endpoint == "" {
		issues = append(issues, ValidationIssue{
			Path:    "mj.endpoint",
			Message: "proxy endpoint is required",
		})
	}

	if cfg.Notify.Port < 0 || cfg.Notify.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "notify.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Notify.Port),
		})
	}

	validTransports := []string{"bridge", "irc"}
	if !slices.Contains(validTransports, cfg.Chat.Transport) {
		issues = append(issues, ValidationIssue{
			Path:    "chat.transport",
			Message: fmt.Sprintf("must be one of %v, got %q", validTransports, cfg.Chat.Transport),
		})
	}

	switch cfg.Chat.Transport {
	case "bridge":
		if cfg.Chat.Bridge == nil || cfg.Chat.Bridge.URL == "" {
			issues = append(issues, ValidationIssue{
				Path:    "chat.bridge.url",
				Message: "bridge url is required for the bridge transport",
			})
		}
	case "irc":
		if cfg.Chat.IRC == nil || cfg.Chat.IRC.Server == "" {
			issues = append(issues, ValidationIssue{
				Path:    "chat.irc.server",
				Message: "irc server is required for the irc transport",
			})
		} else if cfg.Chat.IRC.Nick == "" {
			issues = append(issues, ValidationIssue{
				Path:    "chat.irc.nick",
				Message: "irc nick is required for the irc transport",
			})
		}
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
