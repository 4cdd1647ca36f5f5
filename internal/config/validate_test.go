package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		MJ:      MJConfig{Endpoint: "https://proxy.test/mj"},
		Notify:  NotifyConfig{Port: 80},
		Chat:    ChatConfig{Transport: "bridge", Bridge: &BridgeConfig{URL: "ws://127.0.0.1:8788/ws"}},
		Logging: LoggingConfig{Level: "info"},
	}
}

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateMissingEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.MJ.Endpoint = ""
	assert.Contains(t, issuePaths(Validate(&cfg)), "mj.endpoint")
}

func TestValidateBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Port = 99999
	assert.Contains(t, issuePaths(Validate(&cfg)), "notify.port")
}

func TestValidateBadTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Transport = "telegraph"
	assert.Contains(t, issuePaths(Validate(&cfg)), "chat.transport")
}

func TestValidateBridgeRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Bridge = nil
	assert.Contains(t, issuePaths(Validate(&cfg)), "chat.bridge.url")
}

func TestValidateIRCRequiresServerAndNick(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Transport = "irc"
	cfg.Chat.IRC = nil
	assert.Contains(t, issuePaths(Validate(&cfg)), "chat.irc.server")

	cfg.Chat.IRC = &IRCConfig{Server: "irc.test"}
	assert.Contains(t, issuePaths(Validate(&cfg)), "chat.irc.nick")
}

func TestValidateBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Contains(t, issuePaths(Validate(&cfg)), "logging.level")
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "mj.endpoint", Message: "proxy endpoint is required"}
	assert.Equal(t, "mj.endpoint: proxy endpoint is required", issue.String())
}
