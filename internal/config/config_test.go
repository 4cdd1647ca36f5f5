package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Notify.Port)
	assert.Equal(t, "bridge", cfg.Chat.Transport)
	assert.Equal(t, "mjrelay", cfg.Chat.SelfName)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
mj:
  endpoint: https://proxy.test/mj
  notifyHook: http://relay.test/notify
  httpProxy: http://127.0.0.1:7890
  imagesDir: /tmp/images
notify:
  port: 8080
chat:
  transport: bridge
  selfName: painter-bot
  bridge:
    url: ws://127.0.0.1:8788/ws
sensitive:
  wordsFile: /etc/mjrelay/words.txt
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://proxy.test/mj", cfg.MJ.Endpoint)
	assert.Equal(t, "http://relay.test/notify", cfg.MJ.NotifyHook)
	assert.Equal(t, "http://127.0.0.1:7890", cfg.MJ.HTTPProxy)
	assert.Equal(t, "/tmp/images", cfg.MJ.ImagesDir)
	assert.Equal(t, 8080, cfg.Notify.Port)
	assert.Equal(t, "painter-bot", cfg.Chat.SelfName)
	require.NotNil(t, cfg.Chat.Bridge)
	assert.Equal(t, "ws://127.0.0.1:8788/ws", cfg.Chat.Bridge.URL)
	assert.Equal(t, "/etc/mjrelay/words.txt", cfg.Sensitive.WordsFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "mj: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MJRELAY_MJ_ENDPOINT", "https://other.test/mj")
	t.Setenv("MJRELAY_NOTIFY_PORT", "9090")
	t.Setenv("MJRELAY_LOG_LEVEL", "WARN")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://other.test/mj", cfg.MJ.Endpoint)
	assert.Equal(t, 9090, cfg.Notify.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestExpandSensitiveFields(t *testing.T) {
	t.Setenv("BRIDGE_TOKEN", "s3cret")
	path := writeConfig(t, `
chat:
  transport: bridge
  bridge:
    url: ws://127.0.0.1:8788/ws
    token: ${BRIDGE_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Chat.Bridge.Token)
}

func TestExpandLeavesUnsetVarsAlone(t *testing.T) {
	path := writeConfig(t, `
chat:
  bridge:
    url: ws://127.0.0.1:8788/ws
    token: ${DEFINITELY_NOT_SET_ANYWHERE}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_ANYWHERE}", cfg.Chat.Bridge.Token)
}
