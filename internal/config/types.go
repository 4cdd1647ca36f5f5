package config

// Config is the root configuration for mjrelay.
type Config struct {
	MJ        MJConfig        `yaml:"mj,omitempty"`
	Notify    NotifyConfig    `yaml:"notify,omitempty"`
	Chat      ChatConfig      `yaml:"chat,omitempty"`
	Sensitive SensitiveConfig `yaml:"sensitive,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// MJConfig points at the Midjourney proxy and controls image handling.
type MJConfig struct {
	Endpoint   string `yaml:"endpoint"`             // base URL of the proxy API
	NotifyHook string `yaml:"notifyHook,omitempty"` // callback URL pointing back at our /notify
	HTTPProxy  string `yaml:"httpProxy,omitempty"`  // forward proxy for result-image downloads
	ImagesDir  string `yaml:"imagesDir,omitempty"`  // save downloaded images here when set
}

// NotifyConfig controls the webhook listener.
type NotifyConfig struct {
	Port int `yaml:"port,omitempty"`
}

// ChatConfig selects and configures the chat transport.
type ChatConfig struct {
	Transport string        `yaml:"transport,omitempty"` // "bridge" | "irc"
	SelfName  string        `yaml:"selfName,omitempty"`  // display name before login
	Bridge    *BridgeConfig `yaml:"bridge,omitempty"`
	IRC       *IRCConfig    `yaml:"irc,omitempty"`
}

// BridgeConfig defines the websocket puppet-bridge transport.
type BridgeConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

// IRCConfig defines the IRC transport.
type IRCConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port,omitempty"`
	Nick     string   `yaml:"nick"`
	Password string   `yaml:"password,omitempty"`
	Channels []string `yaml:"channels"`
	UseTLS   bool     `yaml:"useTLS,omitempty"`
	SASL     bool     `yaml:"sasl,omitempty"`
}

// SensitiveConfig points at the banned-word list.
type SensitiveConfig struct {
	WordsFile string `yaml:"wordsFile,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
}
