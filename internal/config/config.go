package config

import "time"

// Config holds server configuration values.
type Config struct {
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	HTTP            HTTPConfig    `mapstructure:"http" yaml:"http"`
	Channel         ChannelConfig `mapstructure:"channel" yaml:"channel"`
	Notify          NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Store           StoreConfig   `mapstructure:"store" yaml:"store"`
}

// HTTPConfig configures the request server.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	TemplatesDir      string        `mapstructure:"templates_dir" yaml:"templates_dir"`
	StaticDir         string        `mapstructure:"static_dir" yaml:"static_dir"`
	// SubmitLimit caps submissions per minute; zero disables the cap.
	SubmitLimit int `mapstructure:"submit_limit" yaml:"submit_limit"`
}

// ChannelConfig configures the notification channel server.
type ChannelConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// NATSURL enables relaying received frames when set.
	NATSURL     string `mapstructure:"nats_url" yaml:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject" yaml:"nats_subject"`
}

// NotifyConfig configures delivery from the request server to the channel.
type NotifyConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StoreConfig selects the message store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		HTTP: HTTPConfig{
			Addr:              ":3000",
			ReadHeaderTimeout: 5 * time.Second,
			TemplatesDir:      "templates",
			StaticDir:         "static",
		},
		Channel: ChannelConfig{
			Addr:        ":6000",
			NATSSubject: "wireboard.messages",
		},
		Notify: NotifyConfig{
			URL:     "ws://localhost:6000",
			Timeout: 2 * time.Second,
		},
		Store: StoreConfig{
			Driver: "json",
			Path:   "storage/data.json",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	setString(&c.LogLevel, other.LogLevel)
	setDuration(&c.ShutdownTimeout, other.ShutdownTimeout)

	setString(&c.HTTP.Addr, other.HTTP.Addr)
	setDuration(&c.HTTP.ReadHeaderTimeout, other.HTTP.ReadHeaderTimeout)
	setString(&c.HTTP.TemplatesDir, other.HTTP.TemplatesDir)
	setString(&c.HTTP.StaticDir, other.HTTP.StaticDir)
	if other.HTTP.SubmitLimit != 0 {
		c.HTTP.SubmitLimit = other.HTTP.SubmitLimit
	}

	setString(&c.Channel.Addr, other.Channel.Addr)
	setString(&c.Channel.NATSURL, other.Channel.NATSURL)
	setString(&c.Channel.NATSSubject, other.Channel.NATSSubject)

	setString(&c.Notify.URL, other.Notify.URL)
	setDuration(&c.Notify.Timeout, other.Notify.Timeout)

	setString(&c.Store.Driver, other.Store.Driver)
	setString(&c.Store.Path, other.Store.Path)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
