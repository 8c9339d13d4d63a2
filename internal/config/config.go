package config

import (
	"time"

	"github.com/roomrelay/relay-server/internal/keepalive"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Durable message store. An empty addr runs fallback-only.
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	// Static admin credential for in-band login.
	AdminUsername string `mapstructure:"admin_username" yaml:"admin_username"`
	AdminPassword string `mapstructure:"admin_password" yaml:"admin_password"`

	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval" yaml:"keep_alive_interval"`
	MuteDuration      time.Duration `mapstructure:"mute_duration" yaml:"mute_duration"`
	BanDuration       time.Duration `mapstructure:"ban_duration" yaml:"ban_duration"`
	KickDelay         time.Duration `mapstructure:"kick_delay" yaml:"kick_delay"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// Per-connection inbound frame limit.
	MessageRate  float64 `mapstructure:"message_rate" yaml:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst" yaml:"message_burst"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		RedisAddr:         "localhost:6379",
		AdminUsername:     "admin",
		AdminPassword:     "changeme",
		KeepAliveInterval: keepalive.DefaultInterval,
		MuteDuration:      5 * time.Minute,
		BanDuration:       24 * time.Hour,
		KickDelay:         500 * time.Millisecond,
		SweepInterval:     time.Hour,
		MessageRate:       5,
		MessageBurst:      10,
	}
}
