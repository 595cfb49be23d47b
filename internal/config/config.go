// Package config provides configuration management for PostPilot.
package config

import (
	"time"
)

// Config is the root configuration structure for PostPilot.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Generator GeneratorConfig `mapstructure:"generator"`
	LinkedIn  LinkedInConfig  `mapstructure:"linkedin"`
	Email     EmailConfig     `mapstructure:"email"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind the server to
	Host string `mapstructure:"host"`

	// Port to listen on
	Port int `mapstructure:"port"`

	// Enable CORS
	CORS CORSConfig `mapstructure:"cors"`

	// Request timeout
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// Maximum request body size in bytes
	MaxBodySize int64 `mapstructure:"max_body_size"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Allowed origins (use ["*"] for all)
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	AllowCredentials bool `mapstructure:"allow_credentials"`

	// Max age for preflight cache
	MaxAge time.Duration `mapstructure:"max_age"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string `mapstructure:"path"`

	// Enable WAL mode (recommended)
	WALMode bool `mapstructure:"wal_mode"`

	// Busy timeout
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`

	// Maximum open connections
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// Maximum idle connections
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

// GeneratorConfig holds Anthropic API settings for post generation.
type GeneratorConfig struct {
	// API key for the Anthropic Messages API
	APIKey string `mapstructure:"api_key"`

	// Model identifier
	Model string `mapstructure:"model"`

	// Maximum tokens per generation
	MaxTokens int `mapstructure:"max_tokens"`
}

// LinkedInConfig holds LinkedIn OAuth application settings.
type LinkedInConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`

	// Redirect URI registered with the LinkedIn application
	RedirectURI string `mapstructure:"redirect_uri"`
}

// EmailConfig holds outbound notification settings. Notifications are
// disabled unless both User and Password are set.
type EmailConfig struct {
	// SMTP account, also used as sender and recipient
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// SMTP server
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Enabled reports whether notification delivery is configured.
func (e *EmailConfig) Enabled() bool {
	return e.User != "" && e.Password != ""
}

// ScheduleConfig holds the daily posting schedule.
type ScheduleConfig struct {
	// Local wall-clock time in "HH:MM" format
	Time string `mapstructure:"time"`

	// IANA timezone name, e.g. "America/New_York"
	Timezone string `mapstructure:"timezone"`

	// Start the scheduler automatically with the server
	AutoStart bool `mapstructure:"auto_start"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Log format (json, console)
	Format string `mapstructure:"format"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return s.Host + ":" + itoa(s.Port)
}

// itoa converts int to string without importing strconv.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	negative := i < 0
	if negative {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if negative {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
