package config

import "time"

// Default configuration values.
const (
	// Server defaults.
	DefaultHost         = "localhost"
	DefaultPort         = 5000
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 2 * time.Minute
	DefaultIdleTimeout  = 120 * time.Second
	DefaultMaxBodySize  = 1 * 1024 * 1024 // 1MB

	// Database defaults.
	DefaultDBPath       = "postpilot.db"
	DefaultBusyTimeout  = 5 * time.Second
	DefaultMaxOpenConns = 1 // SQLite works best with single writer
	DefaultMaxIdleConns = 1

	// Generator defaults.
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4000

	// Email defaults.
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587

	// Schedule defaults.
	DefaultScheduleTime = "09:00"
	DefaultTimezone     = "America/New_York"

	// Logging defaults.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			MaxBodySize:  DefaultMaxBodySize,
			CORS: CORSConfig{
				Enabled:          true,
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: false,
				MaxAge:           12 * time.Hour,
			},
		},
		Database: DatabaseConfig{
			Path:         DefaultDBPath,
			WALMode:      true,
			BusyTimeout:  DefaultBusyTimeout,
			MaxOpenConns: DefaultMaxOpenConns,
			MaxIdleConns: DefaultMaxIdleConns,
		},
		Generator: GeneratorConfig{
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Email: EmailConfig{
			Host: DefaultSMTPHost,
			Port: DefaultSMTPPort,
		},
		Schedule: ScheduleConfig{
			Time:      DefaultScheduleTime,
			Timezone:  DefaultTimezone,
			AutoStart: true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
