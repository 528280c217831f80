package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// FeedConfig holds settings for the poll-source HTTP client.
type FeedConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// EngineConfig holds the reconciliation and scheduling cadence.
type EngineConfig struct {
	PollInterval     int `mapstructure:"poll_interval"`     // seconds
	ReminderInterval int `mapstructure:"reminder_interval"` // seconds
	ErrorDedupWindow int `mapstructure:"error_dedup_window"` // seconds
	DedupWindow      int `mapstructure:"dedup_window"`       // seconds
}

func (e EngineConfig) PollEvery() time.Duration {
	return time.Duration(e.PollInterval) * time.Second
}

func (e EngineConfig) ReminderEvery() time.Duration {
	return time.Duration(e.ReminderInterval) * time.Second
}

func (e EngineConfig) ErrorWindow() time.Duration {
	return time.Duration(e.ErrorDedupWindow) * time.Second
}

func (e EngineConfig) DefaultWindow() time.Duration {
	return time.Duration(e.DedupWindow) * time.Second
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AlertsConfig holds delivery-channel wiring. Whether a channel is used for
// a given alert is decided by the persisted user settings, not here.
type AlertsConfig struct {
	Email struct {
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	Push struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"push"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
