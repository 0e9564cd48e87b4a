package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the triage service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Evaluator  EvaluatorConfig  `mapstructure:"evaluator"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Services   ServicesConfig   `mapstructure:"services"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	// Driver selects the case/alert repository backend: "postgres" or "memory".
	Driver string `mapstructure:"driver"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds the PostgreSQL connection string.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration for evaluator state
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// NATSConfig holds message bus configuration
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Name    string `mapstructure:"name"`
	Enabled bool   `mapstructure:"enabled"`
}

// QueueConfig holds triage queue policy settings
type QueueConfig struct {
	AlertAllOnRed     bool `mapstructure:"alert_all_on_red"`
	AutoAssign        bool `mapstructure:"auto_assign"`
	AvgConsultMinutes int  `mapstructure:"avg_consult_minutes"`
}

// EvaluatorConfig holds alert evaluation settings
type EvaluatorConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	SampleTimeout time.Duration `mapstructure:"sample_timeout"`
}

// EscalationConfig holds escalation dispatch settings
type EscalationConfig struct {
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

// ServicesConfig holds URLs of collaborating services
type ServicesConfig struct {
	ConfigURL  string `mapstructure:"config_url"`  // alert rule / policy / channel provider
	VetsURL    string `mapstructure:"vets_url"`    // clinic roster
	MetricsURL string `mapstructure:"metrics_url"` // external metrics source, optional
	GatewayURL string `mapstructure:"gateway_url"` // email/sms delivery gateway
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "vetlink")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "vetlink_triage")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.enabled", true)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "vetlink-triage")
	v.SetDefault("nats.enabled", true)

	v.SetDefault("queue.alert_all_on_red", true)
	v.SetDefault("queue.auto_assign", false)
	v.SetDefault("queue.avg_consult_minutes", 15)

	v.SetDefault("evaluator.interval", "30s")
	v.SetDefault("evaluator.sample_timeout", "5s")

	v.SetDefault("escalation.dispatch_timeout", "10s")

	v.SetDefault("services.config_url", "http://localhost:8091")
	v.SetDefault("services.vets_url", "http://localhost:8092")
	v.SetDefault("services.metrics_url", "")
	v.SetDefault("services.gateway_url", "http://localhost:8093")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config
	v.SetEnvPrefix("TRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
