package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend mode values accepted by QUEGATE_BACKEND.
const (
	BackendAuto   = "auto"
	BackendNative = "native"
	BackendScript = "script"
	BackendMemory = "memory"
)

type Config struct {
	// Broker access
	BrokerHost       string `envconfig:"BROKER_HOST" default:"."`
	BrokerPort       int    `envconfig:"BROKER_PORT" default:"1801"`
	Backend          string `envconfig:"BACKEND" default:"auto"`
	ConnectTimeoutMS int    `envconfig:"CONNECT_TIMEOUT_MS" default:"15000"`
	RetryAttempts    int    `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryDelayMS     int    `envconfig:"RETRY_DELAY_MS" default:"2000"`
	ProbeQueue       string `envconfig:"PROBE_QUEUE" default:"quegate-probe"`
	ReceiveTimeoutMS int    `envconfig:"RECEIVE_TIMEOUT_MS" default:"5000"`

	// Scripting host
	ScriptHost      string `envconfig:"SCRIPT_HOST" default:"powershell"`
	ScriptTimeoutMS int    `envconfig:"SCRIPT_TIMEOUT_MS" default:"30000"`

	// Simulation
	MemoryQueueDepth int `envconfig:"MEMORY_QUEUE_DEPTH" default:"10000"`

	// Cache store (empty path disables persistence)
	DBPath string `envconfig:"DB_PATH" default:"quegate.db"`

	// Alerts
	WebhookURL       string `envconfig:"WEBHOOK_URL" default:""`
	WebhookTimeoutMS int    `envconfig:"WEBHOOK_TIMEOUT_MS" default:"5000"`
	AlertDedupMS     int    `envconfig:"ALERT_DEDUP_MS" default:"60000"`

	// Background schedules (cron specs)
	ProbeSchedule        string `envconfig:"PROBE_SCHEDULE" default:"@every 30s"`
	ReconcileSchedule    string `envconfig:"RECONCILE_SCHEDULE" default:"@every 5m"`
	JournalRetentionDays int    `envconfig:"JOURNAL_RETENTION_DAYS" default:"7"`

	// Web API
	EnableWebAPI  bool   `envconfig:"ENABLE_WEB_API" default:"true"`
	EnableSwagger bool   `envconfig:"ENABLE_SWAGGER" default:"true"`
	WebPort       string `envconfig:"WEB_PORT" default:"8080"`
	APIPrefix     string `envconfig:"API_PREFIX" default:"/api"`
	SwaggerPrefix string `envconfig:"SWAGGER_PREFIX" default:"/swagger"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Version string `ignored:"true"`
}

// LoadConfig loads configuration from the environment with .env fallback.
// Priority: environment variables > .env file > default values.
func LoadConfig(version string) (*Config, error) {
	// Ignore a missing .env file
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("quegate", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.Version = version

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendAuto, BackendNative, BackendScript, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid QUEGATE_BACKEND %q: want auto, native, script or memory", cfg.Backend)
	}
	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("QUEGATE_RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}
	return &cfg, nil
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c *Config) ReceiveTimeout() time.Duration {
	return time.Duration(c.ReceiveTimeoutMS) * time.Millisecond
}

func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutMS) * time.Millisecond
}

func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutMS) * time.Millisecond
}

func (c *Config) AlertDedupWindow() time.Duration {
	return time.Duration(c.AlertDedupMS) * time.Millisecond
}

// JournalRetention is how long journal rows survive before the
// reconciliation pass prunes them. Zero or negative disables pruning.
func (c *Config) JournalRetention() time.Duration {
	return time.Duration(c.JournalRetentionDays) * 24 * time.Hour
}
