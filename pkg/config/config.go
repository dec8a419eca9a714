package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	"github.com/spf13/viper"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Firewall   FirewallConfig   `mapstructure:"firewall"`
	Sessions   SessionsConfig   `mapstructure:"sessions"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Downstream DownstreamConfig `mapstructure:"downstream"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host      string     `mapstructure:"host"`
	Port      int        `mapstructure:"port"`
	BodyLimit int        `mapstructure:"body_limit"`
	TLS       *TLSConfig `mapstructure:"tls"`
}

type FirewallConfig struct {
	Tier1      TierConfig       `mapstructure:"tier1"`
	Tier2      TierConfig       `mapstructure:"tier2"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	// HTTP tunes the shared client used for model provider calls.
	HTTP HTTPClientConfig `mapstructure:"http"`
	// PromptsDir overrides the embedded prompt templates when set.
	PromptsDir string `mapstructure:"prompts_dir"`
}

type TierConfig struct {
	Provider     string                 `mapstructure:"provider"`
	Model        string                 `mapstructure:"model"`
	BaseURL      string                 `mapstructure:"base_url"`
	APIKey       string                 `mapstructure:"api_key"`
	MaxTokens    int                    `mapstructure:"max_tokens"`
	Temperature  *float64               `mapstructure:"temperature"`
	SystemPrompt string                 `mapstructure:"system_prompt"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	Template     string                 `mapstructure:"template"`
	Options      map[string]interface{} `mapstructure:"options"`
	AWS          *AWSConfig             `mapstructure:"aws"`
	Azure        *AzureConfig           `mapstructure:"azure"`
}

type AWSConfig struct {
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
	UseRole      bool   `mapstructure:"use_role"`
	RoleARN      string `mapstructure:"role_arn"`
}

type AzureConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIVersion  string `mapstructure:"api_version"`
	UseIdentity bool   `mapstructure:"use_identity"`
}

type EscalationConfig struct {
	WindowSize     int `mapstructure:"window_size"`
	AlertThreshold int `mapstructure:"alert_threshold"`
}

type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type HTTPClientConfig struct {
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	InsecureSkipVerify  bool          `mapstructure:"insecure_skip_verify"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	MaxIdleConnDuration time.Duration `mapstructure:"max_idle_conn_duration"`
	ReadBufferSize      int           `mapstructure:"read_buffer_size"`
	WriteBufferSize     int           `mapstructure:"write_buffer_size"`
	MaxResponseBodySize int           `mapstructure:"max_response_body_size"`
	UserAgent           string        `mapstructure:"user_agent"`
}

type SessionsConfig struct {
	Store           string        `mapstructure:"store"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelemetryConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	// RingSize bounds the in-memory decision log used without a database.
	RingSize int `mapstructure:"ring_size"`
	// RedactPrompts masks secrets and personal data in stored excerpts.
	RedactPrompts bool                       `mapstructure:"redact_prompts"`
	Exporters     []telemetry.ExporterConfig `mapstructure:"exporters"`
}

type DownstreamConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TierConfig `mapstructure:",squash"`
}

type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EnableLatency     bool `mapstructure:"enable_latency"`
	EnableTierLatency bool `mapstructure:"enable_tier_latency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.body_limit", 1024*1024)

	v.SetDefault("firewall.tier1.provider", "openai")
	v.SetDefault("firewall.tier1.model", "NVFP4/Qwen3-235B-A22B-Instruct-2507-FP4")
	v.SetDefault("firewall.tier1.base_url", "https://hackeurope.crusoecloud.com/v1/")
	v.SetDefault("firewall.tier1.api_key", "")
	v.SetDefault("firewall.tier1.max_tokens", 10)
	v.SetDefault("firewall.tier1.timeout", 2*time.Second)
	v.SetDefault("firewall.tier1.template", "tier1_v1")
	v.SetDefault("firewall.tier1.options", map[string]interface{}{"disable_thinking": true})

	v.SetDefault("firewall.tier2.provider", "anthropic")
	v.SetDefault("firewall.tier2.model", "claude-haiku-4-5-20251001")
	v.SetDefault("firewall.tier2.base_url", "")
	v.SetDefault("firewall.tier2.api_key", "")
	v.SetDefault("firewall.tier2.max_tokens", 350)
	v.SetDefault("firewall.tier2.timeout", 15*time.Second)
	v.SetDefault("firewall.tier2.template", "tier2_v1")

	v.SetDefault("firewall.escalation.window_size", 5)
	v.SetDefault("firewall.escalation.alert_threshold", 3)
	v.SetDefault("firewall.breaker.enabled", true)
	v.SetDefault("firewall.breaker.max_failures", 5)
	v.SetDefault("firewall.breaker.open_timeout", 30*time.Second)
	v.SetDefault("firewall.prompts_dir", "")
	v.SetDefault("firewall.http.read_timeout", 0)
	v.SetDefault("firewall.http.write_timeout", 0)
	v.SetDefault("firewall.http.insecure_skip_verify", false)
	v.SetDefault("firewall.http.max_conns_per_host", 1024)
	v.SetDefault("firewall.http.max_idle_conn_duration", 120*time.Second)
	v.SetDefault("firewall.http.read_buffer_size", 8192)
	v.SetDefault("firewall.http.write_buffer_size", 8192)
	v.SetDefault("firewall.http.max_response_body_size", 4*1024*1024)
	v.SetDefault("firewall.http.user_agent", "")

	v.SetDefault("sessions.store", SessionStoreMemory)
	v.SetDefault("sessions.ttl", time.Hour)
	v.SetDefault("sessions.max_entries", 100000)
	v.SetDefault("sessions.cleanup_interval", time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "promptguard")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("telemetry.workers", 2)
	v.SetDefault("telemetry.queue_size", 1000)
	v.SetDefault("telemetry.ring_size", 1000)
	v.SetDefault("telemetry.redact_prompts", true)
	v.SetDefault("telemetry.exporters", []map[string]interface{}{{"name": "decision_log"}})

	v.SetDefault("downstream.enabled", false)
	v.SetDefault("downstream.provider", "anthropic")
	v.SetDefault("downstream.model", "claude-haiku-4-5-20251001")
	v.SetDefault("downstream.api_key", "")
	v.SetDefault("downstream.max_tokens", 500)
	v.SetDefault("downstream.timeout", 30*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_tier_latency", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads config.yaml from configPath (then ./config and .), overlays
// environment variables (firewall.tier1.api_key -> FIREWALL_TIER1_API_KEY)
// and validates the result. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyEnvFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvFallbacks(cfg *Config) {
	if cfg.Firewall.Tier1.APIKey == "" {
		cfg.Firewall.Tier1.APIKey = firstEnv("CRUSOE_API_KEY", "OPENAI_API_KEY")
	}
	if cfg.Firewall.Tier2.APIKey == "" {
		cfg.Firewall.Tier2.APIKey = firstEnv("CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	}
	if cfg.Downstream.APIKey == "" {
		cfg.Downstream.APIKey = firstEnv("CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) Validate() error {
	esc := c.Firewall.Escalation
	if esc.WindowSize < 1 {
		return fmt.Errorf("firewall.escalation.window_size must be >= 1, got %d", esc.WindowSize)
	}
	if esc.AlertThreshold < 1 || esc.AlertThreshold > esc.WindowSize {
		return fmt.Errorf("firewall.escalation.alert_threshold must be between 1 and %d, got %d",
			esc.WindowSize, esc.AlertThreshold)
	}
	switch c.Sessions.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("sessions.store must be %q or %q, got %q",
			SessionStoreMemory, SessionStoreRedis, c.Sessions.Store)
	}
	if c.Firewall.Tier1.Provider == "" || c.Firewall.Tier2.Provider == "" {
		return errors.New("firewall tier providers are required")
	}
	for _, exp := range c.Telemetry.Exporters {
		if exp.Name == "" {
			return errors.New("telemetry exporter name is required")
		}
	}
	return nil
}
