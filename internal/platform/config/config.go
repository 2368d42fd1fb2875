package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"payos/internal/pkg/errors"
)

const (
	DefaultBaseURL    = "https://api-merchant.payos.vn"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2
)

type Config struct {
	PayOS     PayOSConfig     `mapstructure:"payos"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PayOSConfig holds the merchant credentials and client tuning.
type PayOSConfig struct {
	ClientID    string        `mapstructure:"client_id"`
	APIKey      string        `mapstructure:"api_key"`
	ChecksumKey string        `mapstructure:"checksum_key"`
	PartnerCode string        `mapstructure:"partner_code"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	LogLevel    string        `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
	MigrationsDir  string `mapstructure:"migrations_dir"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// AdminConfig is the single operator allowed to use the admin API.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type RateLimitConfig struct {
	WebhookPerMinute int `mapstructure:"webhook_per_minute"`
	LoginPerMinute   int `mapstructure:"login_per_minute"`
	AdminPerMinute   int `mapstructure:"admin_per_minute"`
}

type WebhooksConfig struct {
	WorkerCount    int           `mapstructure:"worker_count"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	DeliverTimeout time.Duration `mapstructure:"deliver_timeout"`
}

type WorkersConfig struct {
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	ReconcileAfter    time.Duration `mapstructure:"reconcile_after"`
	RetryInterval     time.Duration `mapstructure:"retry_interval"`
	PruneInterval     time.Duration `mapstructure:"prune_interval"`
	IdempotencyTTL    time.Duration `mapstructure:"idempotency_ttl"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultPayOS returns a client config with the gateway defaults and no credentials.
func DefaultPayOS() PayOSConfig {
	return PayOSConfig{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate checks that the three merchant credentials are present.
func (c PayOSConfig) Validate() error {
	switch {
	case c.ClientID == "":
		return errors.New(errors.KindConfiguration, "client_id is required: pass it explicitly or set PAYOS_CLIENT_ID")
	case c.APIKey == "":
		return errors.New(errors.KindConfiguration, "api_key is required: pass it explicitly or set PAYOS_API_KEY")
	case c.ChecksumKey == "":
		return errors.New(errors.KindConfiguration, "checksum_key is required: pass it explicitly or set PAYOS_CHECKSUM_KEY")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Unmarshal only sees env overrides for keys viper already knows about.
	for _, k := range []string{"payos.client_id", "payos.api_key", "payos.checksum_key", "payos.partner_code", "jwt.secret", "admin.username", "admin.password_hash"} {
		v.SetDefault(k, "")
	}
	v.SetDefault("payos.base_url", DefaultBaseURL)
	v.SetDefault("payos.timeout", DefaultTimeout)
	v.SetDefault("payos.max_retries", DefaultMaxRetries)
	v.SetDefault("payos.log", "warn")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.url", "file:data/payos.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)

	v.SetDefault("rate_limit.webhook_per_minute", 600)
	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("rate_limit.admin_per_minute", 300)

	v.SetDefault("webhooks.worker_count", 4)
	v.SetDefault("webhooks.retry_attempts", 5)
	v.SetDefault("webhooks.deliver_timeout", 10*time.Second)

	v.SetDefault("workers.reconcile_interval", 5*time.Minute)
	v.SetDefault("workers.reconcile_after", 10*time.Minute)
	v.SetDefault("workers.retry_interval", 5*time.Minute)
	v.SetDefault("workers.prune_interval", time.Hour)
	v.SetDefault("workers.idempotency_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at path. Environment variables such as
// PAYOS_CLIENT_ID or SERVER_PORT override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadPayOSFromEnv builds the client config from PAYOS_* variables only.
func LoadPayOSFromEnv() (PayOSConfig, error) {
	cfg := DefaultPayOS()
	cfg.ClientID = os.Getenv("PAYOS_CLIENT_ID")
	cfg.APIKey = os.Getenv("PAYOS_API_KEY")
	cfg.ChecksumKey = os.Getenv("PAYOS_CHECKSUM_KEY")
	cfg.PartnerCode = os.Getenv("PAYOS_PARTNER_CODE")
	cfg.LogLevel = os.Getenv("PAYOS_LOG")
	if base := os.Getenv("PAYOS_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	if raw := os.Getenv("PAYOS_TIMEOUT"); raw != "" {
		d, err := parseSeconds(raw)
		if err != nil {
			return cfg, errors.Wrap(errors.KindConfiguration, "invalid PAYOS_TIMEOUT", err)
		}
		cfg.Timeout = d
	}
	if raw := os.Getenv("PAYOS_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, errors.Wrap(errors.KindConfiguration, "invalid PAYOS_MAX_RETRIES", err)
		}
		cfg.MaxRetries = n
	}
	return cfg, cfg.Validate()
}

// parseSeconds accepts "30", "2.5" or a Go duration like "45s".
func parseSeconds(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q", raw)
	}
	return time.Duration(f * float64(time.Second)), nil
}
