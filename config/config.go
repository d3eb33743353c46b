package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	NotchPay NotchPayConfig
	Store    StoreConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Redis    RedisConfig
	Reaper   ReaperConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// NotchPayConfig holds the payment provider credentials.
type NotchPayConfig struct {
	BaseURL       string
	PublicKey     string
	PrivateKey    string
	WebhookSecret string
	Timeout       time.Duration
}

type StoreConfig struct {
	Currency        string
	CallbackBaseURL string // e.g. https://api.example.com - callback is CallbackBaseURL + /api/payments/callback
	FrontendURL     string
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type AdminConfig struct {
	Email    string
	Password string
}

// RedisConfig is optional; an empty Addr disables the idempotency cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ReaperConfig struct {
	Interval   time.Duration
	PendingTTL time.Duration
	BatchSize  int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", "http://localhost:5173")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", 60*time.Second)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("notchpay.base_url", "https://api.notchpay.co")
	v.SetDefault("notchpay.public_key", "")
	v.SetDefault("notchpay.private_key", "")
	v.SetDefault("notchpay.webhook_secret", "")
	v.SetDefault("notchpay.timeout", 30*time.Second)

	v.SetDefault("store.currency", "XAF")
	v.SetDefault("store.callback_base_url", "http://localhost:5000")
	v.SetDefault("store.frontend_url", "http://localhost:5173")

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", 12*time.Hour)
	v.SetDefault("jwt.issuer", "gasdepot")

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("reaper.interval", 5*time.Minute)
	v.SetDefault("reaper.pending_ttl", 60*time.Minute)
	v.SetDefault("reaper.batch_size", 100)
}

// Load reads defaults, an optional YAML file named by CONFIG_FILE, then environment
// variables (server.port -> SERVER_PORT, notchpay.public_key -> NOTCHPAY_PUBLIC_KEY).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Short aliases used by existing deployments.
	if dsn := v.GetString("database_url"); dsn != "" && v.GetString("database.dsn") == "" {
		v.Set("database.dsn", dsn)
	}
	if port := v.GetString("port"); port != "" {
		v.Set("server.port", port)
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			Env:            v.GetString("server.env"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
			RateLimit:      v.GetInt("server.rate_limit"),
			RateWindow:     v.GetDuration("server.rate_window"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		NotchPay: NotchPayConfig{
			BaseURL:       v.GetString("notchpay.base_url"),
			PublicKey:     v.GetString("notchpay.public_key"),
			PrivateKey:    v.GetString("notchpay.private_key"),
			WebhookSecret: v.GetString("notchpay.webhook_secret"),
			Timeout:       v.GetDuration("notchpay.timeout"),
		},
		Store: StoreConfig{
			Currency:        v.GetString("store.currency"),
			CallbackBaseURL: strings.TrimRight(v.GetString("store.callback_base_url"), "/"),
			FrontendURL:     strings.TrimRight(v.GetString("store.frontend_url"), "/"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("jwt.access_secret"),
			AccessExpiry: v.GetDuration("jwt.access_expiry"),
			Issuer:       v.GetString("jwt.issuer"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Reaper: ReaperConfig{
			Interval:   v.GetDuration("reaper.interval"),
			PendingTTL: v.GetDuration("reaper.pending_ttl"),
			BatchSize:  v.GetInt("reaper.batch_size"),
		},
	}, nil
}

var ErrMissingDSN = errors.New("DATABASE_DSN is required")

// Validate returns non-fatal warnings for missing gateway settings and an error
// when the datastore cannot be configured.
func (c *Config) Validate() (warnings []string, err error) {
	if c.NotchPay.PublicKey == "" {
		warnings = append(warnings, "NOTCHPAY_PUBLIC_KEY is not set; payment initialization will fail")
	}
	if c.NotchPay.PrivateKey == "" {
		warnings = append(warnings, "NOTCHPAY_PRIVATE_KEY is not set")
	}
	if c.NotchPay.WebhookSecret == "" {
		warnings = append(warnings, "NOTCHPAY_WEBHOOK_SECRET is not set; signed webhooks will be rejected")
	}
	if c.Database.DSN == "" {
		return warnings, ErrMissingDSN
	}
	return warnings, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
