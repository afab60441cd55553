package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Mail         MailConfig         `mapstructure:"mail"`
	Notification NotificationConfig `mapstructure:"notification"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// StatementTimeout bounds each bundle lookup server-side. 0 disables it.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationsPath   string        `mapstructure:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig configures the payment gateway (capture API + webhook secret).
type GatewayConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	KeyID              string        `mapstructure:"key_id"`
	KeySecret          string        `mapstructure:"key_secret"`
	WebhookSecret      string        `mapstructure:"webhook_secret"`
	SettlementCurrency string        `mapstructure:"settlement_currency"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // per-request deadline
	// DedupeTTL > 0 suppresses repeated payment.captured deliveries with the
	// same event id for that long. 0 disables suppression.
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

type MailConfig struct {
	Transport string     `mapstructure:"transport"` // smtp, nats
	From      string     `mapstructure:"from"`
	SMTP      SMTPConfig `mapstructure:"smtp"`
	NATS      NATSConfig `mapstructure:"nats"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"` // caps one send even without a request deadline
}

// Addr returns the SMTP server address string.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// NotificationConfig holds the confirmation template location and branding.
type NotificationConfig struct {
	TemplatePath string `mapstructure:"template_path"` // empty = embedded default
	StoreName    string `mapstructure:"store_name"`
	LogoURL      string `mapstructure:"logo_url"`
	StoreURL     string `mapstructure:"store_url"`
	SupportEmail string `mapstructure:"support_email"`
}

type AdminConfig struct {
	PasswordHash string        `mapstructure:"password_hash"` // Argon2id encoded hash
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	SessionStore string        `mapstructure:"session_store"` // memory, redis
	Issuer       string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: OWS_ (Order Webhook Service).
// Nested keys use underscore: OWS_DATABASE_HOST, OWS_GATEWAY_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "storefront")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.statement_timeout", "5s")
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("gateway.key_id", "")
	v.SetDefault("gateway.key_secret", "")
	v.SetDefault("gateway.webhook_secret", "")
	v.SetDefault("gateway.settlement_currency", "INR")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("webhook.timeout", "15s")
	v.SetDefault("webhook.dedupe_ttl", "0s")
	v.SetDefault("mail.transport", "smtp")
	v.SetDefault("mail.from", "orders@localhost")
	v.SetDefault("mail.smtp.host", "localhost")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.timeout", "15s")
	v.SetDefault("mail.nats.url", "nats://localhost:4222")
	v.SetDefault("mail.nats.subject", "mail.outbound")
	v.SetDefault("notification.template_path", "")
	v.SetDefault("notification.store_name", "Our Store")
	v.SetDefault("admin.session_ttl", "12h")
	v.SetDefault("admin.session_store", "memory")
	v.SetDefault("admin.issuer", "order-webhook-service")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: OWS_DATABASE_HOST -> database.host
	v.SetEnvPrefix("OWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings the webhook receiver cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Gateway.WebhookSecret == "" {
		errs = append(errs, errors.New("gateway.webhook_secret is required"))
	}
	if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
		errs = append(errs, errors.New("gateway.key_id and gateway.key_secret are required"))
	}
	if c.Admin.JWTSecret == "" {
		errs = append(errs, errors.New("admin.jwt_secret is required"))
	}
	if c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.password_hash is required"))
	}
	switch c.Mail.Transport {
	case "smtp", "nats":
	default:
		errs = append(errs, fmt.Errorf("mail.transport %q is not supported", c.Mail.Transport))
	}
	switch c.Admin.SessionStore {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("admin.session_store %q is not supported", c.Admin.SessionStore))
	}
	return errors.Join(errs...)
}
