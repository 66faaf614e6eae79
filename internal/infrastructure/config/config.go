// Package config loads service settings from the environment and an
// optional YAML file named by INTAKE_CONFIG.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileEnv names the optional YAML config file.
const ConfigFileEnv = "INTAKE_CONFIG"

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// Migrations is a golang-migrate source URL; empty skips migrations.
	Migrations string
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ClientID      string
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type AdminConfig struct {
	Password      string
	JWTSecret     string
	JWTIssuer     string
	SessionTTL    time.Duration
	PrivateKeyPEM string
	PublicKeyPEM  string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

type Config struct {
	GRPCPort    int
	HTTPPort    int
	ServiceName string
	Store       string
	TimeZone    string
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Tracing     TracingConfig
	TLS         TLSConfig
}

// Load reads defaults, then INTAKE_CONFIG (if set), then environment
// variables. Environment keys are the upper-cased dotted keys with dots
// replaced by underscores, e.g. DB_PASSWORD or ADMIN_PASSWORD.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("intake_config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := Config{
		GRPCPort:    v.GetInt("grpc_port"),
		HTTPPort:    v.GetInt("http_port"),
		ServiceName: v.GetString("service_name"),
		Store:       strings.ToLower(v.GetString("store")),
		TimeZone:    v.GetString("timezone"),
		DB: DatabaseConfig{
			Host:       v.GetString("db.host"),
			Port:       v.GetInt("db.port"),
			User:       v.GetString("db.user"),
			Password:   v.GetString("db.password"),
			Name:       v.GetString("db.name"),
			SSLMode:    v.GetString("db.sslmode"),
			MaxConns:   v.GetInt32("db.max_conns"),
			MinConns:   v.GetInt32("db.min_conns"),
			Migrations: v.GetString("db.migrations"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(v.GetString("kafka.brokers")),
			Topic:         v.GetString("kafka.topic"),
			ClientID:      v.GetString("kafka.client_id"),
			TLS:           v.GetBool("kafka.tls"),
			SASLMechanism: v.GetString("kafka.sasl.mechanism"),
			SASLUsername:  v.GetString("kafka.sasl.username"),
			SASLPassword:  v.GetString("kafka.sasl.password"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Admin: AdminConfig{
			Password:      v.GetString("admin.password"),
			JWTSecret:     v.GetString("admin.jwt_secret"),
			JWTIssuer:     v.GetString("admin.jwt_issuer"),
			SessionTTL:    v.GetDuration("admin.session_ttl"),
			PrivateKeyPEM: v.GetString("admin.private_key_pem"),
			PublicKeyPEM:  v.GetString("admin.public_key_pem"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("ratelimit.rps"),
			Burst:             v.GetInt("ratelimit.burst"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Tracing: TracingConfig{
			Endpoint:    v.GetString("otel.endpoint"),
			SampleRatio: v.GetFloat64("otel.sample_ratio"),
		},
		TLS: TLSConfig{
			CertFile: v.GetString("tls.cert_file"),
			KeyFile:  v.GetString("tls.key_file"),
			CAFile:   v.GetString("tls.ca_file"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc_port", 9087)
	v.SetDefault("http_port", 8087)
	v.SetDefault("service_name", "loan-intake")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("timezone", "Asia/Kolkata")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "intake")
	v.SetDefault("db.name", "loan_intake")
	v.SetDefault("db.sslmode", "require")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("db.migrations", "file://migrations")

	v.SetDefault("kafka.topic", "intake.loan-applications")
	v.SetDefault("kafka.client_id", "loan-intake")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("admin.jwt_issuer", "loan-intake")
	v.SetDefault("admin.session_ttl", 8*time.Hour)

	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("otel.sample_ratio", 1.0)
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var errs []error
	if c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required"))
	}
	switch c.Store {
	case StorePostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres store"))
		}
		if c.DB.MaxConns > 0 && c.DB.MinConns > c.DB.MaxConns {
			errs = append(errs, fmt.Errorf("DB_MIN_CONNS %d exceeds DB_MAX_CONNS %d", c.DB.MinConns, c.DB.MaxConns))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE %q", c.Store))
	}
	if c.Admin.JWTSecret == "" && c.Admin.PrivateKeyPEM == "" {
		errs = append(errs, errors.New("ADMIN_JWT_SECRET or ADMIN_PRIVATE_KEY_PEM is required"))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the time zone used for date windows and age checks.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
