package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"vendas-backend/utils"
)

type Config struct {
	App       AppConfig       `koanf:"app" validate:"required"`
	Server    ServerConfig    `koanf:"server" validate:"required"`
	Database  DatabaseConfig  `koanf:"database" validate:"required"`
	Auth      AuthConfig      `koanf:"auth" validate:"required"`
	Log       LogConfig       `koanf:"log" validate:"required"`
	Redis     RedisConfig     `koanf:"redis"`
	Reminders RemindersConfig `koanf:"reminders"`
	Twilio    TwilioConfig    `koanf:"twilio"`
	Storage   StorageConfig   `koanf:"storage"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type AppConfig struct {
	Name        string `koanf:"name" validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=development production test"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required"`
	SlowRequest     time.Duration `koanf:"slow_request"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=postgres mysql sqlite"`
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret" validate:"required"`
	Issuer     string        `koanf:"issuer"`
	AccessTTL  time.Duration `koanf:"access_ttl" validate:"required"`
	RefreshTTL time.Duration `koanf:"refresh_ttl" validate:"required"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

type LogConfig struct {
	Level  string        `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path" validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type RemindersConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule" validate:"required_if=Enabled true"`
}

type TwilioConfig struct {
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
	From       string `koanf:"from"`
}

type StorageConfig struct {
	Endpoint      string `koanf:"endpoint"`
	Region        string `koanf:"region"`
	Bucket        string `koanf:"bucket"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	PublicBaseURL string `koanf:"public_base_url"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint" validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "vendas-backend",
		"app.environment": "development",

		"server.port":             8080,
		"server.allowed_origins":  []string{"http://localhost:3000", "http://localhost:5173"},
		"server.shutdown_timeout": "30s",
		"server.slow_request":     "200ms",

		"database.driver":            "postgres",
		"database.max_open_conns":    25,
		"database.max_idle_conns":    25,
		"database.conn_max_lifetime": "5m",
		"database.auto_migrate":      true,

		"auth.access_ttl":  "24h",
		"auth.refresh_ttl": "168h",
		"auth.bcrypt_cost": 14,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/vendas.log",
		"log.file.max_size":    100,
		"log.file.max_backups": 3,
		"log.file.max_age":     28,
		"log.file.compress":    true,

		"reminders.enabled":  false,
		"reminders.schedule": "@every 1m",

		"storage.region": "auto",

		"telemetry.enabled":       false,
		"telemetry.service_name":  "vendas-backend",
		"telemetry.sampling_rate": 1.0,
	}
}

// legacyEnv maps the plain variables of earlier deployments onto config keys.
func legacyEnv() map[string]any {
	out := map[string]any{}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			out["server.port"] = port
		}
	}
	if v := os.Getenv("DB_URL"); v != "" {
		out["database.url"] = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		out["database.driver"] = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		out["auth.jwt_secret"] = v
	}
	if v := os.Getenv("JWT_EXPIRY_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			out["auth.access_ttl"] = (time.Duration(h) * time.Hour).String()
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		out["redis.addr"] = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		out["twilio.account_sid"] = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		out["twilio.auth_token"] = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		out["twilio.from"] = v
	}
	return out
}

// Load resolves configuration, lowest to highest precedence: defaults,
// YAML file (path or $CONFIG_FILE), legacy variables, APP_* variables.
// Nested keys use a double underscore: APP_DATABASE__MAX_OPEN_CONNS.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	if err := k.Load(confmap.Provider(legacyEnv(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading legacy env: %w", err)
	}

	err := k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

func (l LogConfig) Settings() utils.LogSettings {
	return utils.LogSettings{
		Level:  l.Level,
		Format: l.Format,
		File: utils.LogFileSettings{
			Enabled:    l.File.Enabled,
			Path:       l.File.Path,
			MaxSizeMB:  l.File.MaxSizeMB,
			MaxBackups: l.File.MaxBackups,
			MaxAgeDays: l.File.MaxAgeDays,
			Compress:   l.File.Compress,
		},
	}
}

func (a AuthConfig) JWT() utils.JWTSettings {
	return utils.JWTSettings{
		Secret:     a.JWTSecret,
		Issuer:     a.Issuer,
		AccessTTL:  a.AccessTTL,
		RefreshTTL: a.RefreshTTL,
	}
}

func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}
