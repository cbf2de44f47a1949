package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushq/onboard/internal/db"
	"github.com/campushq/onboard/internal/notify"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Database       db.Config
	HTTP           HTTPConfig
	Auth           AuthConfig
	AMQP           notify.AMQPConfig
	MigrationsPath string
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AuthConfig holds the JWT verification settings.
type AuthConfig struct {
	JWTSecret string
}

// Load reads config.yaml from the given path, with environment overrides
// prefixed ONBOARD_ (e.g. ONBOARD_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database: db.DefaultConfig(),
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    60 * time.Second,
		},
		MigrationsPath: "./migrations",
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("ONBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("http.addr")
	v.BindEnv("auth.jwt_secret")
	v.BindEnv("amqp.url")
	v.BindEnv("amqp.exchange")
	v.BindEnv("amqp.routing_key")
	v.BindEnv("migrations.path")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Info().Msg("no config.yaml found, using defaults and env vars")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("loaded config file")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("http.addr") {
		cfg.HTTP.Addr = v.GetString("http.addr")
	}
	if v.IsSet("http.allowed_origins") {
		cfg.HTTP.AllowedOrigins = v.GetStringSlice("http.allowed_origins")
	}
	if v.IsSet("auth.jwt_secret") {
		cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	}
	if v.IsSet("amqp.url") {
		cfg.AMQP.URL = v.GetString("amqp.url")
	}
	if v.IsSet("amqp.exchange") {
		cfg.AMQP.Exchange = v.GetString("amqp.exchange")
	}
	if v.IsSet("amqp.routing_key") {
		cfg.AMQP.RoutingKey = v.GetString("amqp.routing_key")
	}
	if v.IsSet("migrations.path") {
		cfg.MigrationsPath = v.GetString("migrations.path")
	}

	if cfg.Auth.JWTSecret == "" {
		return cfg, fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.AMQP.URL != "" {
		if cfg.AMQP.Exchange == "" {
			cfg.AMQP.Exchange = "onboard.notifications"
		}
		if cfg.AMQP.RoutingKey == "" {
			cfg.AMQP.RoutingKey = "member.welcome"
		}
	}

	return cfg, nil
}
