// Package config handles loading and validation of application configuration
// from environment variables and an optional config file.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	JwtSecretKey   string      `mapstructure:"JWT_SECRET_KEY" yaml:"jwt_secret_key"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and
// other URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// ConnectionString returns a keyword/value pgx connection string.
func (c *DatabaseConfig) ConnectionString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Database DatabaseConfig `mapstructure:"DB" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
}

// LoadConfig reads configuration from environment variables (prefixed
// SERVER_, DB_, REDIS_) layered over an optional config/config.yaml file.
func LoadConfig() (*Config, error) {
	log := logger.GetLogger()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debugw("No config file found, relying on environment variables")
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"dbHost", cfg.Database.Host,
	)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", string(EnvDevelopment))
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DB.HOST", "localhost")
	v.SetDefault("DB.PORT", 5432)
	v.SetDefault("DB.USER", "postgres")
	v.SetDefault("DB.NAME", "trekledger")
	v.SetDefault("DB.MAX_CONNECTIONS", 10)
	v.SetDefault("DB.SSL_MODE", "disable")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.DB", 0)
}

// bindEnvVars maps the flat env variable names onto the nested config keys so
// both SERVER_PORT and a yaml `server.port` resolve to the same value.
func bindEnvVars(v *viper.Viper) {
	bindings := map[string]string{
		"SERVER.ENVIRONMENT":    "ENVIRONMENT",
		"SERVER.PORT":           "PORT",
		"SERVER.JWT_SECRET_KEY": "JWT_SECRET_KEY",
		"SERVER.ALLOWED_ORIGINS": "ALLOWED_ORIGINS",
		"DB.HOST":               "DB_HOST",
		"DB.PORT":               "DB_PORT",
		"DB.USER":               "DB_USER",
		"DB.PASSWORD":           "DB_PASSWORD",
		"DB.NAME":               "DB_NAME",
		"DB.SSL_MODE":           "DB_SSL_MODE",
		"REDIS.ADDRESS":         "REDIS_ADDRESS",
		"REDIS.PASSWORD":        "REDIS_PASSWORD",
		"REDIS.DB":              "REDIS_DB",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			logger.GetLogger().Warnw("Failed to bind env var", "key", key, "env", env, "error", err)
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s", c.Server.Environment)
	}
	if c.Server.Environment == EnvProduction {
		if len(c.Server.JwtSecretKey) < minJWTLength {
			return fmt.Errorf("JWT_SECRET_KEY must be at least %d characters in production", minJWTLength)
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	}
	return nil
}
