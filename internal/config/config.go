// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/dandantas/saltstore/internal/database"
)

// MongoEnv is one configuration namespace for the store connection.
// URI and Host are mutually exclusive; the resolver enforces this per call.
type MongoEnv struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	DB       string `env:"DB"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	URI      string `env:"URI"`
	Indexes  bool   `env:"INDEXES"`
}

// Config holds all application configuration.
type Config struct {
	// Mongo is the default configuration namespace; AltMongo is the
	// "alternative" profile selectable per call.
	Mongo    MongoEnv `envPrefix:"MONGO_"`
	AltMongo MongoEnv `envPrefix:"ALT_MONGO_"`

	// Tier selects the driver capability level: "modern" or "legacy".
	Tier string `env:"MONGO_TIER" envDefault:"modern"`

	// ConnectTimeout bounds connection establishment per operation.
	ConnectTimeout time.Duration `env:"MONGO_TIMEOUT" envDefault:"10s"`

	// UniqueJid appends a nonce to generated job ids.
	UniqueJid bool `env:"UNIQUE_JID" envDefault:"false"`

	// Retention sweeper; disabled unless RETENTION_ENABLED is set.
	RetentionEnabled  bool          `env:"RETENTION_ENABLED" envDefault:"false"`
	RetentionKeep     time.Duration `env:"RETENTION_KEEP" envDefault:"24h"`
	RetentionSchedule string        `env:"RETENTION_SCHEDULE" envDefault:"0 * * * *"`

	// Logging configuration.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// StoreOptions converts the default namespace into resolver options.
func (c *Config) StoreOptions() database.Options {
	return toOptions(c.Mongo)
}

// Profiles returns the alternative configuration namespaces keyed by
// profile name.
func (c *Config) Profiles() map[string]database.Options {
	return map[string]database.Options{
		"alternative": toOptions(c.AltMongo),
	}
}

// DriverTier returns the configured capability tier.
func (c *Config) DriverTier() database.Tier {
	return database.ParseTier(c.Tier)
}

func toOptions(m MongoEnv) database.Options {
	return database.Options{
		Host:     m.Host,
		Port:     m.Port,
		DB:       m.DB,
		User:     m.User,
		Password: m.Password,
		URI:      m.URI,
		Indexes:  m.Indexes,
	}
}
