package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig   `yaml:"store" mapstructure:"store"`
	TMDB      TMDBConfig    `yaml:"tmdb" mapstructure:"tmdb"`
	Bechdel   BechdelConfig `yaml:"bechdel" mapstructure:"bechdel"`
	Seed      SeedConfig    `yaml:"seed" mapstructure:"seed"`
	Ingest    IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Fetch     FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Roles     RolesConfig   `yaml:"roles" mapstructure:"roles"`
	RolesFile string        `yaml:"roles_file" mapstructure:"roles_file"`
	Server    ServerConfig  `yaml:"server" mapstructure:"server"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// TMDBConfig holds metadata catalog API settings.
type TMDBConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Language  string  `yaml:"language" mapstructure:"language"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BechdelConfig holds rating catalog API settings.
type BechdelConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SeedConfig selects the cohort.
type SeedConfig struct {
	Year   int    `yaml:"year" mapstructure:"year"`
	Limit  int    `yaml:"limit" mapstructure:"limit"`
	SortBy string `yaml:"sort_by" mapstructure:"sort_by"`
}

// IngestConfig configures per-entity stage workers.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// FetchConfig configures catalog lookup retry and circuit breaking.
// The defaults make one attempt with no breaker.
type FetchConfig struct {
	MaxAttempts             int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs        int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs            int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	CircuitFailureThreshold int `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// RolesConfig holds the crew job set per role.
type RolesConfig struct {
	Director RoleConfig `yaml:"director" mapstructure:"director"`
	Composer RoleConfig `yaml:"composer" mapstructure:"composer"`
}

// RoleConfig lists the credit jobs that qualify for a role.
type RoleConfig struct {
	Jobs []string `yaml:"jobs" mapstructure:"jobs"`
}

// Jobs returns the job sets keyed by role.
func (r RolesConfig) Jobs() map[model.RoleKind][]string {
	return map[model.RoleKind][]string{
		model.RoleDirector: r.Director.Jobs,
		model.RoleComposer: r.Composer.Jobs,
	}
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COHORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("tmdb.token", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.rate_limit", 40)
	v.SetDefault("bechdel.base_url", "https://bechdeltest.com")
	v.SetDefault("bechdel.rate_limit", 5)
	v.SetDefault("seed.year", 2023)
	v.SetDefault("seed.limit", 250)
	v.SetDefault("seed.sort_by", "revenue.desc")
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("fetch.max_attempts", 1)
	v.SetDefault("fetch.initial_backoff_ms", 500)
	v.SetDefault("fetch.max_backoff_ms", 30000)
	v.SetDefault("fetch.circuit_failure_threshold", 0)
	v.SetDefault("fetch.circuit_reset_secs", 30)
	v.SetDefault("roles.director.jobs", []string{"Director"})
	v.SetDefault("roles.composer.jobs", []string{"Composer", "Original Music Composer", "Music"})
	v.SetDefault("roles_file", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.RolesFile != "" {
		roles, err := LoadRolesFile(cfg.RolesFile)
		if err != nil {
			return nil, err
		}
		cfg.Roles = cfg.Roles.merge(*roles)
	}

	return &cfg, nil
}

// LoadRolesFile parses a YAML roles file with the same shape as the roles
// section.
func LoadRolesFile(path string) (*RolesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read roles file %s", path)
	}
	var roles RolesConfig
	if err := yaml.Unmarshal(data, &roles); err != nil {
		return nil, eris.Wrapf(err, "config: parse roles file %s", path)
	}
	return &roles, nil
}

// merge overrides each role whose job list is non-empty in o.
func (r RolesConfig) merge(o RolesConfig) RolesConfig {
	if len(o.Director.Jobs) > 0 {
		r.Director.Jobs = o.Director.Jobs
	}
	if len(o.Composer.Jobs) > 0 {
		r.Composer.Jobs = o.Composer.Jobs
	}
	return r
}

// Validation modes. Each command validates the settings it depends on.
const (
	ModeStore   = "store"   // store access only
	ModeCatalog = "catalog" // store plus catalog lookups
	ModeServe   = "serve"   // store plus the API server
)

// Validate checks the settings required by mode and reports every problem
// at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case ModeStore:
	case ModeCatalog:
		if c.TMDB.Token == "" {
			errs = append(errs, "tmdb.token is required")
		}
		if c.Ingest.Concurrency < 1 || c.Ingest.Concurrency > 64 {
			errs = append(errs, fmt.Sprintf("ingest.concurrency must be between 1 and 64, got %d", c.Ingest.Concurrency))
		}
		if c.Fetch.MaxAttempts < 1 {
			errs = append(errs, fmt.Sprintf("fetch.max_attempts must be >= 1, got %d", c.Fetch.MaxAttempts))
		}
		if c.Fetch.CircuitFailureThreshold < 0 {
			errs = append(errs, "fetch.circuit_failure_threshold must be >= 0")
		}
	case ModeServe:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be > 0 and <= 65535, got %d", c.Server.Port))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
