package config

import "time"

// Config is the root configuration for the valuation server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DBConfig        `yaml:"database"`
	Sources   SourcesConfig   `yaml:"sources"`
	Valuation ValuationConfig `yaml:"valuation"`
	Seed      SeedConfig      `yaml:"seed"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the listen addresses of the public surfaces
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"` // Empty disables the HTTP API
	APIToken string `yaml:"api_token"`
}

// DBConfig holds the Postgres connection
// ConnStr takes precedence over the individual fields when set
type DBConfig struct {
	ConnStr      string `yaml:"conn_str"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Name         string `yaml:"name"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	EnsureSchema bool   `yaml:"ensure_schema"`
}

// Source drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverHTTP     = "http"
)

// SourcesConfig selects the backends of the four collaborators
type SourcesConfig struct {
	Driver      string      `yaml:"driver"`       // postgres | memory
	FixturePath string      `yaml:"fixture_path"` // memory driver only
	FX          string      `yaml:"fx"`           // postgres | memory | http, defaults to Driver
	FXAPI       FXAPIConfig `yaml:"fx_api"`
}

// FXAPIConfig configures the HTTP FX rate feed
type FXAPIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Backoff    time.Duration `yaml:"backoff"`
}

// ValuationConfig tunes the valuation engine
type ValuationConfig struct {
	Workers int `yaml:"workers"`
}

// SeedConfig controls startup seeding
type SeedConfig struct {
	FXBase bool `yaml:"fx_base"` // Ensure the USD pivot rate exists
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}
