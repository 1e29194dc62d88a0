package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultGRPCAddr     = ":8080"
	DefaultHTTPAddr     = ":8081"
	DefaultDBHost       = "localhost"
	DefaultDBPort       = 5432
	DefaultDBUser       = "postgres"
	DefaultDBPassword   = "postgres"
	DefaultDBName       = "valuation"
	DefaultDBSSLMode    = "disable"
	DefaultMaxOpenConns = 10
	DefaultDriver       = DriverPostgres
	DefaultFXTimeout    = 10 * time.Second
	DefaultFXMaxRetries = 3
	DefaultFXBackoff    = 500 * time.Millisecond
	DefaultWorkers      = 1
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}

	// Database defaults
	if c.Database.Host == "" {
		c.Database.Host = DefaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = DefaultDBUser
	}
	if c.Database.Password == "" {
		c.Database.Password = DefaultDBPassword
	}
	if c.Database.Name == "" {
		c.Database.Name = DefaultDBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = DefaultMaxOpenConns
	}

	// Sources defaults
	if c.Sources.Driver == "" {
		c.Sources.Driver = DefaultDriver
	}
	if c.Sources.FX == "" {
		c.Sources.FX = c.Sources.Driver
	}
	if c.Sources.FXAPI.Timeout == 0 {
		c.Sources.FXAPI.Timeout = DefaultFXTimeout
	}
	if c.Sources.FXAPI.MaxRetries == 0 {
		c.Sources.FXAPI.MaxRetries = DefaultFXMaxRetries
	}
	if c.Sources.FXAPI.Backoff == 0 {
		c.Sources.FXAPI.Backoff = DefaultFXBackoff
	}

	// Valuation defaults
	if c.Valuation.Workers == 0 {
		c.Valuation.Workers = DefaultWorkers
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
