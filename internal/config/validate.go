package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return errors.New("server.grpc_addr is required")
	}
	if c.Server.APIToken == "" {
		return errors.New("server.api_token is required")
	}

	switch c.Sources.Driver {
	case DriverPostgres:
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	case DriverMemory:
		if c.Sources.FixturePath == "" {
			return errors.New("sources.fixture_path is required for the memory driver")
		}
	default:
		return fmt.Errorf("sources.driver must be postgres or memory, got %q", c.Sources.Driver)
	}

	switch c.Sources.FX {
	case DriverPostgres:
		if c.Sources.Driver != DriverPostgres {
			if err := c.Database.validate("database"); err != nil {
				return err
			}
		}
	case DriverMemory:
		if c.Sources.FixturePath == "" {
			return errors.New("sources.fixture_path is required for the memory fx source")
		}
	case DriverHTTP:
		if c.Sources.FXAPI.BaseURL == "" {
			return errors.New("sources.fx_api.base_url is required for the http fx source")
		}
		if c.Sources.FXAPI.MaxRetries < 0 {
			return errors.New("sources.fx_api.max_retries must be >= 0")
		}
	default:
		return fmt.Errorf("sources.fx must be postgres, memory or http, got %q", c.Sources.FX)
	}

	if c.Valuation.Workers < 1 {
		return errors.New("valuation.workers must be >= 1")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.ConnStr != "" {
		return nil
	}
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	if db.MaxOpenConns < 1 {
		return fmt.Errorf("%s.max_open_conns must be >= 1", prefix)
	}
	return nil
}
