// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "os"

// Config holds runtime settings for the credential server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: store connection string (postgres:// for pgx, a file
//     path/URI for SQLite). Empty DSN is fatal at startup.
//   - FingerprintKey: server-held key for deterministic API key
//     fingerprints. Do not use the dev default in production.
//   - HashTime / HashMemoryKiB / HashParallelism: Argon2id cost parameters.
//   - HashWorkers: upper bound on concurrently running hash derivations.
//   - FilesDir: directory served by the file endpoints.
type Config struct {
	EndpointAddr    string
	DatabaseDSN     string
	FingerprintKey  string
	HashTime        uint32
	HashMemoryKiB   uint32
	HashParallelism uint8
	HashWorkers     int
	FilesDir        string
}

// LoadDefaults populates Config with development defaults. The database DSN
// comes from the DATABASE_URL environment variable; there is no fallback, a
// missing DSN stays empty and is rejected at startup.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = "127.0.0.1:8080"
	c.DatabaseDSN = os.Getenv("DATABASE_URL")
	c.FingerprintKey = "insecure-dev-fingerprint-key"
	c.HashTime = 3
	c.HashMemoryKiB = 64 * 1024
	c.HashParallelism = 2
	c.HashWorkers = 4
	c.FilesDir = "data"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
