package config

import (
	"encoding/json"
	"os"

	"github.com/HakanVardarr/file-server/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, set fields are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddr    *string `json:"endpoint_addr"`
	DatabaseDSN     *string `json:"database_dsn"`
	FingerprintKey  *string `json:"fingerprint_key"`
	HashTime        *uint32 `json:"hash_time"`
	HashMemoryKiB   *uint32 `json:"hash_memory_kib"`
	HashParallelism *uint8  `json:"hash_parallelism"`
	HashWorkers     *int    `json:"hash_workers"`
	FilesDir        *string `json:"files_dir"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Pointer fields distinguish "absent"
// from zero values, so the file only overrides keys it actually contains.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.FingerprintKey != nil {
		config.FingerprintKey = *c.FingerprintKey
	}
	if c.HashTime != nil {
		config.HashTime = *c.HashTime
	}
	if c.HashMemoryKiB != nil {
		config.HashMemoryKiB = *c.HashMemoryKiB
	}
	if c.HashParallelism != nil {
		config.HashParallelism = *c.HashParallelism
	}
	if c.HashWorkers != nil {
		config.HashWorkers = *c.HashWorkers
	}
	if c.FilesDir != nil {
		config.FilesDir = *c.FilesDir
	}
}
