package config

import (
	"flag"
	"os"

	"github.com/HakanVardarr/file-server/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., "127.0.0.1:8080")
//	-d string   database DSN
//	-k string   API key fingerprint key
//	-t int      argon2 time cost (iterations)
//	-m int      argon2 memory cost, KiB
//	-p int      argon2 parallelism
//	-w int      hash worker limit
//	-f string   files directory
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t", "-m", "-p", "-w", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.FingerprintKey, "k", config.FingerprintKey, "fingerprint key")
	fs.StringVar(&config.FilesDir, "f", config.FilesDir, "files directory")

	hashTime := fs.Int("t", int(config.HashTime), "argon2 time cost")
	hashMemory := fs.Int("m", int(config.HashMemoryKiB), "argon2 memory cost (KiB)")
	hashParallelism := fs.Int("p", int(config.HashParallelism), "argon2 parallelism")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "hash worker limit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.HashTime = uint32(*hashTime)
	config.HashMemoryKiB = uint32(*hashMemory)
	config.HashParallelism = uint8(*hashParallelism)
}
