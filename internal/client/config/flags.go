package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/logitrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the backend server
//	-i duration how often to ping the server, e.g. 3s
//	-db string  path of the local cache database
//	-o string   export download directory
//
// os.Args is filtered with flagx.FilterArgs so that flags meant for other
// components don't break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-db", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.OnlineCheckInterval, "i", cfg.OnlineCheckInterval, "online check interval")
	fs.StringVar(&cfg.CacheDBPath, "db", cfg.CacheDBPath, "local cache database path")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "directory for downloaded exports")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if cfg.OnlineCheckInterval <= 0 {
		panic(fmt.Errorf("online check interval must be positive, got %s", cfg.OnlineCheckInterval))
	}
}
