package config

import "time"

// Config holds runtime settings for the LogiTrack console.
type Config struct {
	ServerEndpointAddr  string        // gRPC host:port
	OnlineCheckInterval time.Duration // how often the server is pinged
	CacheDBPath         string        // SQLite offline cache
	ExportDir           string        // CSV downloads, relative to the working directory
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheDBPath = "logitrack-cache.db"
	c.ExportDir = "exports"
}

// LoadConfig layers defaults, the JSON file and flags, in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
