package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/logitrack/internal/flagx"
	"github.com/dmitrijs2005/logitrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// accept strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CacheDBPath         string         `json:"cache_db_path"`
	ExportDir           string         `json:"export_dir"`
}

// parseJson overlays Config with values loaded from the file named by
// -c / -config. Keys that are absent keep their current value. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.CacheDBPath != "" {
		cfg.CacheDBPath = jc.CacheDBPath
	}
	if jc.ExportDir != "" {
		cfg.ExportDir = jc.ExportDir
	}
}
