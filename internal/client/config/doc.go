// Package config loads runtime configuration for the LogiTrack console.
//
// Values are layered: LoadDefaults first, then the JSON file named by -c or
// -config, then the short flags (-a, -i, -db, -o). Later layers win.
//
// A complete file looks like:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "cache_db_path": "logitrack-cache.db",
//	  "export_dir": "exports"
//	}
package config
