package config

import "github.com/spf13/viper"

// setDefaults sets the built-in defaults applied before any file or
// environment override.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.http_addr", "127.0.0.1:5005")
	v.SetDefault("server.ws_addr", "127.0.0.1:6006")
	v.SetDefault("server.request_timeout_sec", 30)

	// Database defaults
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data/state")
	v.SetDefault("database.history_path", "data/history.db")
	v.SetDefault("database.cache_size", 16384)
	v.SetDefault("database.compression", "lz4")
}
