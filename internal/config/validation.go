package config

import "fmt"

var validBackends = map[string]bool{
	"pebble":  true,
	"leveldb": true,
	"memory":  true,
}

var validCompression = map[string]bool{
	"none": true,
	"lz4":  true,
}

// Validate checks the assembled configuration for consistency.
func Validate(cfg *Config) error {
	if cfg.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if cfg.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("server.request_timeout_sec must be positive, got %d", cfg.Server.RequestTimeoutSec)
	}

	if !validBackends[cfg.Database.Backend] {
		return fmt.Errorf("unknown database.backend %q", cfg.Database.Backend)
	}
	if cfg.Database.Backend != "memory" && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required for the %s backend", cfg.Database.Backend)
	}
	if !validCompression[cfg.Database.Compression] {
		return fmt.Errorf("unknown database.compression %q", cfg.Database.Compression)
	}
	if cfg.Database.CacheSize < 0 {
		return fmt.Errorf("database.cache_size cannot be negative, got %d", cfg.Database.CacheSize)
	}

	for i, c := range cfg.Genesis.Collections {
		if c.ID == "" {
			return fmt.Errorf("genesis.collections[%d]: id is required", i)
		}
		if c.ItemCount == 0 {
			return fmt.Errorf("genesis.collections[%d]: item_count must be non-zero", i)
		}
		if c.DefaultHolder == "" {
			return fmt.Errorf("genesis.collections[%d]: default_holder is required", i)
		}
	}
	for i, c := range cfg.Genesis.Currencies {
		if c.ID == "" {
			return fmt.Errorf("genesis.currencies[%d]: id is required", i)
		}
		if c.Issuer == "" {
			return fmt.Errorf("genesis.currencies[%d]: issuer is required", i)
		}
		if c.Supply == 0 {
			return fmt.Errorf("genesis.currencies[%d]: supply must be non-zero", i)
		}
	}
	return nil
}
