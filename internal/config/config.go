// Package config holds the itemd configuration: server endpoints, storage
// settings and the genesis state applied on first start.
package config

// Version is the reported itemd release.
const Version = "0.3.0"

// Config is the complete itemd configuration, loaded from itemd.toml.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Genesis  GenesisConfig  `toml:"genesis" mapstructure:"genesis"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the RPC surfaces.
type ServerConfig struct {
	// HTTPAddr is the JSON-RPC listen address.
	HTTPAddr string `toml:"http_addr" mapstructure:"http_addr"`

	// WSAddr is the WebSocket subscription listen address. Empty disables
	// the WebSocket server.
	WSAddr string `toml:"ws_addr" mapstructure:"ws_addr"`

	// RequestTimeoutSec bounds the handling time of one RPC request.
	RequestTimeoutSec int `toml:"request_timeout_sec" mapstructure:"request_timeout_sec"`
}

// DatabaseConfig configures the state store and the history index.
type DatabaseConfig struct {
	// Backend selects the key-value engine: pebble, leveldb or memory.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk location of the state store. Ignored by the
	// memory backend.
	Path string `toml:"path" mapstructure:"path"`

	// HistoryPath is the SQLite history index location. Empty disables
	// history recording.
	HistoryPath string `toml:"history_path" mapstructure:"history_path"`

	// CacheSize is the number of state entries held in the read cache.
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`

	// Compression names the value compression: none or lz4.
	Compression string `toml:"compression" mapstructure:"compression"`
}

// GenesisCollection seeds one collection at first start.
type GenesisCollection struct {
	ID            string `toml:"id" mapstructure:"id"`
	ItemCount     uint32 `toml:"item_count" mapstructure:"item_count"`
	DefaultHolder string `toml:"default_holder" mapstructure:"default_holder"`
	Enumerable    bool   `toml:"enumerable" mapstructure:"enumerable"`
}

// GenesisCurrency seeds one hosted currency at first start.
type GenesisCurrency struct {
	ID     string `toml:"id" mapstructure:"id"`
	Issuer string `toml:"issuer" mapstructure:"issuer"`
	Supply uint64 `toml:"supply" mapstructure:"supply"`
}

// GenesisConfig is the state seeded into an empty store.
type GenesisConfig struct {
	Collections []GenesisCollection `toml:"collections" mapstructure:"collections"`
	Currencies  []GenesisCurrency   `toml:"currencies" mapstructure:"currencies"`
}

// ConfigPath returns the file this configuration was loaded from, if any.
func (c *Config) ConfigPath() string { return c.configPath }
