package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:5005", cfg.Server.HTTPAddr)
	assert.Equal(t, "127.0.0.1:6006", cfg.Server.WSAddr)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSec)
	assert.Equal(t, "pebble", cfg.Database.Backend)
	assert.Equal(t, "data/state", cfg.Database.Path)
	assert.Equal(t, "data/history.db", cfg.Database.HistoryPath)
	assert.Equal(t, 16384, cfg.Database.CacheSize)
	assert.Equal(t, "lz4", cfg.Database.Compression)
	assert.Empty(t, cfg.Genesis.Collections)
	assert.Empty(t, cfg.Genesis.Currencies)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itemd.toml")
	content := `
[server]
http_addr = "0.0.0.0:8080"

[database]
backend = "memory"
compression = "none"

[[genesis.collections]]
id = "art"
item_count = 100
default_holder = "vault"
enumerable = true

[[genesis.currencies]]
id = "gold"
issuer = "mint"
supply = 1000000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "127.0.0.1:6006", cfg.Server.WSAddr) // default kept
	assert.Equal(t, "memory", cfg.Database.Backend)
	assert.Equal(t, path, cfg.ConfigPath())

	require.Len(t, cfg.Genesis.Collections, 1)
	col := cfg.Genesis.Collections[0]
	assert.Equal(t, "art", col.ID)
	assert.Equal(t, uint32(100), col.ItemCount)
	assert.Equal(t, "vault", col.DefaultHolder)
	assert.True(t, col.Enumerable)

	require.Len(t, cfg.Genesis.Currencies, 1)
	cur := cfg.Genesis.Currencies[0]
	assert.Equal(t, "gold", cur.ID)
	assert.Equal(t, "mint", cur.Issuer)
	assert.Equal(t, uint64(1000000), cur.Supply)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("ITEMD_DATABASE_BACKEND", "leveldb")
	t.Setenv("ITEMD_SERVER_HTTP_ADDR", "127.0.0.1:7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "leveldb", cfg.Database.Backend)
	assert.Equal(t, "127.0.0.1:7070", cfg.Server.HTTPAddr)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(cfg *Config) { cfg.Server.HTTPAddr = "" },
			wantErr: "http_addr",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.Server.RequestTimeoutSec = 0 },
			wantErr: "request_timeout_sec",
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.Database.Backend = "rocksdb" },
			wantErr: "backend",
		},
		{
			name: "disk backend without path",
			mutate: func(cfg *Config) {
				cfg.Database.Backend = "pebble"
				cfg.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "memory backend without path is fine",
			mutate: func(cfg *Config) {
				cfg.Database.Backend = "memory"
				cfg.Database.Path = ""
			},
		},
		{
			name:    "unknown compression",
			mutate:  func(cfg *Config) { cfg.Database.Compression = "zstd" },
			wantErr: "compression",
		},
		{
			name:    "negative cache size",
			mutate:  func(cfg *Config) { cfg.Database.CacheSize = -1 },
			wantErr: "cache_size",
		},
		{
			name: "collection without holder",
			mutate: func(cfg *Config) {
				cfg.Genesis.Collections = []GenesisCollection{{ID: "art", ItemCount: 5}}
			},
			wantErr: "default_holder",
		},
		{
			name: "collection with zero items",
			mutate: func(cfg *Config) {
				cfg.Genesis.Collections = []GenesisCollection{{ID: "art", DefaultHolder: "vault"}}
			},
			wantErr: "item_count",
		},
		{
			name: "currency with zero supply",
			mutate: func(cfg *Config) {
				cfg.Genesis.Currencies = []GenesisCurrency{{ID: "gold", Issuer: "mint"}}
			},
			wantErr: "supply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
