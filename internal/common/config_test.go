package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

var configKeys = []string{
	ConfigFileEnv, "DB_DRIVER", "DB_URL", "DB_MAX_CONNS", "DB_DIAL_TIMEOUT",
	"GRPC_ADDR", "HTTP_ADDR", "WATCH_DIR", "EXTRACT_METHOD", "OCR_DPI",
	"EXTRACT_TIMEOUT", "QUEUE_WORKERS", "QUEUE_SIZE", "EXPORT_DIR",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "cibil.db", cfg.Database.DSN)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, ":8081", cfg.Server.HTTPAddr)
	assert.Equal(t, constants.ExtractAuto, cfg.Extract.Method)
	assert.Equal(t, 300, cfg.Extract.DPI)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost/cibil")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("EXTRACT_METHOD", "pdftotext")
	t.Setenv("EXTRACT_TIMEOUT", "30s")
	t.Setenv("QUEUE_WORKERS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
	assert.Equal(t, constants.ExtractPdftotext, cfg.Extract.Method)
	assert.Equal(t, 30*time.Second, cfg.Extract.Timeout)
	assert.Equal(t, 4, cfg.Queue.Workers, "unparsable values fall back to the default")
}

func TestLoadConfig_TOMLFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "cibil.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
HTTP_ADDR = ":9090"
OCR_DPI = 200

[db]
driver = "sqlite"
url = "/var/lib/cibil/runs.db"

[queue]
workers = 2
`), 0o644))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("QUEUE_WORKERS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 200, cfg.Extract.DPI)
	assert.Equal(t, "/var/lib/cibil/runs.db", cfg.Database.DSN)
	assert.Equal(t, 3, cfg.Queue.Workers, "environment wins over the file")
}

func TestLoadConfig_BadTOML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("DB_URL = "), 0o644))
	t.Setenv(ConfigFileEnv, path)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Equal(t, CodeConfig, CodeOf(err))
}

func TestConfig_Validate(t *testing.T) {
	clearConfigEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, false},
		{"unknown method", func(c *Config) { c.Extract.Method = "magic" }, false},
		{"no listeners", func(c *Config) { c.Server.GRPCAddr, c.Server.HTTPAddr = "", "" }, false},
		{"http only", func(c *Config) { c.Server.GRPCAddr = "" }, true},
		{"zero workers", func(c *Config) { c.Queue.Workers = 0 }, false},
		{"dpi out of range", func(c *Config) { c.Extract.DPI = 5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, CodeConfig, CodeOf(err))
		})
	}
}
