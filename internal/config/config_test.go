package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("database", "", "")
	fs.String("log-level", "info", "")
	fs.Int("symbol-depth", 2, "")
	fs.Bool("parallel", false, "")
	fs.String("format", "string", "")
	fs.String("addr", ":8080", "")
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gibbs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Database)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Model.SymbolDepth)
	assert.False(t, cfg.Model.Parallel)
	assert.Equal(t, "string", cfg.Output.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
database: alni.yaml
log:
  level: debug
model:
  symbol_depth: 3
output:
  format: latex
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "alni.yaml", cfg.Database)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 3, cfg.Model.SymbolDepth)
		assert.Equal(t, "latex", cfg.Output.Format)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("GIBBS_MODEL__SYMBOL_DEPTH", "5")
		t.Setenv("GIBBS_DATABASE", "env.db")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Model.SymbolDepth)
		assert.Equal(t, "env.db", cfg.Database)
		assert.Equal(t, "latex", cfg.Output.Format)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("GIBBS_MODEL__SYMBOL_DEPTH", "5")
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--symbol-depth", "7", "--format", "json", "--parallel"}))

		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Model.SymbolDepth)
		assert.Equal(t, "json", cfg.Output.Format)
		assert.True(t, cfg.Model.Parallel)
		// unchanged flags leave lower layers alone
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "alni.yaml", cfg.Database)
	})
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:      "bad format",
			mutate:    func(c *Config) { c.Output.Format = "xml" },
			errSubstr: []string{"output.format"},
		},
		{
			name:      "bad level and depth",
			mutate:    func(c *Config) { c.Log.Level = "trace"; c.Model.SymbolDepth = 0 },
			errSubstr: []string{"log.level", "model.symbol_depth"},
		},
		{
			name:      "empty addr",
			mutate:    func(c *Config) { c.Server.Addr = "" },
			errSubstr: []string{"server.addr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Log:    LogConfig{Level: "info"},
				Model:  ModelConfig{SymbolDepth: 2},
				Output: OutputConfig{Format: "string"},
				Server: ServerConfig{Addr: ":8080"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.errSubstr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.errSubstr {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}
