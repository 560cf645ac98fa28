package configmanager

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var builderSchema = map[string]any{
	"server": map[string]any{
		"host": "localhost",
		"port": map[string]any{"@type": "int", "@default": int64(8080)},
	},
}

// TestBuilder tests the fluent construction path
func TestBuilder(t *testing.T) {
	t.Run("SchemaOnly", func(t *testing.T) {
		cfg, err := NewBuilder().WithSchema(builderSchema).Build()
		require.NoError(t, err)

		port, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0o644))

		cfg, err := NewBuilder().WithSchema(builderSchema).WithFile(path).Build()
		require.NoError(t, err)

		port, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(9000), port)
	})

	t.Run("MissingFileIsSoftError", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithSchema(builderSchema).
			WithFile(filepath.Join(t.TempDir(), "nope.toml")).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, cfg)

		// defaults still usable
		host, err := cfg.String("server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", host)
	})

	t.Run("ValidatorFailureIsFatal", func(t *testing.T) {
		_, err := NewBuilder().
			WithSchema(builderSchema).
			WithValidator(func(c *Config) error {
				return fmt.Errorf("nope")
			}).
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("InvalidFormatRejected", func(t *testing.T) {
		_, err := NewBuilder().WithFormat("ini").Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDeclaration)
	})

	t.Run("ForcedFormat", func(t *testing.T) {
		// JSON content behind a .conf name, format forced explicitly
		path := filepath.Join(t.TempDir(), "app.conf")
		require.NoError(t, os.WriteFile(path, []byte(`{"server": {"port": 9000}}`), 0o644))

		cfg, err := NewBuilder().
			WithSchema(builderSchema).
			WithFile(path).
			WithFormat(FormatJSON).
			Build()
		require.NoError(t, err)

		port, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(9000), port)
	})

	t.Run("EnvPrefixApplied", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithSchema(map[string]any{
				"token": map[string]any{"@envvar": true},
			}).
			WithEnvPrefix("APP_").
			Build()
		require.NoError(t, err)

		t.Setenv("APP_TOKEN", "secret")
		token, err := cfg.String("token")
		require.NoError(t, err)
		assert.Equal(t, "secret", token)
	})

	t.Run("StructDefaults", func(t *testing.T) {
		type serverConfig struct {
			Host string `toml:"host"`
			Port int64  `toml:"port"`
		}
		cfg, err := NewBuilder().
			WithPrefix("server", serverConfig{Host: "localhost", Port: 8080}).
			Build()
		require.NoError(t, err)

		port, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		type target struct {
			Server struct {
				Host string `toml:"host"`
				Port int64  `toml:"port"`
			} `toml:"server"`
		}
		var out target
		_, err := NewBuilder().WithSchema(builderSchema).BuildAndScan(&out)
		require.NoError(t, err)
		assert.Equal(t, "localhost", out.Server.Host)
		assert.Equal(t, int64(8080), out.Server.Port)
	})
}

// TestFileDiscovery tests config file discovery
func TestFileDiscovery(t *testing.T) {
	t.Run("CLIFlag", func(t *testing.T) {
		opts := DefaultDiscoveryOptions("myapp")
		assert.Equal(t, "/some/path.toml", opts.Discover([]string{"--config", "/some/path.toml"}))
		assert.Equal(t, "/other.toml", opts.Discover([]string{"--config=/other.toml"}))
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", "/from/env.toml")
		opts := DefaultDiscoveryOptions("myapp")
		assert.Equal(t, "/from/env.toml", opts.Discover(nil))
	})

	t.Run("SearchPaths", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "myapp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("greeting: hi\n"), 0o644))

		opts := FileDiscoveryOptions{
			Name:       "myapp",
			Extensions: []string{".toml", ".yaml"},
			Paths:      []string{dir},
		}
		assert.Equal(t, path, opts.Discover(nil))
	})

	t.Run("NothingFound", func(t *testing.T) {
		opts := FileDiscoveryOptions{
			Name:       "definitely-not-there",
			Extensions: []string{".toml"},
			Paths:      []string{t.TempDir()},
		}
		assert.Equal(t, "", opts.Discover(nil))
	})

	t.Run("BuilderIntegration", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "myapp.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0o644))

		cfg, err := NewBuilder().
			WithSchema(builderSchema).
			WithFileDiscovery(FileDiscoveryOptions{
				Name:       "myapp",
				Extensions: []string{".toml"},
				Paths:      []string{dir},
			}).
			Build()
		require.NoError(t, err)

		port, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(9000), port)
	})
}

// TestQuick tests the one-call constructor
func TestQuick(t *testing.T) {
	t.Run("NoFile", func(t *testing.T) {
		cfg, err := Quick(builderSchema, "APP_", "")
		require.NoError(t, err)
		host, err := cfg.String("server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", host)
	})

	t.Run("MissingFileTolerated", func(t *testing.T) {
		cfg, err := Quick(builderSchema, "APP_", filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		require.NotNil(t, cfg)
	})

	t.Run("BadSchemaFails", func(t *testing.T) {
		_, err := Quick("not a schema", "", "")
		assert.Error(t, err)
	})
}

// TestDebug tests the troubleshooting dump
func TestDebug(t *testing.T) {
	cfg := MustQuick(builderSchema, "", "")
	require.NoError(t, cfg.SetValue("server.port", 9000))

	out := cfg.Debug()
	assert.Contains(t, out, "server.host")
	assert.Contains(t, out, "custom")
	assert.Contains(t, out, "default")
}
