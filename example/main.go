package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jbasko/configmanager"
)

// AppConfig is the typed target the tree is scanned into.
type AppConfig struct {
	Uploads struct {
		Enabled bool  `toml:"enabled"`
		Threads int64 `toml:"threads"`
	} `toml:"uploads"`
	Greeting string `toml:"greeting"`
}

func main() {
	dir, err := os.MkdirTemp("", "configmanager-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	configFile := filepath.Join(dir, "app.toml")

	// Declare the schema: nested maps become sections, plain values become
	// items with defaults, @-maps describe individual items.
	schema := map[string]any{
		"uploads": map[string]any{
			"enabled": false,
			"threads": map[string]any{"@type": "int", "@default": int64(1), "@envvar": true},
		},
		"greeting": "Hello, world!",
	}

	cfg, err := configmanager.NewBuilder().
		WithSchema(schema).
		WithEnvPrefix("MYAPP_").
		WithValidator(func(c *configmanager.Config) error {
			threads, err := c.Int64("uploads.threads")
			if err != nil {
				return err
			}
			if threads < 1 {
				return fmt.Errorf("uploads.threads must be positive, got %d", threads)
			}
			return nil
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	// Track changes while values arrive from the outside.
	cs := cfg.TrackChanges(func() {
		if err := cfg.SetValue("uploads.enabled", "yes"); err != nil {
			log.Fatal(err)
		}
		if err := cfg.SetValue("uploads.threads", "5"); err != nil {
			log.Fatal(err)
		}
	})
	fmt.Printf("changed items: %d\n", cs.Len())

	// Persist only the overrides, then everything with defaults.
	if err := cfg.TOML().DumpFile(configFile, false); err != nil {
		log.Fatal(err)
	}
	overrides, _ := cfg.TOML().DumpString(false)
	fmt.Printf("overrides:\n%s", overrides)

	// Scan into the typed struct.
	var app AppConfig
	if err := cfg.Scan(&app); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("scanned: %+v\n", app)

	fmt.Print(cfg.Debug())
}
