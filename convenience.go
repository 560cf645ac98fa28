package configmanager

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Quick builds a configuration tree in one call: declare the schema, set
// the env prefix and load the file if one is given. A missing file is
// tolerated silently; Quick is for programs where the file is optional.
func Quick(schema any, envPrefix, configFile string) (*Config, error) {
	builder := NewBuilder().WithSchema(schema).WithEnvPrefix(envPrefix)
	if configFile != "" {
		builder = builder.WithFile(configFile)
	}
	c, err := builder.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}
	return c, nil
}

// MustQuick is like Quick but panics on error.
func MustQuick(schema any, envPrefix, configFile string) *Config {
	c, err := Quick(schema, envPrefix, configFile)
	if err != nil {
		panic(err)
	}
	return c
}

// Debug renders the tree as an indented listing of every item with its
// resolved value, source and type. Intended for troubleshooting, not
// serialization.
func (c *Config) Debug() string {
	var sb strings.Builder
	sb.WriteString("=== Configuration ===\n")

	entries := c.IterItems(true)
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Path.String() < entries[b].Path.String()
	})

	for _, entry := range entries {
		item := entry.Item
		source := "default"
		value, err := item.Value()
		switch {
		case item.HasValue():
			source = "custom"
		case err == nil && !item.HasDefault():
			source = "envvar"
		case err != nil:
			source = "unset"
			value = "<missing>"
			if item.Required() {
				source = "required, missing"
			}
		}
		fmt.Fprintf(&sb, "%-40s = %-20v (%s, %s)\n",
			entry.Path.String(), value, item.Type().Name(), source)
	}

	sb.WriteString("=====================\n")
	return sb.String()
}
