package configmanager

// Settings holds tree-wide options shared by every node of a Config.
type Settings struct {
	// EnvPrefix is prepended to auto-derived environment variable names,
	// e.g. "MYAPP_".
	EnvPrefix string
}

// defaultSettings serves free-floating sections that are not owned by a
// Config.
var defaultSettings Settings

// Config is a configuration tree root with tree-wide settings and lazily
// constructed file adapters. It embeds the root Section, so the whole
// section API is available directly on it.
type Config struct {
	*Section

	settings Settings

	tomlAdapter *Adapter
	jsonAdapter *Adapter
	yamlAdapter *Adapter
}

// New creates an empty configuration tree.
func New() *Config {
	return NewWithSettings(Settings{})
}

// NewWithSettings creates an empty configuration tree with the given
// settings.
func NewWithSettings(settings Settings) *Config {
	c := &Config{Section: NewSection(), settings: settings}
	c.Section.settings = &c.settings
	return c
}

// NewFromSchema creates a configuration tree and declares the schema into
// it.
func NewFromSchema(schema any) (*Config, error) {
	c := New()
	if err := c.Declare(schema); err != nil {
		return nil, err
	}
	return c, nil
}

// Settings returns the tree-wide settings.
func (c *Config) Settings() Settings { return c.settings }

// SetEnvPrefix sets the prefix for auto-derived environment variable names.
func (c *Config) SetEnvPrefix(prefix string) { c.settings.EnvPrefix = prefix }

// TOML returns the TOML adapter bound to the tree root.
func (c *Config) TOML() *Adapter {
	if c.tomlAdapter == nil {
		c.tomlAdapter = NewAdapter(c.Section, tomlReaderWriter{})
	}
	return c.tomlAdapter
}

// JSON returns the JSON adapter bound to the tree root.
func (c *Config) JSON() *Adapter {
	if c.jsonAdapter == nil {
		c.jsonAdapter = NewAdapter(c.Section, jsonReaderWriter{})
	}
	return c.jsonAdapter
}

// YAML returns the YAML adapter bound to the tree root.
func (c *Config) YAML() *Adapter {
	if c.yamlAdapter == nil {
		c.yamlAdapter = NewAdapter(c.Section, yamlReaderWriter{})
	}
	return c.yamlAdapter
}

// AdapterFor returns the adapter matching a file path's extension.
func (c *Config) AdapterFor(path string) (*Adapter, error) {
	format, err := detectFileFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return c.JSON(), nil
	case FormatYAML:
		return c.YAML(), nil
	default:
		return c.TOML(), nil
	}
}
