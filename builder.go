package configmanager

import (
	"errors"
	"fmt"
)

// ValidatorFunc checks a fully built configuration tree.
type ValidatorFunc func(*Config) error

// Builder assembles a configuration tree step by step: schema declarations,
// file sources, environment prefix and validators. All With methods return
// the builder for chaining; errors are collected and surface from Build.
type Builder struct {
	schemas    []any
	structs    []structDefaults
	file       string
	format     string
	envPrefix  string
	validators []ValidatorFunc
	args       []string
	discovery  *FileDiscoveryOptions
	err        error
}

type structDefaults struct {
	prefix string
	value  any
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSchema adds a schema declaration. May be called multiple times; the
// declarations merge in order.
func (b *Builder) WithSchema(schema any) *Builder {
	b.schemas = append(b.schemas, schema)
	return b
}

// WithDefaults declares sections and items from a struct of default values.
func (b *Builder) WithDefaults(defaults any) *Builder {
	return b.WithPrefix("", defaults)
}

// WithPrefix declares a struct of default values nested under a dotted
// path.
func (b *Builder) WithPrefix(prefix string, defaults any) *Builder {
	b.structs = append(b.structs, structDefaults{prefix: prefix, value: defaults})
	return b
}

// WithFile sets the config file to load. The format is detected from the
// extension unless WithFormat overrides it.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the file format ("toml", "json", "yaml") regardless of
// the file extension.
func (b *Builder) WithFormat(format string) *Builder {
	switch format {
	case FormatTOML, FormatJSON, FormatYAML:
		b.format = format
	default:
		b.err = fmt.Errorf("%w: unsupported format %q", ErrDeclaration, format)
	}
	return b
}

// WithEnvPrefix sets the prefix for auto-derived environment variable
// names.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithValidator adds a validation function run after loading.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	b.validators = append(b.validators, fn)
	return b
}

// WithArgs supplies command line arguments so a --config flag can select
// the file. Pass os.Args[1:].
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// Build creates the tree, declares all schemas, loads the file if one was
// configured or discovered, and runs the validators.
//
// A missing config file is not fatal: the built tree is returned together
// with an error wrapping ErrConfigNotFound, and the caller decides whether
// the file was optional.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	c := NewWithSettings(Settings{EnvPrefix: b.envPrefix})

	for _, sd := range b.structs {
		if err := c.DeclareStruct(sd.prefix, sd.value); err != nil {
			return nil, err
		}
	}
	for _, schema := range b.schemas {
		if err := c.Declare(schema); err != nil {
			return nil, err
		}
	}

	file := b.file
	if file == "" && b.discovery != nil {
		file = b.discovery.Discover(b.args)
	}

	var loadErr error
	if file != "" {
		adapter, err := b.adapterFor(c, file)
		if err != nil {
			return nil, err
		}
		if err := adapter.LoadFile(file, false); err != nil {
			if !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}
			loadErr = err
		}
	}

	for _, validate := range b.validators {
		if err := validate(c); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return c, loadErr
}

// MustBuild is like Build but panics on any error, including a missing
// file.
func (b *Builder) MustBuild() *Config {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// BuildAndScan builds the tree and decodes it into a struct pointer. A
// missing config file is reported the same way as in Build.
func (b *Builder) BuildAndScan(target any) (*Config, error) {
	c, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}
	if scanErr := c.Scan(target); scanErr != nil {
		return nil, scanErr
	}
	return c, err
}

func (b *Builder) adapterFor(c *Config, file string) (*Adapter, error) {
	switch b.format {
	case FormatTOML:
		return c.TOML(), nil
	case FormatJSON:
		return c.JSON(), nil
	case FormatYAML:
		return c.YAML(), nil
	}
	return c.AdapterFor(file)
}
