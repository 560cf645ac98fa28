package configmanager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReaderWriter translates between a section tree and one serialization
// format. Implementations are stateless.
type ReaderWriter interface {
	// Format returns the format name ("toml", "json", "yaml").
	Format() string

	// Load parses data and applies the values to the section.
	Load(s *Section, data []byte, asDefaults bool) error

	// Dump serializes the section's values.
	Dump(s *Section, withDefaults bool) ([]byte, error)
}

// Adapter binds one section (usually a tree root) to one format and adds
// file, string and stream transport on top of the format's ReaderWriter.
// The tree itself stays format-agnostic.
type Adapter struct {
	section *Section
	rw      ReaderWriter
}

// NewAdapter binds a section to a format.
func NewAdapter(section *Section, rw ReaderWriter) *Adapter {
	return &Adapter{section: section, rw: rw}
}

// Format returns the adapter's format name.
func (a *Adapter) Format() string { return a.rw.Format() }

// LoadFile reads and applies a file. A missing file is reported as an
// error wrapping ErrConfigNotFound so callers can treat it as optional.
func (a *Adapter) LoadFile(path string, asDefaults bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := a.rw.Load(a.section, data, asDefaults); err != nil {
		return fmt.Errorf("failed to load %s file %s: %w", a.Format(), path, err)
	}
	return nil
}

// LoadString applies serialized values from a string.
func (a *Adapter) LoadString(data string, asDefaults bool) error {
	return a.rw.Load(a.section, []byte(data), asDefaults)
}

// LoadReader applies serialized values from a stream.
func (a *Adapter) LoadReader(r io.Reader, asDefaults bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read config stream: %w", err)
	}
	return a.rw.Load(a.section, data, asDefaults)
}

// DumpFile serializes the section and writes it to path atomically.
func (a *Adapter) DumpFile(path string, withDefaults bool) error {
	data, err := a.rw.Dump(a.section, withDefaults)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", a.Format(), err)
	}
	return atomicWriteFile(path, data)
}

// DumpString serializes the section to a string.
func (a *Adapter) DumpString(withDefaults bool) (string, error) {
	data, err := a.rw.Dump(a.section, withDefaults)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s: %w", a.Format(), err)
	}
	return string(data), nil
}

// DumpWriter serializes the section to a stream.
func (a *Adapter) DumpWriter(w io.Writer, withDefaults bool) error {
	data, err := a.rw.Dump(a.section, withDefaults)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", a.Format(), err)
	}
	_, err = w.Write(data)
	return err
}

// StoreExists reports whether a regular file exists at path.
func (a *Adapter) StoreExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// atomicWriteFile writes via a temp file in the target directory plus
// rename, so readers never observe a partial file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// detectFileFormat maps a file extension to a format name.
func detectFileFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

type tomlReaderWriter struct{}

func (tomlReaderWriter) Format() string { return FormatTOML }

func (tomlReaderWriter) Load(s *Section, data []byte, asDefaults bool) error {
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return err
	}
	return s.LoadValues(values, asDefaults)
}

func (tomlReaderWriter) Dump(s *Section, withDefaults bool) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = ""
	if err := encoder.Encode(s.DumpValues(withDefaults)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonReaderWriter struct{}

func (jsonReaderWriter) Format() string { return FormatJSON }

func (jsonReaderWriter) Load(s *Section, data []byte, asDefaults bool) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return err
	}
	normalized, ok := normalizeJSON(values).(map[string]any)
	if !ok {
		return fmt.Errorf("top-level JSON value must be an object")
	}
	return s.LoadValues(normalized, asDefaults)
}

func (jsonReaderWriter) Dump(s *Section, withDefaults bool) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.DumpValues(withDefaults)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeJSON rewrites json.Number values to int64 where they fit and
// float64 otherwise, recursing through objects and arrays.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeJSON(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeJSON(e)
		}
		return t
	default:
		return v
	}
}

type yamlReaderWriter struct{}

func (yamlReaderWriter) Format() string { return FormatYAML }

func (yamlReaderWriter) Load(s *Section, data []byte, asDefaults bool) error {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return err
	}
	return s.LoadValues(normalizeYAML(values).(map[string]any), asDefaults)
}

func (yamlReaderWriter) Dump(s *Section, withDefaults bool) ([]byte, error) {
	return yaml.Marshal(s.DumpValues(withDefaults))
}

// normalizeYAML rewrites map[any]any nodes (produced by older YAML
// documents with non-string keys) into map[string]any and int into int64.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	case int:
		return int64(t)
	default:
		return v
	}
}
