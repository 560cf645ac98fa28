package configmanager

import (
	"fmt"
	"reflect"
)

// Type describes how item values of one kind are recognised and cast.
// Casting converts an external representation (most commonly a string
// produced by a text-based format) to the canonical in-memory form.
type Type struct {
	name     string
	aliases  []string
	cast     func(any) (any, error)
	includes func(any) bool
}

// NewType creates a custom type for registration with the type registry.
// includes may be nil, in which case the type is never guessed from a value.
func NewType(name string, aliases []string, cast func(any) (any, error), includes func(any) bool) *Type {
	if includes == nil {
		includes = func(any) bool { return false }
	}
	return &Type{name: name, aliases: aliases, cast: cast, includes: includes}
}

// Name returns the canonical type name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// Cast converts v to the canonical form of this type.
func (t *Type) Cast(v any) (any, error) { return t.cast(v) }

// Includes reports whether v already belongs to this type. Used for type
// guessing from default values.
func (t *Type) Includes(v any) bool { return t.includes(v) }

// Built-in types. Integers canonicalise to int64, floats to float64, lists
// to []string.
var (
	StrType = &Type{
		name:    "str",
		aliases: []string{"str", "string"},
		cast:    func(v any) (any, error) { return toString(v) },
		includes: func(v any) bool {
			_, ok := v.(string)
			return ok
		},
	}

	IntType = &Type{
		name:    "int",
		aliases: []string{"int", "integer"},
		cast:    func(v any) (any, error) { return toInt64(v) },
		includes: func(v any) bool {
			switch reflect.ValueOf(v).Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				return true
			}
			return false
		},
	}

	BoolType = &Type{
		name:    "bool",
		aliases: []string{"bool", "boolean"},
		cast:    func(v any) (any, error) { return toBool(v) },
		includes: func(v any) bool {
			_, ok := v.(bool)
			return ok
		},
	}

	FloatType = &Type{
		name:    "float",
		aliases: []string{"float", "double"},
		cast:    func(v any) (any, error) { return toFloat64(v) },
		includes: func(v any) bool {
			switch v.(type) {
			case float32, float64:
				return true
			}
			return false
		},
	}

	ListType = &Type{
		name:    "list",
		aliases: []string{"list", "strings"},
		cast:    func(v any) (any, error) { return toStringList(v) },
		includes: func(v any) bool {
			switch v.(type) {
			case []string, []any:
				return true
			}
			return false
		},
	}

	DictType = &Type{
		name:    "dict",
		aliases: []string{"dict", "map"},
		cast: func(v any) (any, error) {
			if m, ok := v.(map[string]any); ok {
				return m, nil
			}
			return nil, fmt.Errorf("cannot convert type %T to map", v)
		},
		includes: func(v any) bool {
			_, ok := v.(map[string]any)
			return ok
		},
	}
)

// TypeRegistry maps type tags to types and guesses types from sample
// values. Bool is checked before int so that true is not mistaken for 1.
type TypeRegistry struct {
	guessOrder []*Type
	byAlias    map[string]*Type
}

// NewTypeRegistry returns a registry populated with the built-in types.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{byAlias: make(map[string]*Type)}
	for _, t := range []*Type{BoolType, IntType, FloatType, ListType, DictType, StrType} {
		r.guessOrder = append(r.guessOrder, t)
		for _, alias := range t.aliases {
			r.byAlias[alias] = t
		}
	}
	return r
}

// Types is the registry consulted at item declaration time. Custom types
// registered here become available to every configuration tree in the
// process.
var Types = NewTypeRegistry()

// Register adds a custom type. Registering an alias that is already taken
// is a declaration error.
func (r *TypeRegistry) Register(t *Type) error {
	if t == nil || t.name == "" {
		return fmt.Errorf("%w: type must have a name", ErrDeclaration)
	}
	aliases := t.aliases
	if len(aliases) == 0 {
		aliases = []string{t.name}
	}
	for _, alias := range aliases {
		if _, taken := r.byAlias[alias]; taken {
			return fmt.Errorf("%w: type alias %q is already registered", ErrDeclaration, alias)
		}
	}
	for _, alias := range aliases {
		r.byAlias[alias] = t
	}
	r.guessOrder = append(r.guessOrder, t)
	return nil
}

// Lookup resolves a type tag (name or alias) to a type.
func (r *TypeRegistry) Lookup(tag string) (*Type, bool) {
	t, ok := r.byAlias[tag]
	return t, ok
}

// Guess picks the type of a sample value by its runtime type.
func (r *TypeRegistry) Guess(v any) (*Type, bool) {
	if v == nil || IsNotSet(v) {
		return StrType, true
	}
	for _, t := range r.guessOrder {
		if t.Includes(v) {
			return t, true
		}
	}
	return nil, false
}
