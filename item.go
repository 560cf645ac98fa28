package configmanager

import (
	"fmt"
	"os"
	"reflect"
)

// Item is a leaf of the configuration tree: a typed, self-describing value
// carrier. It knows its type, default, custom override, required flag and
// environment variable source.
//
// Value resolution order is fixed: custom value, then default, then the
// declared environment variable, then the caller-supplied fallback; when all
// are absent resolution fails with ErrRequiredValueMissing.
type Item struct {
	name    string
	section *Section

	typ *Type

	defaultValue any
	hasDefault   bool

	value    any
	hasValue bool

	// The raw string that produced the current value, kept so text formats
	// can round-trip the original notation.
	rawStr string
	hasRaw bool

	required bool

	envvarAuto     bool
	envvarExplicit string
	envvarFunc     func(Path) string
}

// ItemSpec describes an item to be declared. The zero value declares a
// string-typed optional item with no default.
type ItemSpec struct {
	// Name may be left empty when the item is added to a section under an
	// explicit name.
	Name string

	// Type is a tag known to the type registry ("int", "bool", ...). When
	// empty the type is guessed from Default, falling back to "str".
	Type string

	// Default is the default value; nil means no default.
	Default any

	// Required items fail resolution instead of returning nothing.
	Required bool

	// Envvar declares an environment variable override source: true derives
	// the name from the item's path (uppercase, underscore-joined,
	// prefixed with the tree's env prefix), a string names it explicitly,
	// and a func(Path) string computes it.
	Envvar any
}

// NewItem creates a detached item from a spec. The default value, when
// given, is cast to the item's type immediately so that Value always
// returns the canonical form.
func NewItem(spec ItemSpec) (*Item, error) {
	item := &Item{name: spec.Name, required: spec.Required}

	hasDefault := spec.Default != nil && !IsNotSet(spec.Default)

	if spec.Type != "" {
		t, ok := Types.Lookup(spec.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown type tag %q for item %q", ErrDeclaration, spec.Type, spec.Name)
		}
		item.typ = t
	} else if hasDefault {
		t, ok := Types.Guess(spec.Default)
		if !ok {
			return nil, fmt.Errorf("%w: cannot infer type of item %q from default %T", ErrDeclaration, spec.Name, spec.Default)
		}
		item.typ = t
	} else {
		item.typ = StrType
	}

	if hasDefault {
		cast, err := item.typ.Cast(spec.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: default for item %q: %v", ErrInvalidValue, spec.Name, err)
		}
		item.defaultValue = cast
		item.hasDefault = true
	}

	switch ev := spec.Envvar.(type) {
	case nil:
	case bool:
		item.envvarAuto = ev
	case string:
		item.envvarExplicit = ev
	case func(Path) string:
		item.envvarFunc = ev
	default:
		return nil, fmt.Errorf("%w: envvar of item %q must be bool, string or func(Path) string, got %T",
			ErrDeclaration, spec.Name, spec.Envvar)
	}

	return item, nil
}

// MustNewItem is like NewItem but panics on error.
func MustNewItem(spec ItemSpec) *Item {
	item, err := NewItem(spec)
	if err != nil {
		panic(err)
	}
	return item
}

// Name returns the name under which the item was added to its section.
func (i *Item) Name() string { return i.name }

// Parent returns the owning section, or nil for a detached item.
func (i *Item) Parent() *Section { return i.section }

func (i *Item) IsItem() bool    { return true }
func (i *Item) IsSection() bool { return false }

// Path computes the item's path from the tree root.
func (i *Item) Path() Path { return nodePath(i) }

// Type returns the item's type.
func (i *Item) Type() *Type { return i.typ }

// Required reports whether the item must resolve to a value.
func (i *Item) Required() bool { return i.required }

// Default returns the default value, or NotSet when none was declared.
func (i *Item) Default() any {
	if !i.hasDefault {
		return NotSet
	}
	return i.defaultValue
}

// HasDefault reports whether a default value was declared.
func (i *Item) HasDefault() bool { return i.hasDefault }

// HasValue reports whether a custom value is set.
func (i *Item) HasValue() bool { return i.hasValue }

// IsDefault reports whether no custom value is set. A custom value equal to
// the default still counts as an override; only presence matters.
func (i *Item) IsDefault() bool { return !i.hasValue }

// Value resolves the item's value: custom value, default, environment
// variable. Fails with an error wrapping ErrRequiredValueMissing when
// nothing resolves.
func (i *Item) Value() (any, error) {
	return i.resolve(NotSet)
}

// ValueOr resolves like Value but returns fallback instead of failing.
// Passing NotSet behaves exactly like Value. The error is non-nil only when
// an environment variable was found but could not be cast.
func (i *Item) ValueOr(fallback any) (any, error) {
	return i.resolve(fallback)
}

// MustValue is like Value but panics on error.
func (i *Item) MustValue() any {
	v, err := i.Value()
	if err != nil {
		panic(err)
	}
	return v
}

func (i *Item) resolve(fallback any) (any, error) {
	if i.hasValue {
		return i.value, nil
	}
	if i.hasDefault {
		return i.defaultValue, nil
	}
	if name, ok := i.Envvar(); ok {
		if raw, found := os.LookupEnv(name); found {
			cast, err := i.typ.Cast(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: item %q from environment variable %s=%q: %v",
					ErrInvalidValue, i.pathLabel(), name, raw, err)
			}
			return cast, nil
		}
	}
	if !IsNotSet(fallback) {
		return fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrRequiredValueMissing, i.pathLabel())
}

// Set casts v through the item's type and stores it as the custom value.
// Fires the item_value_changed hook, which change-tracking scopes listen on.
func (i *Item) Set(v any) error {
	cast, err := i.typ.Cast(v)
	if err != nil {
		return fmt.Errorf("%w: item %q: cannot cast %v (%T): %v", ErrInvalidValue, i.pathLabel(), v, v, err)
	}

	oldValue := any(NotSet)
	if i.hasValue {
		oldValue = i.value
	}
	oldRaw := any(NotSet)
	if i.hasRaw {
		oldRaw = i.rawStr
	}

	i.value = cast
	i.hasValue = true

	// Keep the original string notation when a string was cast to a
	// non-string type.
	if s, isStr := v.(string); isStr && i.typ != StrType {
		i.rawStr = s
		i.hasRaw = true
	} else {
		i.rawStr = ""
		i.hasRaw = false
	}

	newRaw := any(NotSet)
	if i.hasRaw {
		newRaw = i.rawStr
	}

	if i.section != nil {
		i.section.dispatch(HookValueChanged, &HookContext{
			Name:     i.name,
			Section:  i.section,
			Node:     i,
			Item:     i,
			OldValue: oldValue,
			NewValue: cast,
			OldRaw:   oldRaw,
			NewRaw:   newRaw,
		})
	}
	return nil
}

// SetDefault casts v through the item's type and stores it as the default.
func (i *Item) SetDefault(v any) error {
	cast, err := i.typ.Cast(v)
	if err != nil {
		return fmt.Errorf("%w: item %q: cannot cast default %v (%T): %v", ErrInvalidValue, i.pathLabel(), v, v, err)
	}
	i.defaultValue = cast
	i.hasDefault = true
	return nil
}

// Reset clears the custom value back to not-set. Subsequent Value calls
// fall through to the default.
func (i *Item) Reset() {
	i.value = nil
	i.hasValue = false
	i.rawStr = ""
	i.hasRaw = false
}

// restore puts back a previously observed state without casting or firing
// hooks. Used by changeset rollback.
func (i *Item) restore(value, raw any) {
	if IsNotSet(value) {
		i.Reset()
		return
	}
	i.value = value
	i.hasValue = true
	if s, ok := raw.(string); ok {
		i.rawStr = s
		i.hasRaw = true
	} else {
		i.rawStr = ""
		i.hasRaw = false
	}
}

// Equal compares the item's resolved value against v. This is the explicit
// accessor replacing value-like comparison of items themselves.
func (i *Item) Equal(v any) bool {
	resolved, err := i.resolve(NotSet)
	if err != nil {
		return IsNotSet(v)
	}
	return reflect.DeepEqual(resolved, v)
}

// Str resolves the value and converts it to a string.
func (i *Item) Str() (string, error) {
	v, err := i.Value()
	if err != nil {
		return "", err
	}
	return toString(v)
}

// Int64 resolves the value and converts it to an int64.
func (i *Item) Int64() (int64, error) {
	v, err := i.Value()
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}

// Bool resolves the value and converts it to a bool.
func (i *Item) Bool() (bool, error) {
	v, err := i.Value()
	if err != nil {
		return false, err
	}
	return toBool(v)
}

// Float64 resolves the value and converts it to a float64.
func (i *Item) Float64() (float64, error) {
	v, err := i.Value()
	if err != nil {
		return 0, err
	}
	return toFloat64(v)
}

// StringList resolves the value and converts it to a []string.
func (i *Item) StringList() ([]string, error) {
	v, err := i.Value()
	if err != nil {
		return nil, err
	}
	return toStringList(v)
}

func (i *Item) pathLabel() string {
	if i.section == nil {
		return i.name
	}
	return i.Path().String()
}

// clone returns a detached deep copy of the item.
func (i *Item) clone() *Item {
	copied := *i
	copied.section = nil
	return &copied
}

// equivalent reports whether two items declare the same schema: same type,
// default, required flag and envvar declaration. Items with envvar
// functions are never equivalent because functions cannot be compared.
func (i *Item) equivalent(other *Item) bool {
	if i.typ != other.typ || i.required != other.required {
		return false
	}
	if i.hasDefault != other.hasDefault {
		return false
	}
	if i.hasDefault && !reflect.DeepEqual(i.defaultValue, other.defaultValue) {
		return false
	}
	if i.envvarAuto != other.envvarAuto || i.envvarExplicit != other.envvarExplicit {
		return false
	}
	if i.envvarFunc != nil || other.envvarFunc != nil {
		return false
	}
	return true
}
