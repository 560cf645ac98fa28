package configmanager

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTypeGuessing tests type inference from sample values
func TestTypeGuessing(t *testing.T) {
	registry := NewTypeRegistry()

	t.Run("BoolBeforeInt", func(t *testing.T) {
		// true must not be mistaken for the integer 1
		typ, ok := registry.Guess(true)
		require.True(t, ok)
		assert.Equal(t, BoolType, typ)
	})

	t.Run("BasicValues", func(t *testing.T) {
		cases := []struct {
			value    any
			expected *Type
		}{
			{int64(5), IntType},
			{5, IntType},
			{uint8(5), IntType},
			{1.5, FloatType},
			{[]string{"a"}, ListType},
			{[]any{"a", "b"}, ListType},
			{map[string]any{"k": "v"}, DictType},
			{"hello", StrType},
		}
		for _, tc := range cases {
			typ, ok := registry.Guess(tc.value)
			require.True(t, ok, "value %v", tc.value)
			assert.Equal(t, tc.expected, typ, "value %v", tc.value)
		}
	})

	t.Run("NilGuessesString", func(t *testing.T) {
		typ, ok := registry.Guess(nil)
		require.True(t, ok)
		assert.Equal(t, StrType, typ)

		typ, ok = registry.Guess(NotSet)
		require.True(t, ok)
		assert.Equal(t, StrType, typ)
	})
}

// TestTypeLookup tests tag-based type resolution
func TestTypeLookup(t *testing.T) {
	registry := NewTypeRegistry()

	aliases := map[string]*Type{
		"str":     StrType,
		"string":  StrType,
		"int":     IntType,
		"integer": IntType,
		"bool":    BoolType,
		"boolean": BoolType,
		"float":   FloatType,
		"double":  FloatType,
		"list":    ListType,
		"dict":    DictType,
		"map":     DictType,
	}
	for alias, expected := range aliases {
		typ, ok := registry.Lookup(alias)
		require.True(t, ok, "alias %q", alias)
		assert.Equal(t, expected, typ, "alias %q", alias)
	}

	_, ok := registry.Lookup("nosuchtype")
	assert.False(t, ok)
}

// TestTypeCasting tests the built-in cast functions
func TestTypeCasting(t *testing.T) {
	t.Run("BoolTokens", func(t *testing.T) {
		for _, token := range []string{"yes", "true", "y", "t", "on", "1", "YES", " True "} {
			v, err := BoolType.Cast(token)
			require.NoError(t, err, "token %q", token)
			assert.Equal(t, true, v, "token %q", token)
		}
		for _, token := range []string{"no", "false", "n", "f", "off", "0"} {
			v, err := BoolType.Cast(token)
			require.NoError(t, err, "token %q", token)
			assert.Equal(t, false, v, "token %q", token)
		}
		_, err := BoolType.Cast("maybe")
		assert.Error(t, err)
	})

	t.Run("IntFromString", func(t *testing.T) {
		v, err := IntType.Cast("42")
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)

		// base 0 parsing handles hex notation
		v, err = IntType.Cast("0xFF")
		require.NoError(t, err)
		assert.Equal(t, int64(255), v)

		_, err = IntType.Cast("not a number")
		assert.Error(t, err)
	})

	t.Run("ListFromCommaString", func(t *testing.T) {
		v, err := ListType.Cast("a,b,c")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, v)

		v, err = ListType.Cast([]any{1, "b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "b"}, v)
	})

	t.Run("FloatFromString", func(t *testing.T) {
		v, err := FloatType.Cast("1.25")
		require.NoError(t, err)
		assert.Equal(t, 1.25, v)
	})

	t.Run("StringFromFloat32", func(t *testing.T) {
		// float32 formats at its own precision, not widened to float64
		v, err := StrType.Cast(float32(0.1))
		require.NoError(t, err)
		assert.Equal(t, "0.1", v)
	})

	t.Run("DictRejectsNonMap", func(t *testing.T) {
		_, err := DictType.Cast("not a map")
		assert.Error(t, err)
	})
}

// TestCustomTypeRegistration tests registering user-defined types
func TestCustomTypeRegistration(t *testing.T) {
	registry := NewTypeRegistry()

	upper := NewType("upper", []string{"upper"}, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return strings.ToUpper(s), nil
	}, nil)

	require.NoError(t, registry.Register(upper))

	typ, ok := registry.Lookup("upper")
	require.True(t, ok)
	v, err := typ.Cast("hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", v)

	t.Run("DuplicateAliasRejected", func(t *testing.T) {
		clash := NewType("myint", []string{"int"}, func(v any) (any, error) { return v, nil }, nil)
		err := registry.Register(clash)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDeclaration)
	})

	t.Run("NilIncludesNeverGuessed", func(t *testing.T) {
		// a type registered without includes does not hijack guessing
		typ, ok := registry.Guess("plain string")
		require.True(t, ok)
		assert.Equal(t, StrType, typ)
	})
}
