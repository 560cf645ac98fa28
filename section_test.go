package configmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) *Section {
	t.Helper()
	root := NewSection()
	require.NoError(t, root.Declare(map[string]any{
		"uploads": map[string]any{
			"enabled": false,
			"threads": map[string]any{"@type": "int", "@default": int64(1)},
			"db": map[string]any{
				"user": "root",
			},
		},
		"greeting": "hello",
	}))
	return root
}

// TestSectionLookup tests path addressing
func TestSectionLookup(t *testing.T) {
	root := buildTree(t)

	t.Run("DottedPath", func(t *testing.T) {
		item, err := root.GetItem("uploads.db.user")
		require.NoError(t, err)
		assert.Equal(t, "user", item.Name())
		assert.Equal(t, "uploads.db.user", item.Path().String())
	})

	t.Run("SegmentsEquivalentToDotted", func(t *testing.T) {
		a, err := root.Get("uploads", "db", "user")
		require.NoError(t, err)
		b, err := root.Get("uploads.db.user")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("MissReportsNotFound", func(t *testing.T) {
		_, err := root.Get("uploads.nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ItemInMiddleOfPath", func(t *testing.T) {
		_, err := root.Get("greeting.deeper")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		_, err := root.GetSection("greeting")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = root.GetItem("uploads")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, root.Has("uploads.db.user"))
		assert.False(t, root.Has("uploads.nope"))
	})

	t.Run("LenCountsDirectChildrenOnly", func(t *testing.T) {
		assert.Equal(t, 2, root.Len())
		uploads, err := root.GetSection("uploads")
		require.NoError(t, err)
		assert.Equal(t, 3, uploads.Len())
	})
}

// TestSectionAdd tests adding nodes and name validation
func TestSectionAdd(t *testing.T) {
	t.Run("DuplicateNameRejected", func(t *testing.T) {
		root := NewSection()
		require.NoError(t, root.AddItem("a", MustNewItem(ItemSpec{})))
		err := root.AddItem("a", MustNewItem(ItemSpec{}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDeclaration)
	})

	t.Run("InvalidNamesRejected", func(t *testing.T) {
		root := NewSection()
		for _, name := range []string{"", "a.b", "a b", "a/b"} {
			err := root.AddItem(name, MustNewItem(ItemSpec{}))
			assert.ErrorIs(t, err, ErrDeclaration, "name %q", name)
		}
	})

	t.Run("ReparentingRejected", func(t *testing.T) {
		root := NewSection()
		item := MustNewItem(ItemSpec{})
		require.NoError(t, root.AddItem("a", item))

		other := NewSection()
		err := other.AddItem("b", item)
		assert.ErrorIs(t, err, ErrDeclaration)
	})
}

// TestDumpValues tests exporting resolved values
func TestDumpValues(t *testing.T) {
	root := buildTree(t)

	t.Run("WithDefaults", func(t *testing.T) {
		values := root.DumpValues(true)
		assert.Equal(t, map[string]any{
			"uploads": map[string]any{
				"enabled": false,
				"threads": int64(1),
				"db":      map[string]any{"user": "root"},
			},
			"greeting": "hello",
		}, values)
	})

	t.Run("WithoutDefaultsEmptyUntilSet", func(t *testing.T) {
		assert.Empty(t, root.DumpValues(false))

		require.NoError(t, root.SetValue("uploads.threads", "5"))
		assert.Equal(t, map[string]any{
			"uploads": map[string]any{"threads": int64(5)},
		}, root.DumpValues(false))
	})

	t.Run("Flat", func(t *testing.T) {
		flat := root.DumpFlat(false)
		assert.Equal(t, map[string]any{"uploads.threads": int64(5)}, flat)
	})
}

// TestLoadValues tests applying plain value mappings
func TestLoadValues(t *testing.T) {
	t.Run("KnownItemsAreSet", func(t *testing.T) {
		root := buildTree(t)
		err := root.LoadValues(map[string]any{
			"uploads": map[string]any{"threads": "7", "enabled": "yes"},
		}, false)
		require.NoError(t, err)

		threads, err := root.Int64("uploads.threads")
		require.NoError(t, err)
		assert.Equal(t, int64(7), threads)

		enabled, err := root.Bool("uploads.enabled")
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("UnknownNamesSkipped", func(t *testing.T) {
		root := buildTree(t)
		require.NoError(t, root.LoadValues(map[string]any{"mystery": 1}, false))
		assert.False(t, root.Has("mystery"))
	})

	t.Run("AsDefaultsDeclaresUnknowns", func(t *testing.T) {
		root := buildTree(t)
		require.NoError(t, root.LoadValues(map[string]any{
			"cache": map[string]any{"ttl": int64(60)},
		}, true))

		ttl, err := root.GetItem("cache.ttl")
		require.NoError(t, err)
		assert.True(t, ttl.IsDefault())
		assert.Equal(t, int64(60), ttl.Default())
	})

	t.Run("CastFailureSurfaces", func(t *testing.T) {
		root := buildTree(t)
		err := root.LoadValues(map[string]any{
			"uploads": map[string]any{"threads": "lots"},
		}, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("ScalarForSectionRejected", func(t *testing.T) {
		root := buildTree(t)
		err := root.LoadValues(map[string]any{"uploads": 5}, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("LoadFlat", func(t *testing.T) {
		root := buildTree(t)
		require.NoError(t, root.LoadFlat(map[string]any{"uploads.threads": 9}, false))
		threads, err := root.Int64("uploads.threads")
		require.NoError(t, err)
		assert.Equal(t, int64(9), threads)
	})
}

// TestSectionReset tests recursive reset and IsDefault
func TestSectionReset(t *testing.T) {
	root := buildTree(t)
	assert.True(t, root.IsDefault())

	require.NoError(t, root.SetValue("uploads.threads", 5))
	require.NoError(t, root.SetValue("greeting", "hi"))
	assert.False(t, root.IsDefault())

	root.Reset()
	assert.True(t, root.IsDefault())

	threads, err := root.Int64("uploads.threads")
	require.NoError(t, err)
	assert.Equal(t, int64(1), threads)
}

// TestSectionClone tests deep copying
func TestSectionClone(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.SetValue("uploads.threads", 5))

	clone := root.Clone()
	assert.Nil(t, clone.Parent())

	// values carried over
	threads, err := clone.Int64("uploads.threads")
	require.NoError(t, err)
	assert.Equal(t, int64(5), threads)

	// independent afterwards
	require.NoError(t, clone.SetValue("uploads.threads", 9))
	threads, err = root.Int64("uploads.threads")
	require.NoError(t, err)
	assert.Equal(t, int64(5), threads)
}
