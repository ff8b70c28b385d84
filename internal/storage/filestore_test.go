package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("should create the storage directory", func(t *testing.T) {
		// Arrange
		dir := filepath.Join(t.TempDir(), "nested", "timelines")

		// Act
		_, err := NewFileStore(dir)

		// Assert
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("should reject an empty directory", func(t *testing.T) {
		_, err := NewFileStore("")
		assert.Error(t, err)
	})
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Run("should load exactly what was saved", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		record := []byte(`{"id":"abc","name":"test"}`)

		// Act
		require.NoError(t, fs.Save("abc", record))
		loaded, err := fs.Load("abc")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, record, loaded)
	})

	t.Run("should replace the whole record on save", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, fs.Save("abc", []byte("first version with a longer body")))

		// Act
		require.NoError(t, fs.Save("abc", []byte("second")))
		loaded, err := fs.Load("abc")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run("should report not found for a missing record", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		// Act
		_, err = fs.Load("missing")

		// Assert
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFileStoreDelete(t *testing.T) {
	t.Run("should remove the record", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, fs.Save("abc", []byte("data")))

		// Act
		require.NoError(t, fs.Delete("abc"))

		// Assert
		_, err = fs.Load("abc")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should report not found for a missing record", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		// Act & Assert
		assert.ErrorIs(t, fs.Delete("missing"), ErrNotFound)
	})
}

func TestFileStoreList(t *testing.T) {
	t.Run("should list saved record ids", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, fs.Save("one", []byte("1")))
		require.NoError(t, fs.Save("two", []byte("2")))

		// Act
		ids, err := fs.List()

		// Assert
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"one", "two"}, ids)
	})

	t.Run("should return empty list for an empty store", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		// Act
		ids, err := fs.List()

		// Assert
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestFileStoreIDValidation(t *testing.T) {
	t.Run("should reject ids that escape the store directory", func(t *testing.T) {
		// Arrange
		fs, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		// Act & Assert
		for _, id := range []string{"", "..", "a/b", `a\b`, "../escape"} {
			assert.Error(t, fs.Save(id, []byte("x")), "id %q must be rejected", id)
		}
	})
}
