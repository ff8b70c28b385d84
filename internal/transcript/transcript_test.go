package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentValidate(t *testing.T) {
	t.Run("should accept a well-formed segment", func(t *testing.T) {
		seg := Segment{Text: "hello", Start: 1.0, End: 2.0}
		assert.NoError(t, seg.Validate())
	})

	t.Run("should reject a negative start", func(t *testing.T) {
		seg := Segment{Text: "hello", Start: -0.5, End: 2.0}
		assert.Error(t, seg.Validate())
	})

	t.Run("should reject end before start", func(t *testing.T) {
		seg := Segment{Text: "hello", Start: 2.0, End: 1.0}
		assert.Error(t, seg.Validate())
	})
}

func TestTranscriptValidate(t *testing.T) {
	t.Run("should accept chronological segments", func(t *testing.T) {
		tr := Transcript{
			Segments: []Segment{
				{Text: "one", Start: 0, End: 1},
				{Text: "two", Start: 1, End: 2},
			},
			Duration: 2,
		}
		assert.NoError(t, tr.Validate())
	})

	t.Run("should reject out-of-order segments", func(t *testing.T) {
		tr := Transcript{
			Segments: []Segment{
				{Text: "two", Start: 1, End: 2},
				{Text: "one", Start: 0, End: 1},
			},
		}
		assert.Error(t, tr.Validate())
	})

	t.Run("should accept an empty transcript", func(t *testing.T) {
		tr := Transcript{}
		assert.NoError(t, tr.Validate())
	})
}

func TestDeriveDuration(t *testing.T) {
	t.Run("should use the last segment's end", func(t *testing.T) {
		// Arrange
		tr := Transcript{
			Segments: []Segment{
				{Text: "one", Start: 0, End: 1},
				{Text: "two", Start: 1, End: 7.5},
			},
		}

		// Act
		tr.DeriveDuration()

		// Assert
		assert.Equal(t, 7.5, tr.Duration)
	})

	t.Run("should be zero for an empty transcript", func(t *testing.T) {
		// Arrange
		tr := Transcript{Duration: 99}

		// Act
		tr.DeriveDuration()

		// Assert
		assert.Equal(t, 0.0, tr.Duration)
	})
}

func TestCache(t *testing.T) {
	t.Run("should miss before put and hit after", func(t *testing.T) {
		// Arrange
		cache := NewCache()
		tr := &Transcript{Text: "hello"}

		// Act & Assert
		_, ok := cache.Get("video.mp4")
		assert.False(t, ok)

		cache.Put("video.mp4", tr)
		got, ok := cache.Get("video.mp4")
		require.True(t, ok)
		assert.Same(t, tr, got)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("should miss after invalidation", func(t *testing.T) {
		// Arrange
		cache := NewCache()
		cache.Put("video.mp4", &Transcript{})

		// Act
		cache.Invalidate("video.mp4")

		// Assert
		_, ok := cache.Get("video.mp4")
		assert.False(t, ok)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("should replace an existing entry on put", func(t *testing.T) {
		// Arrange
		cache := NewCache()
		cache.Put("video.mp4", &Transcript{Text: "old"})
		replacement := &Transcript{Text: "new"}

		// Act
		cache.Put("video.mp4", replacement)

		// Assert
		got, ok := cache.Get("video.mp4")
		require.True(t, ok)
		assert.Same(t, replacement, got)
	})
}
