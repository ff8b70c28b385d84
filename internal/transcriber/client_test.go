package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandler767/mcp-video-editor-sub000/internal/transcript"
)

func TestClientTranscribe(t *testing.T) {
	t.Run("should upload the audio and decode a verbose transcript", func(t *testing.T) {
		// Arrange
		audioPath := filepath.Join(t.TempDir(), "audio.wav")
		require.NoError(t, os.WriteFile(audioPath, []byte("RIFFfake"), 0o644))

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/audio/transcriptions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			assert.Equal(t, "verbose_json", r.FormValue("response_format"))
			assert.Equal(t, "word", r.FormValue("timestamp_granularities[]"))

			_, _, err := r.FormFile("file")
			assert.NoError(t, err)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"text": "the quick brown fox",
				"language": "en",
				"duration": 2.0,
				"segments": [
					{"text": "the quick", "start": 0.0, "end": 1.0},
					{"text": "brown fox", "start": 1.0, "end": 2.0}
				],
				"words": [
					{"word": "the", "start": 0.0, "end": 0.4},
					{"word": "quick", "start": 0.5, "end": 0.9},
					{"word": "brown", "start": 1.0, "end": 1.4},
					{"word": "fox", "start": 1.5, "end": 2.0}
				]
			}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key", "whisper-1")

		// Act
		tr, err := client.Transcribe(context.Background(), audioPath)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "the quick brown fox", tr.Text)
		assert.Equal(t, "en", tr.Language)
		assert.Equal(t, 2.0, tr.Duration)
		require.Len(t, tr.Segments, 2)
		assert.Len(t, tr.Segments[0].Words, 2, "words land in the segment containing their start")
		assert.Len(t, tr.Segments[1].Words, 2)
		assert.Equal(t, "brown", tr.Segments[1].Words[0].Word)
	})

	t.Run("should surface the response body on HTTP errors", func(t *testing.T) {
		// Arrange
		audioPath := filepath.Join(t.TempDir(), "audio.wav")
		require.NoError(t, os.WriteFile(audioPath, []byte("RIFFfake"), 0o644))

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid api key"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "bad-key", "whisper-1")

		// Act
		_, err := client.Transcribe(context.Background(), audioPath)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("should fail for a missing audio file", func(t *testing.T) {
		// Arrange
		client := NewClient("http://localhost:0", "key", "whisper-1")

		// Act
		_, err := client.Transcribe(context.Background(), "/nonexistent/audio.wav")

		// Assert
		assert.Error(t, err)
	})
}

func TestToTranscript(t *testing.T) {
	t.Run("should fall back to the reported duration without segments", func(t *testing.T) {
		// Arrange
		vr := &verboseResponse{Text: "hi", Duration: 3.5}

		// Act
		tr := toTranscript(vr)

		// Assert
		assert.Equal(t, 3.5, tr.Duration)
		assert.Empty(t, tr.Segments)
	})

	t.Run("should attach trailing words to the last segment", func(t *testing.T) {
		// Arrange
		vr := &verboseResponse{
			Segments: []struct {
				Text  string  `json:"text"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			}{
				{Text: "only segment", Start: 0, End: 1},
			},
			Words: []transcript.Word{
				{Word: "only", Start: 0, End: 0.4},
				{Word: "segment", Start: 0.5, End: 0.9},
				{Word: "overflow", Start: 1.2, End: 1.5},
			},
		}

		// Act
		tr := toTranscript(vr)

		// Assert
		require.Len(t, tr.Segments, 1)
		assert.Len(t, tr.Segments[0].Words, 3, "words past the last segment end stay on the last segment")
	})
}
