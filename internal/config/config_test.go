package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	t.Run("should provide sensible defaults", func(t *testing.T) {
		// Act
		cfg := NewConfiguration()

		// Assert
		assert.Equal(t, "./data/timelines", cfg.GetTimelineDir())
		assert.Equal(t, "./data/workspace", cfg.GetWorkspaceDir())
		assert.Equal(t, "https://api.openai.com/v1", cfg.GetWhisperBaseURL())
		assert.Equal(t, "whisper-1", cfg.GetWhisperModel())
		assert.Empty(t, cfg.GetWhisperAPIKey())
		assert.Equal(t, "ffmpeg", cfg.GetFFmpegPath())
		assert.Equal(t, "ffprobe", cfg.GetFFprobePath())
	})
}

func TestNewConfigurationFromFile(t *testing.T) {
	t.Run("should load settings from a yaml file", func(t *testing.T) {
		// Arrange
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		content := `
storage:
  timeline_dir: /var/lib/videoeditor/timelines
whisper:
  model: whisper-large-v3
ffmpeg:
  path: /opt/ffmpeg/bin/ffmpeg
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		// Act
		cfg, err := NewConfigurationFromFile(configFile)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/videoeditor/timelines", cfg.GetTimelineDir())
		assert.Equal(t, "whisper-large-v3", cfg.GetWhisperModel())
		assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.GetFFmpegPath())
		assert.Equal(t, "./data/workspace", cfg.GetWorkspaceDir(), "unset keys keep their defaults")
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		// Act
		_, err := NewConfigurationFromFile("/nonexistent/config.yaml")

		// Assert
		assert.Error(t, err)
	})
}

func TestNewConfigurationFromEnv(t *testing.T) {
	t.Run("should read mapped environment variables", func(t *testing.T) {
		// Arrange
		t.Setenv("TIMELINE_DIR", "/tmp/timelines")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("WHISPER_MODEL", "whisper-large-v3")

		// Act
		cfg, err := NewConfigurationFromEnv()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "/tmp/timelines", cfg.GetTimelineDir())
		assert.Equal(t, "sk-test", cfg.GetWhisperAPIKey())
		assert.Equal(t, "whisper-large-v3", cfg.GetWhisperModel())
	})

	t.Run("should fall back to defaults when env is unset", func(t *testing.T) {
		// Act
		cfg, err := NewConfigurationFromEnv()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ffmpeg", cfg.GetFFmpegPath())
	})
}
