package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

// setDefaults applies the default settings shared by every constructor
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.timeline_dir", "./data/timelines")
	v.SetDefault("storage.workspace_dir", "./data/workspace")
	v.SetDefault("whisper.base_url", "https://api.openai.com/v1")
	v.SetDefault("whisper.model", "whisper-1")
	v.SetDefault("whisper.api_key", "")
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	// Set up environment variable mapping
	v.SetEnvPrefix("VIDEOEDITOR")
	v.AutomaticEnv()

	// Map specific environment variables
	v.BindEnv("storage.timeline_dir", "TIMELINE_DIR")
	v.BindEnv("storage.workspace_dir", "WORKSPACE_DIR")
	v.BindEnv("whisper.base_url", "WHISPER_BASE_URL")
	v.BindEnv("whisper.model", "WHISPER_MODEL")
	v.BindEnv("whisper.api_key", "OPENAI_API_KEY")
	v.BindEnv("ffmpeg.path", "FFMPEG_PATH")
	v.BindEnv("ffmpeg.ffprobe_path", "FFPROBE_PATH")

	return &Configuration{viper: v}, nil
}

// GetTimelineDir returns the directory holding persisted timeline records
func (c *Configuration) GetTimelineDir() string {
	return c.viper.GetString("storage.timeline_dir")
}

// GetWorkspaceDir returns the directory for intermediate media files
func (c *Configuration) GetWorkspaceDir() string {
	return c.viper.GetString("storage.workspace_dir")
}

// GetWhisperBaseURL returns the transcription API base URL
func (c *Configuration) GetWhisperBaseURL() string {
	return c.viper.GetString("whisper.base_url")
}

// GetWhisperModel returns the configured transcription model
func (c *Configuration) GetWhisperModel() string {
	return c.viper.GetString("whisper.model")
}

// GetWhisperAPIKey returns the transcription API key
func (c *Configuration) GetWhisperAPIKey() string {
	return c.viper.GetString("whisper.api_key")
}

// GetFFmpegPath returns the path to the ffmpeg binary
func (c *Configuration) GetFFmpegPath() string {
	return c.viper.GetString("ffmpeg.path")
}

// GetFFprobePath returns the path to the ffprobe binary
func (c *Configuration) GetFFprobePath() string {
	return c.viper.GetString("ffmpeg.ffprobe_path")
}
