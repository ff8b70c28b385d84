package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/align"
	"github.com/chandler767/mcp-video-editor-sub000/internal/config"
	"github.com/chandler767/mcp-video-editor-sub000/internal/logger"
	"github.com/chandler767/mcp-video-editor-sub000/internal/media"
	"github.com/chandler767/mcp-video-editor-sub000/internal/storage"
	"github.com/chandler767/mcp-video-editor-sub000/internal/timeline"
	"github.com/chandler767/mcp-video-editor-sub000/internal/transcriber"
	"github.com/chandler767/mcp-video-editor-sub000/internal/transcript"
)

// Application wires the edit-planning core to its collaborators: the
// transcription client, the ffmpeg executor and the timeline store
type Application struct {
	config      *config.Configuration
	zapLogger   *zap.Logger
	cache       *transcript.Cache
	engine      *align.Engine
	timelines   *timeline.Manager
	transcriber *transcriber.Client
	executor    *media.Executor
}

// EditResult describes a completed transcript-driven edit
type EditResult struct {
	Output          string            `json:"output"`
	KeepRanges      []align.TimeRange `json:"keep_ranges"`
	RemovedRanges   []align.TimeRange `json:"removed_ranges,omitempty"`
	UnmatchedScript []string          `json:"unmatched_script,omitempty"`
	OperationID     string            `json:"operation_id,omitempty"`
	TimelineID      string            `json:"timeline_id,omitempty"`
}

// NewApplication creates a new application instance with all components initialized
func NewApplication() (*Application, error) {
	// Load configuration from config file if CONFIG_PATH is set, otherwise use environment variables
	var cfg *config.Configuration
	var err error

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		cfg, err = config.NewConfigurationFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.NewConfigurationFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to load config from environment: %w", err)
		}
	}

	// Create zap logger - centralized structured logging
	zapLogger := logger.NewLogger()

	return NewApplicationWithConfig(cfg, zapLogger)
}

// NewApplicationWithConfig creates an application instance from an explicit
// configuration and logger
func NewApplicationWithConfig(cfg *config.Configuration, zapLogger *zap.Logger) (*Application, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	store, err := storage.NewFileStore(cfg.GetTimelineDir())
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline store: %w", err)
	}

	if err := os.MkdirAll(cfg.GetWorkspaceDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	return &Application{
		config:      cfg,
		zapLogger:   zapLogger,
		cache:       transcript.NewCache(),
		engine:      align.NewEngineWithLogger(zapLogger),
		timelines:   timeline.NewManagerWithLogger(store, zapLogger),
		transcriber: transcriber.NewClientWithLogger(cfg.GetWhisperBaseURL(), cfg.GetWhisperAPIKey(), cfg.GetWhisperModel(), zapLogger),
		executor:    media.NewExecutorWithLogger(cfg.GetFFmpegPath(), cfg.GetFFprobePath(), zapLogger),
	}, nil
}

// Timelines returns the timeline manager
func (a *Application) Timelines() *timeline.Manager {
	return a.timelines
}

// Engine returns the transcript alignment engine
func (a *Application) Engine() *align.Engine {
	return a.engine
}

// TranscribeVideo returns the transcript for a video, extracting its audio
// and calling the transcription API on a cache miss
func (a *Application) TranscribeVideo(ctx context.Context, videoPath string) (*transcript.Transcript, error) {
	if tr, ok := a.cache.Get(videoPath); ok {
		a.zapLogger.Debug("transcript cache hit", zap.String("video_path", videoPath))
		return tr, nil
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	wavPath := filepath.Join(a.config.GetWorkspaceDir(), base+"_audio_16k.wav")

	if err := a.executor.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		return nil, fmt.Errorf("failed to extract audio from %s: %w", videoPath, err)
	}
	defer os.Remove(wavPath)

	tr, err := a.transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe %s: %w", videoPath, err)
	}

	a.cache.Put(videoPath, tr)
	return tr, nil
}

// RemoveByTranscript cuts every spoken occurrence of the given text out of
// the video, writing the result to output. When timelineID is non-empty the
// edit is recorded on that timeline.
func (a *Application) RemoveByTranscript(ctx context.Context, videoPath, textToRemove, output, timelineID string) (*EditResult, error) {
	started := time.Now()

	tr, err := a.TranscribeVideo(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	removeRanges := a.engine.CalculateTimestampsToRemove(tr, textToRemove)
	if len(removeRanges) == 0 {
		return nil, fmt.Errorf("text %q not found in transcript of %s", textToRemove, videoPath)
	}

	duration, err := a.mediaDuration(ctx, videoPath, tr)
	if err != nil {
		return nil, err
	}

	keepRanges := align.InvertTimeRanges(removeRanges, duration)
	if err := a.executor.TrimRanges(ctx, videoPath, keepRanges, output); err != nil {
		return nil, fmt.Errorf("failed to trim %s: %w", videoPath, err)
	}
	a.cache.Invalidate(output)

	result := &EditResult{
		Output:        output,
		KeepRanges:    keepRanges,
		RemovedRanges: removeRanges,
	}

	if timelineID != "" {
		opID, err := a.record(timelineID, "remove_by_transcript",
			fmt.Sprintf("removed %d occurrence range(s) of spoken text", len(removeRanges)),
			videoPath, output,
			map[string]any{
				"text_to_remove": textToRemove,
				"removed_ranges": removeRanges,
			},
			time.Since(started))
		if err != nil {
			return nil, err
		}
		result.OperationID = opID
		result.TimelineID = timelineID
	}

	return result, nil
}

// TrimToScript keeps only the parts of the video referenced by the given
// multi-line script, writing the result to output. Script lines that cannot
// be located in the transcript are reported in the result, not treated as an
// error, unless no line matches at all.
func (a *Application) TrimToScript(ctx context.Context, videoPath, script, output, timelineID string) (*EditResult, error) {
	started := time.Now()

	tr, err := a.TranscribeVideo(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	matchResult := a.engine.MatchToScript(tr, script)
	keepRanges := a.engine.CalculateTimestampsToKeep(tr, script)
	if len(keepRanges) == 0 {
		return nil, fmt.Errorf("no script lines matched the transcript of %s", videoPath)
	}

	if err := a.executor.TrimRanges(ctx, videoPath, keepRanges, output); err != nil {
		return nil, fmt.Errorf("failed to trim %s: %w", videoPath, err)
	}
	a.cache.Invalidate(output)

	result := &EditResult{
		Output:          output,
		KeepRanges:      keepRanges,
		UnmatchedScript: matchResult.UnmatchedScript,
	}

	if timelineID != "" {
		opID, err := a.record(timelineID, "trim_to_script",
			fmt.Sprintf("kept %d script-referenced range(s)", len(keepRanges)),
			videoPath, output,
			map[string]any{
				"keep_ranges":      keepRanges,
				"unmatched_script": matchResult.UnmatchedScript,
			},
			time.Since(started))
		if err != nil {
			return nil, err
		}
		result.OperationID = opID
		result.TimelineID = timelineID
	}

	return result, nil
}

// record appends a completed operation to the given timeline and returns the
// operation id
func (a *Application) record(timelineID, opName, description, input, output string, parameters map[string]any, elapsed time.Duration) (string, error) {
	durationMS := elapsed.Milliseconds()

	t, err := a.timelines.AddOperation(timelineID, opName, description,
		[]string{input}, output, parameters, &durationMS)
	if err != nil {
		return "", fmt.Errorf("edit succeeded but recording it failed: %w", err)
	}

	return t.Operations[t.CurrentIndex].ID, nil
}

// mediaDuration prefers the probed container duration and falls back to the
// transcript-derived duration when ffprobe is unavailable
func (a *Application) mediaDuration(ctx context.Context, videoPath string, tr *transcript.Transcript) (float64, error) {
	duration, err := a.executor.ProbeDuration(ctx, videoPath)
	if err == nil && duration > 0 {
		return duration, nil
	}

	a.zapLogger.Warn("falling back to transcript duration",
		zap.String("video_path", videoPath),
		zap.Error(err))

	if tr.Duration > 0 {
		return tr.Duration, nil
	}
	return 0, fmt.Errorf("could not determine duration of %s: %w", videoPath, err)
}
