package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/align"
)

// Executor shells out to ffmpeg/ffprobe to physically cut and reassemble
// media according to keep-ranges computed by the alignment engine
type Executor struct {
	ffmpeg  string
	ffprobe string
	logger  *zap.Logger
}

// NewExecutor creates an Executor using the given binary paths; empty paths
// fall back to looking up ffmpeg/ffprobe on PATH
func NewExecutor(ffmpegPath, ffprobePath string) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Executor{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		logger:  zap.NewNop(), // Default to no-op logger
	}
}

// NewExecutorWithLogger creates an Executor with the given logger
func NewExecutorWithLogger(ffmpegPath, ffprobePath string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if nil is passed
	}
	e := NewExecutor(ffmpegPath, ffprobePath)
	e.logger = logger
	return e
}

// ProbeDuration returns the duration of a media file in seconds
func (e *Executor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(out))
	}

	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}

	return sec, nil
}

// ExtractAudio extracts mono 16kHz WAV audio from a video, the input format
// the transcription API expects
func (e *Executor) ExtractAudio(ctx context.Context, videoPath, outWav string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(out))
	}
	return nil
}

// TrimRanges cuts each keep-range from the input into a temporary part and
// concatenates the parts into the output. Ranges with non-positive length
// are skipped; at least one usable range is required.
func (e *Executor) TrimRanges(ctx context.Context, input string, ranges []align.TimeRange, output string) error {
	usable := make([]align.TimeRange, 0, len(ranges))
	for _, r := range ranges {
		if r.End > r.Start {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return fmt.Errorf("no usable time ranges to keep")
	}

	tmpDir, err := os.MkdirTemp("", "videoeditor-trim-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	e.logger.Info("trimming media",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("range_count", len(usable)))

	parts := make([]string, 0, len(usable))
	for i, r := range usable {
		part := filepath.Join(tmpDir, fmt.Sprintf("part_%03d.mp4", i))
		if err := e.cutRange(ctx, input, r, part); err != nil {
			return err
		}
		parts = append(parts, part)
	}

	if err := e.concat(ctx, parts, output); err != nil {
		return err
	}

	return nil
}

// cutRange renders a single time range of the input to outPath, re-encoding
// so the parts share codec parameters and concatenate cleanly
func (e *Executor) cutRange(ctx context.Context, input string, r align.TimeRange, outPath string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-y",
		"-ss", formatSeconds(r.Start),
		"-to", formatSeconds(r.End),
		"-i", input,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg cut %s-%s: %w\n%s",
			formatSeconds(r.Start), formatSeconds(r.End), err, string(out))
	}
	return nil
}

// concat joins already-encoded parts with the concat demuxer
func (e *Executor) concat(ctx context.Context, parts []string, output string) error {
	if len(parts) == 1 {
		// Single part: a plain copy avoids a pointless re-mux through the
		// concat demuxer.
		data, err := os.ReadFile(parts[0])
		if err != nil {
			return fmt.Errorf("failed to read part: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	listPath := filepath.Join(filepath.Dir(parts[0]), "concat.txt")
	var list strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(out))
	}
	return nil
}

// formatSeconds renders a second count the way ffmpeg expects it
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
