package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/transcript"
)

// Client transcribes audio files through a Whisper-compatible HTTP API,
// requesting word-level timestamps so downstream alignment can cut on word
// boundaries.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a transcription client for the given API endpoint
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // Long audio can take a while
		},
		logger: zap.NewNop(), // Default to no-op logger
	}
}

// NewClientWithLogger creates a transcription client with the given logger
func NewClientWithLogger(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if nil is passed
	}
	c := NewClient(baseURL, apiKey, model)
	c.logger = logger
	return c
}

// verboseResponse is the verbose_json payload of the transcriptions endpoint.
// Word timestamps arrive as one flat list, not nested per segment.
type verboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
	Words []transcript.Word `json:"words"`
}

// Transcribe uploads the audio file and returns its time-stamped transcript
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":                     c.model,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "word",
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info("transcribing audio",
		zap.String("audio_path", audioPath),
		zap.String("model", c.model))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription API returned HTTP %d: %s", resp.StatusCode, string(b))
	}

	var vr verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	tr := toTranscript(&vr)
	if err := tr.Validate(); err != nil {
		return nil, fmt.Errorf("transcription API returned malformed transcript: %w", err)
	}

	c.logger.Info("transcription completed",
		zap.String("audio_path", audioPath),
		zap.Int("segment_count", len(tr.Segments)),
		zap.Float64("duration", tr.Duration))

	return tr, nil
}

// toTranscript converts the API payload into the internal transcript shape,
// distributing the flat word list into the segment whose span contains each
// word's start time
func toTranscript(vr *verboseResponse) *transcript.Transcript {
	tr := &transcript.Transcript{
		Text:     vr.Text,
		Language: vr.Language,
		Segments: make([]transcript.Segment, 0, len(vr.Segments)),
	}

	for _, s := range vr.Segments {
		tr.Segments = append(tr.Segments, transcript.Segment{
			Text:  s.Text,
			Start: s.Start,
			End:   s.End,
		})
	}

	seg := 0
	for _, w := range vr.Words {
		for seg < len(tr.Segments)-1 && w.Start >= tr.Segments[seg].End {
			seg++
		}
		if seg < len(tr.Segments) {
			tr.Segments[seg].Words = append(tr.Segments[seg].Words, w)
		}
	}

	tr.DeriveDuration()
	if tr.Duration == 0 {
		tr.Duration = vr.Duration
	}

	return tr
}
