package align

import (
	"strings"

	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/transcript"
)

const (
	// keepMergeThreshold is the maximum gap in seconds between two matched
	// ranges that still gets merged into one keep-range, so that back-to-back
	// script lines do not produce a cut between them.
	keepMergeThreshold = 0.5

	// removePadding widens each remove-range by this many seconds on both
	// sides to avoid clipping word boundaries.
	removePadding = 0.1

	// wordMatchConfidence applies when a match is located via word-level
	// timestamps; segmentMatchConfidence is the fallback when a segment has
	// no word timing and only segment granularity is available.
	wordMatchConfidence    = 1.0
	segmentMatchConfidence = 0.8
)

// Match represents a located occurrence of searched text within a transcript
type Match struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// ScriptMatchResult pairs the resolved matches of a script with the lines
// that could not be located in the transcript
type ScriptMatchResult struct {
	Matches         []Match  `json:"matches"`
	UnmatchedScript []string `json:"unmatched_script"`
}

// Engine locates spoken text inside a time-stamped transcript and converts
// matches into time ranges to keep or remove. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new alignment engine
func NewEngine() *Engine {
	return &Engine{
		logger: zap.NewNop(), // Default to no-op logger
	}
}

// NewEngineWithLogger creates a new alignment engine with the given logger
func NewEngineWithLogger(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if nil is passed
	}
	return &Engine{logger: logger}
}

// normalize lowercases and trims text for comparison
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// FindTextInTranscript searches for the given text in the transcript and
// returns every occurrence with timing information. Matches inside segments
// that carry word-level timestamps span exactly the matched words and have
// confidence 1.0; segments without word timing fall back to one match at
// segment granularity with confidence 0.8. Results are in segment order, not
// sorted by time, and repeated phrases yield repeated matches. An empty
// search string or a transcript without occurrences yields an empty result.
func (e *Engine) FindTextInTranscript(tr *transcript.Transcript, searchText string) []Match {
	matches := []Match{}

	searchNorm := normalize(searchText)
	if searchNorm == "" {
		return matches
	}
	searchTokens := strings.Fields(searchNorm)

	for i := range tr.Segments {
		seg := &tr.Segments[i]
		if !strings.Contains(normalize(seg.Text), searchNorm) {
			continue
		}

		if len(seg.Words) == 0 {
			// No finer timing available
			matches = append(matches, Match{
				Text:       seg.Text,
				Start:      seg.Start,
				End:        seg.End,
				Confidence: segmentMatchConfidence,
			})
			continue
		}

		matches = append(matches, e.findInWords(seg.Words, searchNorm, len(searchTokens))...)
	}

	e.logger.Debug("transcript search completed",
		zap.String("search_text", searchText),
		zap.Int("match_count", len(matches)))

	return matches
}

// findInWords scans every contiguous window of windowLen words and reports
// the windows whose normalized join contains the normalized search string
func (e *Engine) findInWords(words []transcript.Word, searchNorm string, windowLen int) []Match {
	if windowLen == 0 || windowLen > len(words) {
		return nil
	}

	var matches []Match
	for i := 0; i+windowLen <= len(words); i++ {
		window := words[i : i+windowLen]

		normalized := make([]string, windowLen)
		original := make([]string, windowLen)
		for j, w := range window {
			normalized[j] = normalize(w.Word)
			original[j] = strings.TrimSpace(w.Word)
		}

		if !strings.Contains(strings.Join(normalized, " "), searchNorm) {
			continue
		}

		matches = append(matches, Match{
			Text:       strings.Join(original, " "),
			Start:      window[0].Start,
			End:        window[windowLen-1].End,
			Confidence: wordMatchConfidence,
		})
	}

	return matches
}

// MatchToScript resolves each non-blank line of a script against the
// transcript. A line either resolves via exact substring search, adding all
// of its occurrences to Matches, or is reported verbatim in UnmatchedScript.
// There is no fuzzy matching: punctuation or paraphrase differences fail the
// whole line.
func (e *Engine) MatchToScript(tr *transcript.Transcript, script string) ScriptMatchResult {
	result := ScriptMatchResult{
		Matches:         []Match{},
		UnmatchedScript: []string{},
	}

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		found := e.FindTextInTranscript(tr, line)
		if len(found) == 0 {
			result.UnmatchedScript = append(result.UnmatchedScript, line)
			continue
		}
		result.Matches = append(result.Matches, found...)
	}

	if len(result.UnmatchedScript) > 0 {
		e.logger.Info("script lines without transcript match",
			zap.Int("unmatched_count", len(result.UnmatchedScript)),
			zap.Int("matched_count", len(result.Matches)))
	}

	return result
}

// CalculateTimestampsToKeep computes the coalesced time ranges covering all
// script-referenced audio, suitable for sequential trim and concatenate.
// Matched ranges closer than 0.5 seconds are merged into one.
func (e *Engine) CalculateTimestampsToKeep(tr *transcript.Transcript, script string) []TimeRange {
	result := e.MatchToScript(tr, script)

	ranges := make([]TimeRange, 0, len(result.Matches))
	for _, m := range result.Matches {
		ranges = append(ranges, TimeRange{Start: m.Start, End: m.End})
	}

	return MergeTimeRanges(ranges, keepMergeThreshold)
}

// CalculateTimestampsToRemove computes the time ranges covering every
// occurrence of the given text, padded by 0.1 seconds on each side.
// Overlapping occurrences are merged so the result can be inverted safely.
func (e *Engine) CalculateTimestampsToRemove(tr *transcript.Transcript, textToRemove string) []TimeRange {
	found := e.FindTextInTranscript(tr, textToRemove)

	ranges := make([]TimeRange, 0, len(found))
	for _, m := range found {
		start := m.Start - removePadding
		if start < 0 {
			start = 0
		}
		ranges = append(ranges, TimeRange{Start: start, End: m.End + removePadding})
	}

	return MergeTimeRanges(ranges, 0)
}
