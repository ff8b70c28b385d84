package transcript

import "fmt"

// Word represents a single word with timing information as produced by the
// transcription provider
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a contiguous stretch of transcribed speech. Words is
// optional word-level refinement; when present the first word starts near
// Segment.Start and the last word ends near Segment.End, but this is
// best-effort and not enforced.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript represents a complete time-stamped transcription of a media file
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
	Language string    `json:"language,omitempty"`
}

// Validate checks if the Segment has valid timing values
func (s *Segment) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if s.End < s.Start {
		return fmt.Errorf("end must not be before start")
	}

	return nil
}

// Validate checks that the Transcript's segments are well-formed and
// chronologically ordered
func (t *Transcript) Validate() error {
	prevStart := 0.0
	for i := range t.Segments {
		if err := t.Segments[i].Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if t.Segments[i].Start < prevStart {
			return fmt.Errorf("segment %d: segments must be chronological", i)
		}
		prevStart = t.Segments[i].Start
	}

	if t.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}

	return nil
}

// DeriveDuration recomputes Duration from the end of the last segment.
// An empty transcript has duration 0.
func (t *Transcript) DeriveDuration() {
	if len(t.Segments) == 0 {
		t.Duration = 0
		return
	}
	t.Duration = t.Segments[len(t.Segments)-1].End
}
