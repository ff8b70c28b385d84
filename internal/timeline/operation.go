package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationStatus describes the outcome state of a recorded operation
type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
)

// InputFiles holds the input file reference(s) of an operation. Most
// operations take a single input; concatenation takes several. The JSON form
// accepts and emits a bare string for the single-input case.
type InputFiles []string

// MarshalJSON emits a bare string when there is exactly one input
func (in InputFiles) MarshalJSON() ([]byte, error) {
	if len(in) == 1 {
		return json.Marshal(in[0])
	}
	return json.Marshal([]string(in))
}

// UnmarshalJSON accepts either a bare string or an array of strings
func (in *InputFiles) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*in = InputFiles{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("input must be a string or an array of strings: %w", err)
	}
	*in = InputFiles(many)
	return nil
}

// Operation records a single editing step applied to a media file. It is
// created once and never modified afterwards, except for Status and Error
// which exist as a deferred-status extension point (see Timeline.MarkFailed).
type Operation struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Operation   string          `json:"operation"`
	Description string          `json:"description"`
	Input       InputFiles      `json:"input"`
	Output      string          `json:"output"`
	Parameters  map[string]any  `json:"parameters"`
	DurationMS  *int64          `json:"duration,omitempty"`
	Status      OperationStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
}

// NewOperation creates a completed Operation with a generated id and the
// current timestamp. durationMS may be nil when the caller did not time the
// underlying edit.
func NewOperation(opName, description string, input []string, output string, parameters map[string]any, durationMS *int64) Operation {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return Operation{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Operation:   opName,
		Description: description,
		Input:       InputFiles(input),
		Output:      output,
		Parameters:  parameters,
		DurationMS:  durationMS,
		Status:      StatusCompleted,
	}
}

// Validate checks if the Operation has valid values
func (op *Operation) Validate() error {
	if op.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if op.Operation == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	if op.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	switch op.Status {
	case StatusPending, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("invalid status %q", op.Status)
	}

	if op.DurationMS != nil && *op.DurationMS < 0 {
		return fmt.Errorf("duration cannot be negative")
	}

	return nil
}
