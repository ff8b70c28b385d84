package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidIndex is returned when a jump targets an index outside
// [-1, len(operations)-1]
var ErrInvalidIndex = errors.New("invalid timeline index")

// Timeline is a recorded, navigable history of editing operations applied to
// a media file. CurrentIndex is the undo/redo cursor: -1 means "before any
// operation, at BaseFile", otherwise it names the operation whose output is
// the current state. A Timeline exclusively owns its Operations slice;
// callers mutate it only through Manager.
type Timeline struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Created      time.Time   `json:"created"`
	Modified     time.Time   `json:"modified"`
	CurrentIndex int         `json:"current_index"`
	Operations   []Operation `json:"operations"`
	BaseFile     string      `json:"base_file,omitempty"`
}

// NewTimeline creates an empty Timeline positioned before any operation
func NewTimeline(name, baseFile string) *Timeline {
	now := time.Now().UTC()
	return &Timeline{
		ID:           uuid.NewString(),
		Name:         name,
		Created:      now,
		Modified:     now,
		CurrentIndex: -1,
		Operations:   []Operation{},
		BaseFile:     baseFile,
	}
}

// Validate checks the Timeline's cursor invariant and its operations
func (t *Timeline) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if t.CurrentIndex < -1 || t.CurrentIndex >= len(t.Operations) {
		return fmt.Errorf("current index %d out of range for %d operations", t.CurrentIndex, len(t.Operations))
	}

	for i := range t.Operations {
		if err := t.Operations[i].Validate(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}

	return nil
}

// CurrentOutput returns the file representing the timeline's current state:
// the output of the operation at the cursor, or BaseFile at index -1
func (t *Timeline) CurrentOutput() string {
	if t.CurrentIndex < 0 {
		return t.BaseFile
	}
	return t.Operations[t.CurrentIndex].Output
}

// Append records an operation at the cursor. If the cursor is not at the
// tail because of prior undos, the redo branch after the cursor is discarded
// first, as in an editor's undo stack.
func (t *Timeline) Append(op Operation) {
	if t.CurrentIndex < len(t.Operations)-1 {
		t.Operations = t.Operations[:t.CurrentIndex+1]
	}
	t.Operations = append(t.Operations, op)
	t.CurrentIndex = len(t.Operations) - 1
}

// Undo moves the cursor one step back and reports whether it moved. Undo at
// the beginning is a no-op. The returned output is the file the caller
// should treat as current after the move (BaseFile when the cursor reaches
// -1, which may be empty).
func (t *Timeline) Undo() (output string, moved bool) {
	if t.CurrentIndex < 0 {
		return t.BaseFile, false
	}
	t.CurrentIndex--
	return t.CurrentOutput(), true
}

// Redo moves the cursor one step forward and reports whether it moved. Redo
// at the tail is a no-op with an empty output.
func (t *Timeline) Redo() (output string, moved bool) {
	if t.CurrentIndex >= len(t.Operations)-1 {
		return "", false
	}
	t.CurrentIndex++
	return t.Operations[t.CurrentIndex].Output, true
}

// JumpTo sets the cursor to an absolute index in [-1, len(operations)-1]
// and returns the output at that position. An out-of-range index fails with
// ErrInvalidIndex and leaves the timeline untouched.
func (t *Timeline) JumpTo(index int) (string, error) {
	if index < -1 || index >= len(t.Operations) {
		return "", fmt.Errorf("index %d out of range [-1, %d]: %w", index, len(t.Operations)-1, ErrInvalidIndex)
	}
	t.CurrentIndex = index
	return t.CurrentOutput(), nil
}

// MarkFailed sets the status of the operation with the given id to failed
// with the given message. This is the deferred-status path for callers that
// record an operation before its edit has finished.
func (t *Timeline) MarkFailed(operationID, message string) error {
	for i := range t.Operations {
		if t.Operations[i].ID == operationID {
			t.Operations[i].Status = StatusFailed
			t.Operations[i].Error = message
			return nil
		}
	}
	return fmt.Errorf("operation %s not found on timeline %s", operationID, t.ID)
}

// touch updates the modification timestamp; called by Manager before every
// persisted mutation
func (t *Timeline) touch() {
	t.Modified = time.Now().UTC()
}
