package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/storage"
)

// ErrNotFound is returned when the requested timeline id does not exist
var ErrNotFound = errors.New("timeline not found")

// Manager owns all persisted timelines. Every mutation is a full
// load-modify-save cycle against the backing store, guarded by a per-id
// mutex so concurrent mutations of the same timeline cannot clobber each
// other; operations on different timelines do not contend.
type Manager struct {
	store  storage.Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a Manager over the given store
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:  store,
		logger: zap.NewNop(), // Default to no-op logger
		locks:  make(map[string]*sync.Mutex),
	}
}

// NewManagerWithLogger creates a Manager over the given store with the given logger
func NewManagerWithLogger(store storage.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if nil is passed
	}
	m := NewManager(store)
	m.logger = logger
	return m
}

// lockFor returns the mutex guarding the given timeline id
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// load reads and decodes the timeline with the given id
func (m *Manager) load(id string) (*Timeline, error) {
	data, err := m.store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("timeline %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load timeline %s: %w", id, err)
	}

	var t Timeline
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode timeline %s: %w", id, err)
	}

	return &t, nil
}

// save touches and persists the timeline as a whole-record replace
func (m *Manager) save(t *Timeline) error {
	t.touch()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode timeline %s: %w", t.ID, err)
	}

	if err := m.store.Save(t.ID, data); err != nil {
		return fmt.Errorf("failed to save timeline %s: %w", t.ID, err)
	}

	return nil
}

// Create creates and immediately persists a new empty timeline
func (m *Manager) Create(name, baseFile string) (*Timeline, error) {
	t := NewTimeline(name, baseFile)

	if err := m.save(t); err != nil {
		return nil, err
	}

	m.logger.Info("timeline created",
		zap.String("timeline_id", t.ID),
		zap.String("name", name),
		zap.String("base_file", baseFile))

	return t, nil
}

// Get returns the timeline with the given id without mutating it
func (m *Manager) Get(id string) (*Timeline, error) {
	return m.load(id)
}

// List returns every persisted timeline
func (m *Manager) List() ([]*Timeline, error) {
	ids, err := m.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list timelines: %w", err)
	}

	timelines := make([]*Timeline, 0, len(ids))
	for _, id := range ids {
		t, err := m.load(id)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, t)
	}

	return timelines, nil
}

// Delete removes the timeline with the given id
func (m *Manager) Delete(id string) error {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	if err := m.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("timeline %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete timeline %s: %w", id, err)
	}

	m.logger.Info("timeline deleted", zap.String("timeline_id", id))
	return nil
}

// AddOperation records a completed operation on the timeline, discarding any
// redo branch beyond the cursor, and returns the updated timeline
func (m *Manager) AddOperation(id, opName, description string, input []string, output string, parameters map[string]any, durationMS *int64) (*Timeline, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.load(id)
	if err != nil {
		return nil, err
	}

	op := NewOperation(opName, description, input, output, parameters, durationMS)
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("invalid operation: %w", err)
	}

	truncated := len(t.Operations) - 1 - t.CurrentIndex
	t.Append(op)

	if err := m.save(t); err != nil {
		return nil, err
	}

	m.logger.Info("operation recorded",
		zap.String("timeline_id", id),
		zap.String("operation_id", op.ID),
		zap.String("operation", opName),
		zap.Int("discarded_redo_operations", truncated),
		zap.Int("current_index", t.CurrentIndex))

	return t, nil
}

// Undo moves the timeline's cursor one step back and returns the updated
// timeline together with the file that is now current. Undo before the first
// operation is a no-op returning the base file, which may be empty.
func (m *Manager) Undo(id string) (*Timeline, string, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.load(id)
	if err != nil {
		return nil, "", err
	}

	output, moved := t.Undo()
	if moved {
		if err := m.save(t); err != nil {
			return nil, "", err
		}
	}

	m.logger.Debug("undo",
		zap.String("timeline_id", id),
		zap.Bool("moved", moved),
		zap.Int("current_index", t.CurrentIndex))

	return t, output, nil
}

// Redo moves the timeline's cursor one step forward and returns the updated
// timeline together with the file that is now current. Redo at the tail is a
// no-op returning an empty output.
func (m *Manager) Redo(id string) (*Timeline, string, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.load(id)
	if err != nil {
		return nil, "", err
	}

	output, moved := t.Redo()
	if moved {
		if err := m.save(t); err != nil {
			return nil, "", err
		}
	}

	m.logger.Debug("redo",
		zap.String("timeline_id", id),
		zap.Bool("moved", moved),
		zap.Int("current_index", t.CurrentIndex))

	return t, output, nil
}

// JumpTo sets the timeline's cursor to an absolute index and returns the
// updated timeline and the file at that position. An out-of-range index
// fails with ErrInvalidIndex and performs no write.
func (m *Manager) JumpTo(id string, index int) (*Timeline, string, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.load(id)
	if err != nil {
		return nil, "", err
	}

	output, err := t.JumpTo(index)
	if err != nil {
		return nil, "", err
	}

	if err := m.save(t); err != nil {
		return nil, "", err
	}

	m.logger.Debug("jump",
		zap.String("timeline_id", id),
		zap.Int("current_index", t.CurrentIndex))

	return t, output, nil
}

// MarkOperationFailed flips a recorded operation to failed status with the
// given message. Deferred-status path, see Timeline.MarkFailed.
func (m *Manager) MarkOperationFailed(id, operationID, message string) (*Timeline, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	t, err := m.load(id)
	if err != nil {
		return nil, err
	}

	if err := t.MarkFailed(operationID, message); err != nil {
		return nil, err
	}

	if err := m.save(t); err != nil {
		return nil, err
	}

	return t, nil
}
