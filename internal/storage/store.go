package storage

import "errors"

// ErrNotFound is returned when no record exists for the requested id
var ErrNotFound = errors.New("record not found")

// Store is a durable key-to-record store. Records are opaque bytes written
// as a whole-record replace on every save; there are no partial updates.
type Store interface {
	// Load returns the record for the given id, or ErrNotFound.
	Load(id string) ([]byte, error)

	// Save writes the record for the given id, replacing any previous record.
	Save(id string, data []byte) error

	// Delete removes the record for the given id, or returns ErrNotFound.
	Delete(id string) error

	// List returns the ids of all stored records.
	List() ([]string, error)
}
