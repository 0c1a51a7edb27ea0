package store

import (
	"context"
	"errors"
)

var (
	// ErrCorrupted is returned when persisted bytes cannot be decoded, or
	// cannot be decrypted with the supplied key.
	ErrCorrupted = errors.New("stored data is corrupted")
	// ErrConflict is returned by Document.Write when the stored revision no
	// longer matches the revision of the entity being written.
	ErrConflict = errors.New("stored revision conflict")
)

// Revisioned is implemented by entities persisted through a Document.
type Revisioned interface {
	Revision() int
	SetRevision(int)
}

// Document persists a single entity of type T.
type Document[T any] interface {
	// Read returns the stored entity, or nil when nothing is stored yet.
	Read(ctx context.Context) (*T, error)
	// Write stores entity and returns the stored copy with its revision
	// advanced. The caller's entity is left untouched.
	Write(ctx context.Context, entity *T) (*T, error)
}

// DatabaseBackend loads and saves the encrypted mail database.
type DatabaseBackend interface {
	// LoadDatabase returns the stored database, or nil when nothing is stored
	// yet. A key that does not open the data yields ErrCorrupted.
	LoadDatabase(ctx context.Context, key *[KeySize]byte) (*MailDatabase, error)
	SaveDatabase(ctx context.Context, db *MailDatabase, key *[KeySize]byte) error
	Close() error
}
