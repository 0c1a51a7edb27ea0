// Package jsonfile persists single documents as files, guarded by a revision
// counter.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/store"
)

var log = logrus.WithField("pkg", "jsonfile")

// Store is a store.Document backed by the file at Path.
type Store[T any, PT interface {
	*T
	store.Revisioned
}] struct {
	path     string
	codec    Codec
	validate func(PT) error

	mu sync.Mutex
}

// New returns a store for the file at path. validate, when not nil, runs
// before every write.
func New[T any, PT interface {
	*T
	store.Revisioned
}](path string, codec Codec, validate func(PT) error) *Store[T, PT] {
	return &Store[T, PT]{path: path, codec: codec, validate: validate}
}

// Path returns the file location.
func (s *Store[T, PT]) Path() string { return s.path }

func (s *Store[T, PT]) Read(ctx context.Context) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read()
}

func (s *Store[T, PT]) read() (*T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	doc, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	entity := new(T)
	if err := json.Unmarshal(doc, entity); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %v", s.path, store.ErrCorrupted, err)
	}
	return entity, nil
}

// Write stores a copy of entity with the next revision. It fails with
// store.ErrConflict when the file was written since entity was read.
func (s *Store[T, PT]) Write(ctx context.Context, entity *T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.validate != nil {
		if err := s.validate(PT(entity)); err != nil {
			return nil, fmt.Errorf("failed to validate %s: %w", filepath.Base(s.path), err)
		}
	}

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	stored := 0
	if current != nil {
		stored = PT(current).Revision()
	}
	if rev := PT(entity).Revision(); rev != stored {
		return nil, fmt.Errorf("%w: %s is at revision %d, write is based on %d",
			store.ErrConflict, filepath.Base(s.path), stored, rev)
	}

	doc, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", filepath.Base(s.path), err)
	}
	next := new(T)
	if err := json.Unmarshal(doc, next); err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", filepath.Base(s.path), err)
	}
	PT(next).SetRevision(stored + 1)
	if doc, err = json.Marshal(next); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", filepath.Base(s.path), err)
	}
	data, err := s.codec.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", filepath.Base(s.path), err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"file": s.path, "rev": stored + 1}).Debug("wrote document")
	return next, nil
}

// writeFileAtomic replaces path so readers see either the old or the new
// contents, never a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

var (
	_ store.Document[domain.Config]   = (*Store[domain.Config, *domain.Config])(nil)
	_ store.Document[domain.Settings] = (*Store[domain.Settings, *domain.Settings])(nil)
)

const (
	ConfigFile   = "config.json"
	SettingsFile = "settings.bin"
)

// NewConfigStore returns the plain JSON config document in dir.
func NewConfigStore(dir string) *Store[domain.Config, *domain.Config] {
	return New(filepath.Join(dir, ConfigFile), Plain{}, (*domain.Config).Validate)
}

// NewSettingsStore returns the encrypted settings document in dir. New files
// are written with the cost parameters of preset.
func NewSettingsStore(dir, password, preset string) (*Store[domain.Settings, *domain.Settings], error) {
	params, err := ParamsForPreset(preset)
	if err != nil {
		return nil, err
	}
	return NewSettingsStoreWithParams(dir, password, params), nil
}

// NewSettingsStoreWithParams is NewSettingsStore with explicit cost
// parameters.
func NewSettingsStoreWithParams(dir, password string, params KDFParams) *Store[domain.Settings, *domain.Settings] {
	return New(filepath.Join(dir, SettingsFile), NewSealed(password, params), (*domain.Settings).Validate)
}
