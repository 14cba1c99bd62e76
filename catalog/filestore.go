package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	weave "github.com/KartikMangalpalli/weave-image-lab"
)

var _ Store = (*FileStore)(nil)

// fileDocVersion is the on-disk document version FileStore reads and
// writes.
const fileDocVersion = 1

// fileDoc is the JSON document FileStore keeps on disk.
type fileDoc struct {
	Version  int          `json:"version"`
	Patterns []Definition `json:"patterns"`
}

// FileStore persists definitions to a single JSON document. The file is
// loaded once at open; every committed mutation rewrites it atomically
// (temp file + rename) before the change becomes visible, so a crash
// leaves either the old or the new document, never a torn one.
//
// Watch covers this process's own mutations only; the file is not
// monitored for outside writes.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	defs  map[string]Definition
	bcast *broadcaster
	nowFn func() time.Time
}

// OpenFileStore opens the catalog document at path, creating an empty
// store if the file does not exist yet. The file itself is created on
// the first mutation.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  filepath.Clean(path),
		defs:  make(map[string]Definition),
		bcast: newBroadcaster(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run; nothing to load.
	case err != nil:
		return nil, fmt.Errorf("catalog: read catalog file: %w", err)
	default:
		var doc fileDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", s.path, err)
		}
		if doc.Version != fileDocVersion {
			return nil, fmt.Errorf("catalog: %s: unsupported document version %d", s.path, doc.Version)
		}
		for i := range doc.Patterns {
			def := doc.Patterns[i].Clone()
			if def.ID == "" {
				return nil, fmt.Errorf("catalog: %s: entry %d has no id", s.path, i)
			}
			if _, ok := s.defs[def.ID]; ok {
				return nil, fmt.Errorf("catalog: %s: duplicate id %q", s.path, def.ID)
			}
			if err := validateDefinition(&def); err != nil {
				return nil, fmt.Errorf("catalog: %s: entry %q: %w", s.path, def.ID, err)
			}
			if nameInUse(s.defs, def.Name, "") {
				return nil, fmt.Errorf("catalog: %s: %w: %q", s.path, ErrNameTaken, def.Name)
			}
			s.defs[def.ID] = def
		}
	}

	weave.Logger().Info("catalog opened", "path", s.path, "patterns", len(s.defs))
	return s, nil
}

// Path returns the location of the catalog document.
func (s *FileStore) Path() string {
	return s.path
}

// persistLocked rewrites the catalog document from the current state.
// Callers hold s.mu.
func (s *FileStore) persistLocked() error {
	out := make([]Definition, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d)
	}
	sortDefinitions(out)

	data, err := json.MarshalIndent(fileDoc{Version: fileDocVersion, Patterns: out}, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode catalog file: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".weave-catalog-*")
	if err != nil {
		return fmt.Errorf("catalog: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("catalog: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("catalog: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("catalog: replace catalog file: %w", err)
	}

	weave.Logger().Debug("catalog persisted", "path", s.path, "patterns", len(out))
	return nil
}

// List returns all definitions ordered by name, then ID.
func (s *FileStore) List(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Definition, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()

	sortDefinitions(out)
	return out, nil
}

// Get returns the definition with the given ID.
func (s *FileStore) Get(ctx context.Context, id string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d.Clone(), nil
}

// Create validates def, assigns a fresh ID and timestamps, persists the
// new document and stores the definition.
func (s *FileStore) Create(ctx context.Context, def Definition) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}
	if err := validateDefinition(&def); err != nil {
		return Definition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if nameInUse(s.defs, def.Name, "") {
		return Definition{}, fmt.Errorf("%w: %q", ErrNameTaken, def.Name)
	}

	def.ID = newID()
	now := s.nowFn()
	def.CreatedAt = now
	def.UpdatedAt = now
	def.Sequence = append([]int(nil), def.Sequence...)

	s.defs[def.ID] = def
	if err := s.persistLocked(); err != nil {
		delete(s.defs, def.ID)
		return Definition{}, err
	}
	s.bcast.publish(Event{Op: OpCreate, Definition: def.Clone()})
	return def.Clone(), nil
}

// Update applies mutate to a copy of the stored definition, persists and
// commits the result if it validates.
func (s *FileStore) Update(ctx context.Context, id string, mutate func(*Definition) error) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	next := current.Clone()
	if err := mutate(&next); err != nil {
		return Definition{}, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	if err := validateDefinition(&next); err != nil {
		return Definition{}, err
	}
	if nameInUse(s.defs, next.Name, id) {
		return Definition{}, fmt.Errorf("%w: %q", ErrNameTaken, next.Name)
	}
	next.UpdatedAt = s.nowFn()
	next.Sequence = append([]int(nil), next.Sequence...)

	s.defs[id] = next
	if err := s.persistLocked(); err != nil {
		s.defs[id] = current
		return Definition{}, err
	}
	s.bcast.publish(Event{Op: OpUpdate, Definition: next.Clone()})
	return next.Clone(), nil
}

// Delete removes the definition with the given ID and persists the new
// document.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.defs[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.defs, id)
	if err := s.persistLocked(); err != nil {
		s.defs[id] = current
		return err
	}
	s.bcast.publish(Event{Op: OpDelete, Definition: current.Clone()})
	return nil
}

// Watch returns a channel of change events committed by this store.
func (s *FileStore) Watch(ctx context.Context) <-chan Event {
	return s.bcast.subscribe(ctx)
}
