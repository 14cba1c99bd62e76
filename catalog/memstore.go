package catalog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests and ephemeral sessions.
// Definitions are copied on every boundary, so callers never share state
// with the store.
type MemStore struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	bcast *broadcaster
	nowFn func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		defs:  make(map[string]Definition),
		bcast: newBroadcaster(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// nameInUse reports whether any definition other than excludeID already
// carries the (normalized) name.
func nameInUse(defs map[string]Definition, name, excludeID string) bool {
	for id, d := range defs {
		if id != excludeID && d.Name == name {
			return true
		}
	}
	return false
}

// sortDefinitions orders by name, then ID among duplicates.
func sortDefinitions(defs []Definition) {
	slices.SortFunc(defs, func(a, b Definition) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// List returns all definitions ordered by name, then ID.
func (s *MemStore) List(ctx context.Context) ([]Definition, error) {
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
func (s *MemStore) Get(ctx context.Context, id string) (Definition, error) {
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

// Create validates def, assigns a fresh ID and timestamps, and stores it.
func (s *MemStore) Create(ctx context.Context, def Definition) (Definition, error) {
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
	s.bcast.publish(Event{Op: OpCreate, Definition: def.Clone()})
	return def.Clone(), nil
}

// Update applies mutate to a copy of the stored definition and commits
// the result if it validates.
func (s *MemStore) Update(ctx context.Context, id string, mutate func(*Definition) error) (Definition, error) {
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
	s.bcast.publish(Event{Op: OpUpdate, Definition: next.Clone()})
	return next.Clone(), nil
}

// Delete removes the definition with the given ID.
func (s *MemStore) Delete(ctx context.Context, id string) error {
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
	s.bcast.publish(Event{Op: OpDelete, Definition: current.Clone()})
	return nil
}

// Watch returns a channel of change events committed by this store.
func (s *MemStore) Watch(ctx context.Context) <-chan Event {
	return s.bcast.subscribe(ctx)
}
