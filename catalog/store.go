package catalog

import (
	"context"
	"sync"

	weave "github.com/KartikMangalpalli/weave-image-lab"
)

// Store is the storage seam for pattern definitions. Both shipped
// implementations satisfy it; a remote backend would plug in here.
//
// Mutating methods validate before committing and never partially apply.
// Returned definitions are copies; callers may mutate them freely.
type Store interface {
	// List returns all definitions ordered by name, then ID.
	List(ctx context.Context) ([]Definition, error)

	// Get returns the definition with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Definition, error)

	// Create validates def, assigns a fresh ID and timestamps, and
	// stores it. The stored definition is returned.
	Create(ctx context.Context, def Definition) (Definition, error)

	// Update applies mutate to a copy of the stored definition and
	// commits the result if it validates. ID and CreatedAt are
	// preserved; UpdatedAt is refreshed. mutate runs while the store is
	// locked and must not call back into it.
	Update(ctx context.Context, id string, mutate func(*Definition) error) (Definition, error)

	// Delete removes the definition with the given ID, or returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Watch returns a channel of change events committed by this store.
	// Events arrive in commit order. The channel is closed when ctx
	// ends. A watcher that falls behind has events dropped rather than
	// blocking the store.
	Watch(ctx context.Context) <-chan Event
}

// watchBuffer is the per-watcher event channel capacity.
const watchBuffer = 16

// broadcaster fans committed events out to watchers. Stores call publish
// while still holding their commit lock, which keeps event order equal to
// commit order.
type broadcaster struct {
	mu       sync.Mutex
	watchers map[int]chan Event
	nextID   int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{watchers: make(map[int]chan Event)}
}

func (b *broadcaster) subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, watchBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if cur, ok := b.watchers[id]; ok {
			delete(b.watchers, id)
			close(cur)
		}
		b.mu.Unlock()
	}()

	return ch
}

func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			weave.Logger().Warn("catalog: watcher behind, event dropped",
				"op", ev.Op.String(),
				"id", ev.Definition.ID,
			)
		}
	}
}
