// Package lock provides core.KeyLocker implementations. Keys are always
// acquired in ascending order, so callers that lock overlapping key sets
// cannot deadlock each other.
package lock

import (
	"context"
	"sort"
	"sync"
)

// normalize sorts keys and drops duplicates and empty strings.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i == 0 || k != out[n-1] {
			out[n] = k
			n++
		}
	}
	return out[:n]
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Local serializes keys within one process. Waiting honours ctx.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocal() *Local {
	return &Local{entries: map[string]*entry{}}
}

func (l *Local) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	heldEntries := make([]*entry, 0, len(keys))

	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-heldEntries[i].sem
			l.release(held[i], heldEntries[i])
		}
	}

	for _, k := range keys {
		e := l.acquire(k)
		select {
		case e.sem <- struct{}{}:
			held = append(held, k)
			heldEntries = append(heldEntries, e)
		case <-ctx.Done():
			l.release(k, e)
			unlock()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(unlock) }, nil
}
