// Package registry maintains the in-memory map of live subscriber streams.
// It is the only concurrently-mutated shared structure in the pipeline and
// is sharded by user ID so pushes, subscribes and prunes on different users
// never contend on one lock.
package registry

import (
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

const shardCount = 32

type shard struct {
	mu      sync.Mutex
	streams map[string][]*Stream // user ID -> open/closing streams
}

// Registry is a concurrency-safe map of user ID to live streams. Construct
// one per process and inject it; it must never be ambient global state.
type Registry struct {
	shards [shardCount]*shard
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{streams: make(map[string][]*Stream)}
	}
	return r
}

func (r *Registry) shardFor(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return r.shards[h.Sum32()%shardCount]
}

// Subscribe registers a new live stream for the user with optional app and
// level filters. Empty filters match every alert.
func (r *Registry) Subscribe(userID, appFilter, levelFilter string) *Stream {
	s := newStream(userID, appFilter, levelFilter)

	sh := r.shardFor(userID)
	sh.mu.Lock()
	sh.streams[userID] = append(sh.streams[userID], s)
	sh.mu.Unlock()

	slog.Info("Registered live stream",
		"stream_id", s.id,
		"user_id", userID,
		"app_filter", appFilter,
		"level_filter", levelFilter,
	)
	return s
}

// Unsubscribe marks the stream as closing. The map entry is erased either
// by the next prune pass or by a failed push, whichever comes first.
func (r *Registry) Unsubscribe(s *Stream) {
	if s == nil {
		return
	}
	s.markClosing()
	slog.Debug("Unregistered live stream", "stream_id", s.id, "user_id", s.userID)
}

// HasStreams reports whether the user currently has at least one stream
// that is not pending removal.
func (r *Registry) HasStreams(userID string) bool {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	for _, s := range sh.streams[userID] {
		if s.State() == StateOpen {
			return true
		}
	}
	return false
}

// Push delivers the alert view to every open stream of the user whose
// filters accept it. A failed send evicts only the affected stream; the
// user's other streams still receive the alert. Returns the number of
// streams the view was delivered to.
func (r *Registry) Push(userID string, view alert.View) int {
	sh := r.shardFor(userID)

	// Copy the slice under the lock, send outside it. A send is a
	// non-blocking channel write, so a slow subscriber converts to an
	// eviction instead of blocking the shard.
	sh.mu.Lock()
	streams := make([]*Stream, len(sh.streams[userID]))
	copy(streams, sh.streams[userID])
	sh.mu.Unlock()

	delivered := 0
	for _, s := range streams {
		if s.State() != StateOpen {
			continue
		}
		if !s.matches(view) {
			continue
		}
		if s.send(view) {
			delivered++
			continue
		}

		// Broken or saturated transport: evict this stream immediately.
		slog.Warn("Evicting broken live stream",
			"stream_id", s.id,
			"user_id", userID,
		)
		s.markClosing()
		r.remove(s)
	}
	return delivered
}

// remove erases the stream's map entry and marks it removed.
func (r *Registry) remove(s *Stream) {
	sh := r.shardFor(s.userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	list := sh.streams[s.userID]
	for i, candidate := range list {
		if candidate.id == s.id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		// No placeholder entries for stream-less users.
		delete(sh.streams, s.userID)
	} else {
		sh.streams[s.userID] = list
	}
	s.markRemoved()
}

// ActiveCount returns the number of streams currently in the OPEN state.
func (r *Registry) ActiveCount() int {
	count := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for _, list := range sh.streams {
			for _, s := range list {
				if s.State() == StateOpen {
					count++
				}
			}
		}
		sh.mu.Unlock()
	}
	return count
}

// EvictIdle moves streams with no delivery activity for longer than maxIdle
// into the CLOSING state and returns how many were evicted. The next prune
// pass erases them. A maxIdle of zero disables idle eviction.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	evicted := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for _, list := range sh.streams {
			for _, s := range list {
				if s.State() == StateOpen && s.idleSince().Before(cutoff) {
					s.markClosing()
					evicted++
				}
			}
		}
		sh.mu.Unlock()
	}

	if evicted > 0 {
		slog.Info("Evicted idle live streams", "count", evicted, "max_idle", maxIdle.String())
	}
	return evicted
}

// PruneDisconnected erases every stream that has left the OPEN state and
// returns the active count before and after the sweep.
func (r *Registry) PruneDisconnected() (before, after int) {
	before = r.ActiveCount()

	for _, sh := range r.shards {
		sh.mu.Lock()
		for userID, list := range sh.streams {
			kept := list[:0]
			for _, s := range list {
				if s.State() == StateOpen {
					kept = append(kept, s)
				} else {
					s.markRemoved()
				}
			}
			if len(kept) == 0 {
				delete(sh.streams, userID)
			} else {
				sh.streams[userID] = kept
			}
		}
		sh.mu.Unlock()
	}

	return before, r.ActiveCount()
}
