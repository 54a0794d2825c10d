package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// fastRetryConfig keeps test retries in the microsecond range.
func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Microsecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  2.0,
	}
}

type readResult struct {
	created *events.AlertCreated
	msg     *kafka.Message
	err     error
}

// fakeReader serves a fixed sequence of read results and cancels the run
// context once the sequence is exhausted.
type fakeReader struct {
	mu        sync.Mutex
	results   []readResult
	idx       int
	stop      context.CancelFunc
	committed []*kafka.Message
}

func (f *fakeReader) ReadAlertCreated(ctx context.Context) (*events.AlertCreated, *kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.results) {
		f.stop()
		return nil, nil, ctx.Err()
	}
	r := f.results[f.idx]
	f.idx++
	return r.created, r.msg, r.err
}

func (f *fakeReader) CommitMessage(_ context.Context, msg *kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg)
	return nil
}

func (f *fakeReader) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*events.UserAlert
	failures  int // fail this many calls before succeeding
	alwaysErr error
}

func (f *fakePublisher) PublishUserAlert(_ context.Context, ua *events.UserAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alwaysErr != nil {
		return f.alwaysErr
	}
	if f.failures > 0 {
		f.failures--
		return errTransient
	}
	f.published = append(f.published, ua)
	return nil
}

func (f *fakePublisher) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type fakeStorage struct {
	mu        sync.Mutex
	inserted  map[string]string // "alertID/userID" -> status ID
	duplicate bool              // report every pair as already existing
	failures  int
	alwaysErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{inserted: make(map[string]string)}
}

func (f *fakeStorage) InsertStatusIdempotent(_ context.Context, alertID, userID string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alwaysErr != nil {
		return nil, f.alwaysErr
	}
	if f.failures > 0 {
		f.failures--
		return nil, errTransient
	}
	if f.duplicate {
		return nil, nil
	}
	key := alertID + "/" + userID
	if _, ok := f.inserted[key]; ok {
		return nil, nil
	}
	id := "status-" + userID
	f.inserted[key] = id
	return &id, nil
}

type fakeResolver struct {
	users    []string
	err      error
	failures int
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, _ *events.AlertCreated) ([]string, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errTransient
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

type dlqEntry struct {
	msg    *kafka.Message
	reason string
}

type fakeDLQ struct {
	mu      sync.Mutex
	entries []dlqEntry
	err     error
}

func (f *fakeDLQ) Publish(_ context.Context, failed *kafka.Message, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, dlqEntry{msg: failed, reason: reason})
	return nil
}

func (f *fakeDLQ) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeDirectory struct {
	all      []string
	filtered []string
	err      error

	allCalls    int
	filterCalls int
	lastFilter  []string
}

func (f *fakeDirectory) AllUserIDs(_ context.Context) ([]string, error) {
	f.allCalls++
	return f.all, f.err
}

func (f *fakeDirectory) UserIDsByList(_ context.Context, ids []string) ([]string, error) {
	f.filterCalls++
	f.lastFilter = ids
	return f.filtered, f.err
}
