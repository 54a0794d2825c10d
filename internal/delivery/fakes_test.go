package delivery

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/database"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

type readResult struct {
	ua  *events.UserAlert
	msg *kafka.Message
	err error
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

func (f *fakeReader) ReadUserAlert(ctx context.Context) (*events.UserAlert, *kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.results) {
		f.stop()
		return nil, nil, ctx.Err()
	}
	r := f.results[f.idx]
	f.idx++
	return r.ua, r.msg, r.err
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

type fakeAlerts struct {
	mu     sync.Mutex
	alerts map[string]*alert.Alert
	err    error
}

func (f *fakeAlerts) GetAlert(_ context.Context, alertID string) (*alert.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrAlertNotFound, alertID)
	}
	return a, nil
}

type fakeStreams struct {
	mu        sync.Mutex
	connected map[string]bool
	pushed    map[string][]alert.View
}

func newFakeStreams(connectedUsers ...string) *fakeStreams {
	f := &fakeStreams{
		connected: make(map[string]bool),
		pushed:    make(map[string][]alert.View),
	}
	for _, u := range connectedUsers {
		f.connected[u] = true
	}
	return f
}

func (f *fakeStreams) Push(userID string, view alert.View) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected[userID] {
		return 0
	}
	f.pushed[userID] = append(f.pushed[userID], view)
	return 1
}

func (f *fakeStreams) pushedTo(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed[userID])
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (f *fakeTokens) Get(_ context.Context, userID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	tok, ok := f.tokens[userID]
	return tok, ok, nil
}

type sentPush struct {
	token string
	title string
	body  string
	data  map[string]string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (f *fakePusher) Send(_ context.Context, deviceToken, title, body string, data map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentPush{token: deviceToken, title: title, body: body, data: data})
	return "delivery-1", nil
}

func (f *fakePusher) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeDLQ struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (f *fakeDLQ) Publish(_ context.Context, _ *kafka.Message, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reasons = append(f.reasons, reason)
	return nil
}

func (f *fakeDLQ) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons)
}
