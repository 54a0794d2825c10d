package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

// State is the lifecycle state of a live stream.
type State int32

const (
	// StateOpen means the stream is registered and receiving pushes.
	StateOpen State = iota
	// StateClosing means a disconnect was observed and removal is pending.
	StateClosing
	// StateRemoved is terminal; the map entry has been erased.
	StateRemoved
)

// streamBuffer is the per-stream event buffer size. A subscriber that falls
// this far behind is treated as broken and evicted.
const streamBuffer = 16

// Stream is one live subscriber connection. A user may hold several streams
// (multi-device). The registry owns the stream exclusively; transport
// handlers only read from Events and Done.
type Stream struct {
	id          string
	userID      string
	appFilter   string
	levelFilter string

	events chan alert.View
	done   chan struct{}

	state      atomic.Int32
	lastActive atomic.Int64 // unix nanos
	closeOnce  sync.Once
}

func newStream(userID, appFilter, levelFilter string) *Stream {
	s := &Stream{
		id:          uuid.NewString(),
		userID:      userID,
		appFilter:   appFilter,
		levelFilter: levelFilter,
		events:      make(chan alert.View, streamBuffer),
		done:        make(chan struct{}),
	}
	s.touch()
	return s
}

// ID returns the stream's unique identity.
func (s *Stream) ID() string { return s.id }

// UserID returns the owning user's identity.
func (s *Stream) UserID() string { return s.userID }

// Events is the channel the transport handler drains and writes to the wire.
func (s *Stream) Events() <-chan alert.View { return s.events }

// Done is closed when the stream leaves the OPEN state.
func (s *Stream) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle state.
func (s *Stream) State() State { return State(s.state.Load()) }

func (s *Stream) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Stream) idleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// markClosing moves the stream out of OPEN and wakes its transport handler.
// Safe to call more than once and from any goroutine.
func (s *Stream) markClosing() {
	s.state.CompareAndSwap(int32(StateOpen), int32(StateClosing))
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Stream) markRemoved() {
	s.markClosing()
	s.state.Store(int32(StateRemoved))
}

// matches reports whether the stream's filters accept the alert.
// An unset filter matches everything.
func (s *Stream) matches(view alert.View) bool {
	if s.appFilter != "" && s.appFilter != view.App {
		return false
	}
	if s.levelFilter != "" && s.levelFilter != view.Level {
		return false
	}
	return true
}

// send delivers the view without blocking. A closed or saturated stream
// reports failure; the caller evicts it.
func (s *Stream) send(view alert.View) bool {
	if s.State() != StateOpen {
		return false
	}
	select {
	case s.events <- view:
		s.touch()
		return true
	case <-s.done:
		return false
	default:
		// Buffer full: the subscriber stopped draining. Treat as broken.
		return false
	}
}
