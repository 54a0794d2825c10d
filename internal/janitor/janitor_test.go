package janitor

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeRegistry struct {
	mu          sync.Mutex
	active      int
	evictCalls  int
	pruneCalls  int
	lastMaxIdle time.Duration
	panicOnce   bool
}

func (f *fakeRegistry) ActiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeRegistry) EvictIdle(maxIdle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictCalls++
	f.lastMaxIdle = maxIdle
	return 0
}

func (f *fakeRegistry) PruneDisconnected() (int, int) {
	f.mu.Lock()
	if f.panicOnce {
		f.panicOnce = false
		f.mu.Unlock()
		panic("sweep blew up")
	}
	f.pruneCalls++
	active := f.active
	f.mu.Unlock()
	return active, active
}

func (f *fakeRegistry) prunes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pruneCalls
}

type fakeGauges struct {
	mu     sync.Mutex
	values map[string]float64
}

func (f *fakeGauges) SetGauge(name string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]float64)
	}
	f.values[name] = value
}

func (f *fakeGauges) get(name string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[name]
	return v, ok
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestJanitorRunsPruneSweeps(t *testing.T) {
	reg := &fakeRegistry{active: 3}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := New(reg, 10*time.Millisecond, time.Hour, 5*time.Minute)
	j.Start(ctx)

	waitFor(t, func() bool { return reg.prunes() >= 2 }, "prune sweep never ran")

	cancel()
	j.Wait()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.evictCalls == 0 {
		t.Error("EvictIdle never called")
	}
	if reg.lastMaxIdle != 5*time.Minute {
		t.Errorf("EvictIdle maxIdle = %v, want 5m", reg.lastMaxIdle)
	}
}

func TestJanitorReportsGauges(t *testing.T) {
	reg := &fakeRegistry{active: 7}
	gauges := &fakeGauges{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := New(reg, time.Hour, 10*time.Millisecond, 0).WithGauges(gauges)
	j.Start(ctx)

	waitFor(t, func() bool {
		v, ok := gauges.get("active_streams")
		return ok && v == 7
	}, "active_streams gauge never reported")

	if _, ok := gauges.get("heap_alloc_bytes"); !ok {
		t.Error("heap_alloc_bytes gauge never reported")
	}

	cancel()
	j.Wait()
}

func TestJanitorSurvivesPanickingSweep(t *testing.T) {
	reg := &fakeRegistry{panicOnce: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := New(reg, 10*time.Millisecond, time.Hour, 0)
	j.Start(ctx)

	// The first sweep panics; later sweeps must still run.
	waitFor(t, func() bool { return reg.prunes() >= 1 }, "janitor did not recover from panic")

	cancel()
	j.Wait()
}

func TestJanitorStopsOnCancel(t *testing.T) {
	reg := &fakeRegistry{}
	ctx, cancel := context.WithCancel(context.Background())

	j := New(reg, time.Hour, time.Hour, 0)
	j.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		j.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after cancellation")
	}
}
