package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

type fakeSink struct {
	mu        sync.Mutex
	events    []Event
	snapshots []Snapshot
}

func (f *fakeSink) SessionEvents(_ string, events []Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
}

func (f *fakeSink) SessionSnapshot(_ string, snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snap)
}

func (f *fakeSink) count(typ EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return countEvents(f.events, typ)
}

func (f *fakeSink) lastSnapshot() (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return Snapshot{}, false
	}
	return f.snapshots[len(f.snapshots)-1], true
}

func newTestRunner(t *testing.T, sink EventSink) *Runner {
	t.Helper()
	ctrl, err := NewController(Arena{Width: 400, Height: 800}, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner("test-session", ctrl, sink, 60, 20)
}

func TestRunnerTiltStartsAndBorderEnds(t *testing.T) {
	sink := &fakeSink{}
	r := newTestRunner(t, sink)

	r.handle(tiltCmd{AX: 0.5, AY: 0})
	if r.ctrl.State() != StateRunning {
		t.Fatalf("state = %s, want RUNNING", r.ctrl.State())
	}
	if sink.count(EventStateChanged) != 1 {
		t.Errorf("expected state_changed to be flushed to the sink")
	}

	for i := 0; i < 3000 && r.ctrl.State() == StateRunning; i++ {
		r.tick()
	}
	if r.ctrl.State() != StateDead {
		t.Fatalf("ball never reached the border: %+v", r.ctrl.Ball())
	}
	if n := sink.count(EventSessionEnded); n != 1 {
		t.Errorf("session_ended delivered %d times, want 1", n)
	}
	last, ok := sink.lastSnapshot()
	if !ok || last.State != StateDead {
		t.Errorf("final snapshot should be DEAD, got %+v", last)
	}

	// Ticks after death change nothing.
	before := len(sink.snapshots)
	r.tick()
	if len(sink.snapshots) != before {
		t.Error("dead session should not broadcast on tick")
	}
}

func TestRunnerBroadcastRate(t *testing.T) {
	sink := &fakeSink{}
	r := newTestRunner(t, sink)
	r.handle(resetCmd{})

	for i := 0; i < 30; i++ {
		r.tick()
	}
	sink.mu.Lock()
	n := len(sink.snapshots)
	sink.mu.Unlock()
	if n != 10 {
		t.Errorf("60Hz ticks at 20Hz broadcast: got %d snapshots in 30 ticks, want 10", n)
	}
}

func TestRunnerMotionIsSmoothed(t *testing.T) {
	r := newTestRunner(t, &fakeSink{})
	r.handle(motionCmd{GX: 1, GY: 0, Orientation: OrientationPortrait})

	got := r.ctrl.Input()
	if got.X <= 0 || got.X >= 1 {
		t.Errorf("controller should see the smoothed vector, got %+v", got)
	}
	if r.ctrl.State() != StateRunning {
		t.Errorf("a smoothed full tilt is above the start threshold")
	}
}

func TestRunnerResetClearsContacts(t *testing.T) {
	r := newTestRunner(t, &fakeSink{})
	r.contacts.touchingBorder = true
	r.contacts.touchingPlatform = 9
	r.contacts.seenPlatform = 9
	r.handle(resetCmd{})
	if r.contacts.touchingBorder || r.contacts.touchingPlatform != 0 || r.contacts.seenPlatform != 0 {
		t.Errorf("reset should clear contact tracking: %+v", r.contacts)
	}
}

func TestRunnerOfferDropsWhenFull(t *testing.T) {
	r := newTestRunner(t, nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(r.inbox)+50; i++ {
			r.Motion(0.1, 0.1, OrientationPortrait)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Motion blocked on a full inbox")
	}
	if len(r.inbox) != cap(r.inbox) {
		t.Errorf("inbox len = %d, want %d", len(r.inbox), cap(r.inbox))
	}
}

func TestRunnerLoop(t *testing.T) {
	sink := &fakeSink{}
	r := newTestRunner(t, sink)
	go r.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != StateRunning || snap.Platform == nil {
		t.Errorf("unexpected snapshot after reset: %+v", snap)
	}

	r.Stop()
	r.Stop()

	if _, err := r.Snapshot(ctx); !errors.Is(err, ErrSessionStopped) {
		t.Errorf("Snapshot after Stop err = %v, want ErrSessionStopped", err)
	}
}

func TestRunnerConcurrentStop(t *testing.T) {
	r := newTestRunner(t, &fakeSink{})
	go r.Run()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop()
		}()
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent Stop calls did not all return")
	}
}
