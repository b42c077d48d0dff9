package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionManagerLifecycle(t *testing.T) {
	sm := NewSessionManager(nil, nil, nil)
	t.Cleanup(sm.StopAll)

	r, err := sm.CreateSession(Arena{Width: 400, Height: 800}, "ana")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if got, err := sm.GetSession(r.ID); err != nil || got != r {
		t.Fatalf("GetSession returned %v, %v", got, err)
	}
	if sm.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", sm.ActiveCount())
	}

	infos := sm.ListSessions(context.Background())
	if len(infos) != 1 || infos[0].ID != r.ID || infos[0].PlayerName != "ana" || infos[0].State != StateNotRunning {
		t.Errorf("unexpected session list: %+v", infos)
	}

	snap, err := sm.EndSession(r.ID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if snap.State != StateNotRunning {
		t.Errorf("final snapshot state = %s", snap.State)
	}
	if sm.ActiveCount() != 0 {
		t.Errorf("session still hosted after EndSession")
	}
	if _, err := sm.EndSession(r.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second EndSession err = %v, want ErrSessionNotFound", err)
	}
	if _, err := sm.GetSession(r.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession after end err = %v", err)
	}
}

func TestSessionManagerRejectsSmallArena(t *testing.T) {
	sm := NewSessionManager(nil, nil, nil)
	if _, err := sm.CreateSession(Arena{Width: 100, Height: 100}, ""); !errors.Is(err, ErrArenaTooSmall) {
		t.Errorf("err = %v, want ErrArenaTooSmall", err)
	}
	if sm.ActiveCount() != 0 {
		t.Errorf("failed create should not host a session")
	}
}

func TestSessionManagerForwardsToSink(t *testing.T) {
	sm := NewSessionManager(nil, nil, nil)
	t.Cleanup(sm.StopAll)
	sink := &fakeSink{}
	sm.SetSink(sink)

	r, err := sm.CreateSession(Arena{Width: 400, Height: 800}, "")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.count(EventStateChanged) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("state_changed never reached the downstream sink")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionManagerWithoutStores(t *testing.T) {
	sm := NewSessionManager(nil, nil, nil)
	ctx := context.Background()

	if _, err := sm.LoadSnapshot(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("LoadSnapshot err = %v, want ErrSessionNotFound", err)
	}
	entries, err := sm.Leaderboard(ctx, 10)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Errorf("Leaderboard without DB = %v, %v; want empty", entries, err)
	}
	results, err := sm.PlayerResults(ctx, "ana", 10)
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("PlayerResults without DB = %v, %v; want empty", results, err)
	}

	// No Redis: must not panic.
	sm.Touch("whatever")
	StartIdleWorker(ctx, sm, nil, nil)
}

func TestIdleExpired(t *testing.T) {
	cases := []struct {
		last, now int64
		timeout   int
		want      bool
	}{
		{last: 0, now: 1000, timeout: 300, want: true},
		{last: 1000, now: 1299, timeout: 300, want: false},
		{last: 1000, now: 1300, timeout: 300, want: true},
		{last: 1000, now: 900, timeout: 300, want: false},
	}
	for _, tc := range cases {
		if got := idleExpired(tc.last, tc.now, tc.timeout); got != tc.want {
			t.Errorf("idleExpired(%d, %d, %d) = %v, want %v", tc.last, tc.now, tc.timeout, got, tc.want)
		}
	}
}

func TestSnapshotKey(t *testing.T) {
	if got := snapshotKey("abc"); got != "session:abc:state" {
		t.Errorf("snapshotKey = %q", got)
	}
	if got := lastActiveKey("abc"); got != "last_active:abc" {
		t.Errorf("lastActiveKey = %q", got)
	}
}

func TestRunStartedRefreshesStartTime(t *testing.T) {
	sm := NewSessionManager(nil, nil, nil)
	t.Cleanup(sm.StopAll)
	r, err := sm.CreateSession(Arena{Width: 400, Height: 800}, "")
	if err != nil {
		t.Fatal(err)
	}

	sm.mu.Lock()
	sm.sessions[r.ID].startedAt = time.Unix(0, 0)
	sm.mu.Unlock()

	sm.SessionEvents(r.ID, []Event{{Type: EventRunStarted, State: StateRunning}})

	s, ok := sm.lookup(r.ID)
	if !ok {
		t.Fatal("session vanished")
	}
	if time.Since(s.startedAt) > time.Minute {
		t.Errorf("run_started should reset startedAt, got %v", s.startedAt)
	}
}

func TestReapDecision(t *testing.T) {
	cases := []struct {
		last, now int64
		timeout   int
		expire    bool
		requeueAt int64
	}{
		{last: 0, now: 1000, timeout: 300, expire: true},
		{last: 700, now: 1000, timeout: 300, expire: true},
		// touched after being queued: goes back in the set at its new deadline
		{last: 900, now: 1000, timeout: 300, expire: false, requeueAt: 1200},
		{last: 1000, now: 1000, timeout: 300, expire: false, requeueAt: 1300},
	}
	for _, tc := range cases {
		expire, at := reapDecision(tc.last, tc.now, tc.timeout)
		if expire != tc.expire || at != tc.requeueAt {
			t.Errorf("reapDecision(%d, %d, %d) = %v, %d; want %v, %d", tc.last, tc.now, tc.timeout, expire, at, tc.expire, tc.requeueAt)
		}
	}
	if got := idleDeadline(1000, 300); got != 1300 {
		t.Errorf("idleDeadline = %d, want 1300", got)
	}
}
