package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// Commands accepted on a Runner's inbox.
type (
	motionCmd struct {
		GX, GY      float64
		Orientation Orientation
	}
	tiltCmd struct {
		AX, AY float64
	}
	resetCmd    struct{}
	snapshotCmd struct {
		Reply chan Snapshot
	}
)

// Runner hosts one session on its own goroutine. Sensor samples, resets and
// frame ticks are all applied there, so the Controller never sees concurrent calls.
type Runner struct {
	ID        string
	CreatedAt time.Time

	inbox          chan any
	tickHz         int
	broadcastEvery int
	ticks          int

	ctrl     *Controller
	tilt     *TiltAdapter
	contacts ContactDetector
	sink     EventSink

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRunner wraps ctrl. tickHz drives Step; while the session is Running a
// state snapshot goes to sink every tickHz/broadcastHz ticks, plus the final
// frame when it ends.
func NewRunner(id string, ctrl *Controller, sink EventSink, tickHz, broadcastHz int) *Runner {
	if tickHz <= 0 {
		tickHz = 60
	}
	broadcastEvery := 1
	if broadcastHz > 0 && broadcastHz < tickHz {
		broadcastEvery = tickHz / broadcastHz
	}
	return &Runner{
		ID:             id,
		CreatedAt:      time.Now(),
		inbox:          make(chan any, 256),
		tickHz:         tickHz,
		broadcastEvery: broadcastEvery,
		ctrl:           ctrl,
		tilt:           NewTiltAdapter(),
		sink:           sink,
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Run blocks until Stop is called.
func (r *Runner) Run() {
	defer close(r.done)

	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	r.flush()
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case <-ticker.C:
			r.tick()
		}
	}
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	<-r.done
}

// Motion queues a raw gravity sample. Samples are dropped rather than blocking
// the caller when the inbox is full; the next one supersedes them anyway.
func (r *Runner) Motion(gx, gy float64, o Orientation) {
	r.offer(motionCmd{GX: gx, GY: gy, Orientation: o})
}

// Tilt queues an already smoothed control vector.
func (r *Runner) Tilt(ax, ay float64) {
	r.offer(tiltCmd{AX: ax, AY: ay})
}

// Reset queues an explicit restart.
func (r *Runner) Reset(ctx context.Context) error {
	return r.send(ctx, resetCmd{})
}

// Snapshot asks the runner goroutine for a consistent copy of the session.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := r.send(ctx, snapshotCmd{Reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return Snapshot{}, ErrSessionStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (r *Runner) offer(cmd any) {
	select {
	case r.inbox <- cmd:
	default:
		log.Printf("[GAME] session %s inbox full, dropping %T", r.ID, cmd)
	}
}

func (r *Runner) send(ctx context.Context, cmd any) error {
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.quit:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) handle(cmd any) {
	switch c := cmd.(type) {
	case motionCmd:
		v := r.tilt.Sample(c.GX, c.GY, c.Orientation)
		r.ctrl.SetTilt(v.X, v.Y)
	case tiltCmd:
		r.ctrl.SetTilt(c.AX, c.AY)
	case resetCmd:
		r.ctrl.Reset()
		r.contacts.Clear()
	case snapshotCmd:
		c.Reply <- r.ctrl.Snapshot()
	}
	r.flush()
}

func (r *Runner) tick() {
	r.ticks++
	if r.ctrl.State() != StateRunning {
		return
	}

	r.ctrl.Step(1 / float64(r.tickHz))
	r.contacts.Detect(r.ctrl.Ball(), r.ctrl.Platform(), r.ctrl.Arena(), r.ctrl)
	ended := r.flush()

	if ended || r.ticks%r.broadcastEvery == 0 {
		if r.sink != nil {
			r.sink.SessionSnapshot(r.ID, r.ctrl.Snapshot())
		}
	}
}

// flush hands buffered controller events to the sink and reports whether the
// session ended in this batch.
func (r *Runner) flush() bool {
	events := r.ctrl.DrainEvents()
	if len(events) == 0 {
		return false
	}
	ended := false
	for _, e := range events {
		if e.Type == EventSessionEnded {
			ended = true
			log.Printf("[GAME] session %s ended with score %d", r.ID, e.Score)
		}
	}
	if r.sink != nil {
		r.sink.SessionEvents(r.ID, events)
	}
	return ended
}
