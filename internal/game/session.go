package game

import (
	"math"
	"math/rand/v2"
)

// Controller owns one tilt-ball session: ball, platform, score and lifecycle.
// It is not safe for concurrent use; a Runner serializes every call.
type Controller struct {
	arena    Arena
	state    SessionState
	score    int
	ball     Ball
	input    Vec2
	platform *Platform // live target, never Hit while live
	fading   *Platform // consumed target kept for the fade-out animation
	fadeLeft float64
	nextID   uint64
	rng      *rand.Rand
	events   []Event
}

// NewController places the ball and the first platform in arena and leaves the
// session NotRunning until the first qualifying tilt. A nil rng gets a random seed.
func NewController(arena Arena, rng *rand.Rand) (*Controller, error) {
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c := &Controller{
		arena: arena,
		state: StateNotRunning,
		ball: Ball{
			Position: arena.Center(),
			Radius:   arena.BallRadius(),
			Mass:     BallMass,
		},
		rng:    rng,
		events: make([]Event, 0, 8),
	}
	c.spawnPlatform()
	return c, nil
}

// Reset starts a fresh run: new platform, centered ball at rest, score zero.
func (c *Controller) Reset() {
	c.platform = nil
	c.fading = nil
	c.fadeLeft = 0

	c.ball.Position = c.arena.Center()
	c.ball.Velocity = Vec2{}

	if c.score != 0 {
		c.score = 0
		c.emit(Event{Type: EventScoreChanged})
	}
	c.spawnPlatform()
	c.setState(StateRunning)
	c.emit(Event{Type: EventRunStarted})
}

// SetTilt stores the control vector. While NotRunning, a tilt whose magnitude
// exceeds StartThreshold starts the run.
func (c *Controller) SetTilt(ax, ay float64) {
	c.input = Vec2{X: clampUnit(ax), Y: clampUnit(ay)}

	if c.state == StateNotRunning && c.input.Magnitude() > StartThreshold {
		c.Reset()
	}
}

// Step advances the ball by dt seconds. It does nothing unless Running.
func (c *Controller) Step(dt float64) {
	if c.state != StateRunning {
		return
	}
	dt = finite(dt)
	if dt <= 0 {
		return
	}
	if dt > MaxStepSeconds {
		dt = MaxStepSeconds
	}

	c.advanceFade(dt)

	force := c.input.Times(AccelScale * c.ball.Mass)
	accel := force.Times(1 / c.ball.Mass)

	v := c.ball.Velocity.Plus(accel.Times(dt))
	v = v.Times(math.Exp(-LinearDamping * dt))
	v = v.ClampMagnitude(MaxSpeed)

	c.ball.Velocity = v
	c.ball.Position = c.ball.Position.Plus(v.Times(dt))

	if c.arena.TouchesBorder(c.ball.Position, c.ball.Radius) {
		c.die()
	}
}

// OnPlatformContact scores the platform with the given id. Contacts with a
// platform that is no longer live, or with a dead session, are ignored.
// It reports whether the contact scored.
func (c *Controller) OnPlatformContact(id uint64) bool {
	p := c.platform
	if c.state == StateDead || p == nil || p.ID != id || p.Hit {
		return false
	}

	p.Hit = true
	c.score++
	c.emit(Event{Type: EventPlatformConsumed, Platform: copyPlatform(p)})
	c.emit(Event{Type: EventScoreChanged})

	c.fading = p
	c.fadeLeft = PlatformFadeSeconds
	c.platform = nil
	c.spawnPlatform()
	return true
}

// OnBorderContact ends a running session. Repeated calls are no-ops.
func (c *Controller) OnBorderContact() {
	c.die()
}

func (c *Controller) die() {
	if c.state != StateRunning {
		return
	}
	c.setState(StateDead)
	c.emit(Event{Type: EventSessionEnded})
}

func (c *Controller) setState(s SessionState) {
	if c.state == s {
		return
	}
	c.state = s
	c.emit(Event{Type: EventStateChanged})
}

func (c *Controller) advanceFade(dt float64) {
	if c.fading == nil {
		return
	}
	c.fadeLeft -= dt
	if c.fadeLeft <= 0 {
		c.fading = nil
		c.fadeLeft = 0
	}
}

// spawnPlatform places a new live platform fully inside the arena minus
// padding, avoiding the ball when a few random draws allow it.
func (c *Controller) spawnPlatform() {
	var p Platform
	for attempt := 0; attempt < SpawnAttempts; attempt++ {
		w := c.between(PlatformMinWidth, PlatformMaxWidth)
		h := c.between(PlatformMinHeight, PlatformMaxHeight)
		p = Platform{
			Position: Vec2{
				X: c.between(SpawnPadding, c.arena.Width-SpawnPadding-w) + w/2,
				Y: c.between(SpawnPadding, c.arena.Height-SpawnPadding-h) + h/2,
			},
			Width:  w,
			Height: h,
		}
		if !p.Overlaps(c.ball.Position, c.ball.Radius) {
			break
		}
	}

	c.nextID++
	p.ID = c.nextID
	c.platform = &p
	c.emit(Event{Type: EventPlatformSpawned, Platform: copyPlatform(&p)})
}

func (c *Controller) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Float64()*(hi-lo)
}

func (c *Controller) emit(e Event) {
	e.Score = c.score
	e.State = c.state
	c.events = append(c.events, e)
}

// DrainEvents returns and clears the buffered events in emission order.
func (c *Controller) DrainEvents() []Event {
	if len(c.events) == 0 {
		return nil
	}
	out := c.events
	c.events = make([]Event, 0, 8)
	return out
}

func (c *Controller) State() SessionState { return c.state }
func (c *Controller) Score() int          { return c.score }
func (c *Controller) Arena() Arena        { return c.arena }
func (c *Controller) Ball() Ball          { return c.ball }
func (c *Controller) Input() Vec2         { return c.input }

// Platform returns a copy of the live platform, or nil.
func (c *Controller) Platform() *Platform { return copyPlatform(c.platform) }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:    c.state,
		Score:    c.score,
		Arena:    c.arena,
		Ball:     c.ball,
		Input:    c.input,
		Platform: copyPlatform(c.platform),
		Fading:   copyPlatform(c.fading),
	}
}

func copyPlatform(p *Platform) *Platform {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
