package game

// SessionState is the lifecycle state of a tilt-ball session
type SessionState string

const (
	StateNotRunning SessionState = "NOT_RUNNING"
	StateRunning    SessionState = "RUNNING"
	StateDead       SessionState = "DEAD"
)

// Arena is the playfield size in points.
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate reports ErrArenaTooSmall when a platform could not fit inside the padding.
func (a Arena) Validate() error {
	if !(a.Width >= MinArenaWidth) || !(a.Height >= MinArenaHeight) {
		return ErrArenaTooSmall
	}
	return nil
}

func (a Arena) Center() Vec2 {
	return Vec2{X: a.Width / 2, Y: a.Height / 2}
}

// BallRadius is the radius the ball gets in this arena.
func (a Arena) BallRadius() float64 {
	return min(a.Width, a.Height) * BallRadiusFactor
}

// TouchesBorder reports whether a circle reaches the inset border loop.
func (a Arena) TouchesBorder(center Vec2, radius float64) bool {
	return center.X-radius <= BorderInset || center.X+radius >= a.Width-BorderInset ||
		center.Y-radius <= BorderInset || center.Y+radius >= a.Height-BorderInset
}

// Ball is the player-controlled body.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Mass     float64 `json:"mass"`
}

// Platform is the scoring target. Position is its center.
type Platform struct {
	ID       uint64  `json:"id"`
	Position Vec2    `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Hit      bool    `json:"hit"`
}

// Overlaps reports whether a circle intersects the platform rectangle.
func (p Platform) Overlaps(center Vec2, radius float64) bool {
	halfW, halfH := p.Width/2, p.Height/2
	cx := max(p.Position.X-halfW, min(center.X, p.Position.X+halfW))
	cy := max(p.Position.Y-halfH, min(center.Y, p.Position.Y+halfH))
	dx, dy := center.X-cx, center.Y-cy
	return dx*dx+dy*dy <= radius*radius
}

// Snapshot is a copy of everything a renderer needs for one frame.
type Snapshot struct {
	State    SessionState `json:"state"`
	Score    int          `json:"score"`
	Arena    Arena        `json:"arena"`
	Ball     Ball         `json:"ball"`
	Input    Vec2         `json:"input"`
	Platform *Platform    `json:"platform"`
	Fading   *Platform    `json:"fading,omitempty"`
}
