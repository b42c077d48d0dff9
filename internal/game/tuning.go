package game

// Tuning for the tilt-ball session. These match the handheld build so that a
// client renderer interpolating snapshots sees the same motion the server simulates.
const (
	AccelScale       = 300.0 // points/s² at full tilt
	MaxSpeed         = 400.0 // points/s
	BallMass         = 0.2
	BallRadiusFactor = 0.03 // radius = min(arena w, h) × factor
	LinearDamping    = 0.6  // per second, applied as exp(-d·dt)
	BorderInset      = 2.0

	SpawnPadding        = 22.0
	PlatformMinWidth    = 80.0
	PlatformMaxWidth    = 200.0
	PlatformMinHeight   = 16.0
	PlatformMaxHeight   = 44.0
	PlatformFadeSeconds = 0.12
	SpawnAttempts       = 8 // retries to keep a fresh platform off the ball

	StartThreshold = 0.03 // tilt magnitude that starts a NotRunning session
	MaxStepSeconds = 0.1  // longer frames are capped so a stalled host cannot teleport the ball

	TiltGain      = 1.2
	TiltSmoothing = 0.15
)

// Smallest arena that can hold the widest and tallest platform inside the padding.
const (
	MinArenaWidth  = 2*SpawnPadding + PlatformMaxWidth
	MinArenaHeight = 2*SpawnPadding + PlatformMaxHeight
)
