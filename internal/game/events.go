package game

// EventType names a controller output event.
type EventType string

const (
	EventScoreChanged     EventType = "score_changed"
	EventStateChanged     EventType = "state_changed"
	EventPlatformSpawned  EventType = "platform_spawned"
	EventPlatformConsumed EventType = "platform_consumed"
	EventSessionEnded     EventType = "session_ended"
	EventRunStarted       EventType = "run_started" // every Reset, including one while already Running
)

// Event is emitted by the controller as a side effect of a state transition.
// Score always carries the score at the moment the event was produced, so for
// EventSessionEnded it is the final score.
type Event struct {
	Type     EventType
	Score    int
	State    SessionState
	Platform *Platform
}

// EventSink receives drained controller output. Calls arrive on the session's
// runner goroutine and must not block it for long.
type EventSink interface {
	SessionEvents(sessionID string, events []Event)
	SessionSnapshot(sessionID string, snap Snapshot)
}
