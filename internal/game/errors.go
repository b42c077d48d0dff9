package game

import "errors"

var (
	ErrArenaTooSmall   = errors.New("arena too small for a platform")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStopped  = errors.New("session stopped")
)
