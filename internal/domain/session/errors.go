package session

import "errors"

// Session domain errors
var (
	ErrSessionNotFound   = errors.New("schedule session not found")
	ErrInvalidTransition = errors.New("illegal session status transition")
	ErrBreakAlreadyOpen  = errors.New("a break period is already open")
	ErrNoOpenBreak       = errors.New("no open break period to close")
	ErrAlreadyClockedIn  = errors.New("session is already clocked in")
	ErrNotClockedIn      = errors.New("session is not clocked in")
)
