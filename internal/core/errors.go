package core

import "errors"

// Session-level failure taxonomy. Directory and send failures surface to
// the user inline; presence failures are logged and swallowed.
var (
	// ErrBackendUnavailable: feature flag off or store init failed.
	// Every room operation refuses immediately, never retried.
	ErrBackendUnavailable = errors.New("chat backend unavailable")
	// ErrInvalidCode: empty-after-trim join input.
	ErrInvalidCode = errors.New("invalid room code")
	// ErrNotFound: no room stored under the code. User-recoverable.
	ErrNotFound = errors.New("room not found")
	// ErrCodeExhausted: five consecutive create collisions.
	ErrCodeExhausted = errors.New("could not generate a unique room code")
	// ErrSendFailed: message append failed. User may resend.
	ErrSendFailed = errors.New("failed to send message")
	// ErrNoActiveRoom: send attempted outside an active room.
	ErrNoActiveRoom = errors.New("no active room")
	// ErrSuperseded: a newer join/create/leave replaced this operation
	// before it completed; its results were discarded.
	ErrSuperseded = errors.New("operation superseded")
)
