package model

import "errors"

// Error taxonomy. Every user-facing failure wraps one of these so callers
// can decide how to surface it without string matching.
var (
	// ErrValidation marks missing or out-of-range user input. The action is
	// blocked and no state changes.
	ErrValidation = errors.New("invalid input")

	// ErrDevice marks a denied microphone permission or an absent input
	// device. The session never starts.
	ErrDevice = errors.New("audio device unavailable")

	// ErrUnsupported marks a platform that offers no speech recognition.
	ErrUnsupported = errors.New("speech recognition unsupported")

	// ErrRemote marks a failed summarization call. Nothing is written.
	ErrRemote = errors.New("remote summarization failed")

	// ErrNotFound marks an operation referencing a missing event or folder.
	ErrNotFound = errors.New("not found")
)
