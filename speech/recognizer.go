// Package speech turns one spoken utterance into text. Capture is the
// per-board state machine; Recognizer is the platform capability it drives.
package speech

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned when no recognition capability exists.
	ErrUnsupported = errors.New("speech recognition unsupported")
	// ErrNoSpeech reports an attempt that ended without recognizable speech.
	ErrNoSpeech = errors.New("no speech detected")
)

type EventKind int

const (
	EventResult EventKind = iota
	EventError
)

func (k EventKind) String() string {
	if k == EventResult {
		return "result"
	}
	return "error"
}

type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Config configures one recognition attempt.
type Config struct {
	Locale     string
	Continuous bool
	Interim    bool
}

// Session is one recognition attempt. Events yields at most one Result or
// Error and then closes. A cancelled session may close without an event.
type Session interface {
	Events() <-chan Event
	Cancel()
}

type Recognizer interface {
	Supported() bool
	Start(ctx context.Context, cfg Config) (Session, error)
}
