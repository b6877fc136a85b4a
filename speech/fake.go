package speech

import (
	"context"
	"sync"
)

// FakeRecognizer hands out sessions that stay pending until the test
// resolves them, unless an outcome was queued with Push or PushError.
type FakeRecognizer struct {
	unsupported bool
	startErr    error
	gate        chan struct{}

	mu       sync.Mutex
	queue    []Event
	configs  []Config
	sessions []*FakeSession
}

func NewFakeRecognizer() *FakeRecognizer { return &FakeRecognizer{} }

// NewUnsupportedRecognizer reports no capability.
func NewUnsupportedRecognizer() *FakeRecognizer {
	return &FakeRecognizer{unsupported: true}
}

func (f *FakeRecognizer) Supported() bool { return !f.unsupported }

// FailStart makes every subsequent Start return err.
func (f *FakeRecognizer) FailStart(err error) {
	f.mu.Lock()
	f.startErr = err
	f.mu.Unlock()
}

// HoldStart makes Start block until the returned release func is called,
// like a slow audio device.
func (f *FakeRecognizer) HoldStart() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Push queues a transcript for the next started session.
func (f *FakeRecognizer) Push(text string) {
	f.mu.Lock()
	f.queue = append(f.queue, Event{Kind: EventResult, Text: text})
	f.mu.Unlock()
}

// PushError queues a failure for the next started session.
func (f *FakeRecognizer) PushError(err error) {
	f.mu.Lock()
	f.queue = append(f.queue, Event{Kind: EventError, Err: err})
	f.mu.Unlock()
}

func (f *FakeRecognizer) Start(_ context.Context, cfg Config) (Session, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported {
		return nil, ErrUnsupported
	}
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.configs = append(f.configs, cfg)
	s := &FakeSession{events: make(chan Event, 1)}
	f.sessions = append(f.sessions, s)
	if len(f.queue) > 0 {
		ev := f.queue[0]
		f.queue = f.queue[1:]
		s.emit(ev)
	}
	return s, nil
}

// Configs lists the configuration of every started session.
func (f *FakeRecognizer) Configs() []Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Config(nil), f.configs...)
}

// Session returns the i-th started session, or nil.
func (f *FakeRecognizer) Session(i int) *FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.sessions) {
		return nil
	}
	return f.sessions[i]
}

// FakeSession emits whatever it is resolved with, even after Cancel, so
// tests can model a platform that reports late.
type FakeSession struct {
	mu        sync.Mutex
	events    chan Event
	done      bool
	cancelled bool
}

func (s *FakeSession) Events() <-chan Event { return s.events }

func (s *FakeSession) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

func (s *FakeSession) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *FakeSession) Resolve(text string) { s.emit(Event{Kind: EventResult, Text: text}) }

func (s *FakeSession) Fail(err error) { s.emit(Event{Kind: EventError, Err: err}) }

// End closes the session without a verdict.
func (s *FakeSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.done = true
		close(s.events)
	}
}

func (s *FakeSession) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.events <- ev
	close(s.events)
}
