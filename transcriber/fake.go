package transcriber

import (
	"context"
	"fmt"
	"sync"
)

type FakeTranscriber struct {
	text string
	err  error

	mu      sync.Mutex
	locales []string
	fed     int
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	f.mu.Lock()
	f.locales = append(f.locales, cfg.Locale)
	f.mu.Unlock()
	return &fakeSession{parent: f}, nil
}

// Locales lists the locale of every session opened so far.
func (f *FakeTranscriber) Locales() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.locales...)
}

// FedBytes is the total PCM fed across all sessions.
func (f *FakeTranscriber) FedBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fed
}

type fakeSession struct {
	parent *FakeTranscriber
}

func (s *fakeSession) Feed(pcm []byte) {
	s.parent.mu.Lock()
	s.parent.fed += len(pcm)
	s.parent.mu.Unlock()
}

func (s *fakeSession) Abort() {}

func (s *fakeSession) Close() (SessionResult, error) {
	if s.parent.err != nil {
		return SessionResult{}, fmt.Errorf("fake transcriber error: %w", s.parent.err)
	}
	return SessionResult{
		Text:     s.parent.text,
		HasText:  s.parent.text != "",
		NoSpeech: s.parent.text == "",
		Batch: &BatchStats{
			AudioLengthS: 1.0,
			TotalTimeMs:  10,
		},
		Metrics: []string{"total: 10ms (fake)"},
	}, nil
}
