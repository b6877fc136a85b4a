package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talkboard/audio"
	"talkboard/encoder"
	"talkboard/log"
	"talkboard/transcriber"
)

// Mic records one utterance from a capture device and hands it to a
// transcription provider.
type Mic struct {
	actx   audio.Context
	device *audio.DeviceInfo
	tr     transcriber.Transcriber
	cfg    EndpointConfig
}

// NewMic returns a recognizer over actx and tr. Either may be nil, in which
// case the recognizer is unsupported. A nil device selects the system
// default input.
func NewMic(actx audio.Context, device *audio.DeviceInfo, tr transcriber.Transcriber, cfg EndpointConfig) *Mic {
	cfg.SampleRate = encoder.SampleRate
	return &Mic{actx: actx, device: device, tr: tr, cfg: cfg}
}

func (m *Mic) Supported() bool { return m.actx != nil && m.tr != nil }

func (m *Mic) Start(ctx context.Context, cfg Config) (Session, error) {
	if !m.Supported() {
		return nil, ErrUnsupported
	}
	if cfg.Continuous || cfg.Interim {
		return nil, fmt.Errorf("continuous or interim recognition not available")
	}

	capture, err := m.actx.NewCapture(m.device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, fmt.Errorf("opening capture device: %w", err)
	}

	tsess, err := m.tr.NewSession(ctx, transcriber.SessionConfig{Locale: cfg.Locale})
	if err != nil {
		capture.Close()
		return nil, fmt.Errorf("opening transcription session: %w", err)
	}

	s := &micSession{
		ctx:      ctx,
		provider: m.tr.Name(),
		capture:  capture,
		tsess:    tsess,
		ep:       newEndpointer(m.cfg),
		events:   make(chan Event, 1),
		ended:    make(chan struct{}),
		cancel:   make(chan struct{}),
	}
	capture.SetCallback(s.onAudio)
	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		tsess.Abort()
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	go s.run()
	return s, nil
}

type micSession struct {
	ctx      context.Context
	provider string
	capture  audio.CaptureDevice
	tsess    transcriber.Session
	events   chan Event

	mu      sync.Mutex
	ep      *endpointer
	reason  EndReason
	stopped bool

	ended      chan struct{}
	endOnce    sync.Once
	cancel     chan struct{}
	cancelOnce sync.Once
}

func (s *micSession) Events() <-chan Event { return s.events }

func (s *micSession) Cancel() {
	s.cancelOnce.Do(func() { close(s.cancel) })
}

func (s *micSession) onAudio(data []byte, _ uint32) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	pcm := make([]byte, len(data))
	copy(pcm, data)
	reason := s.ep.Feed(pcm)
	if reason != EndNone {
		s.reason = reason
		s.stopped = true
	}
	s.mu.Unlock()

	s.tsess.Feed(pcm)
	if reason != EndNone {
		s.endOnce.Do(func() { close(s.ended) })
	}
}

func (s *micSession) stopCapture() EndReason {
	s.capture.Stop()
	s.capture.ClearCallback()
	s.capture.Close()
	s.mu.Lock()
	s.stopped = true
	reason := s.reason
	s.mu.Unlock()
	return reason
}

func (s *micSession) run() {
	defer close(s.events)

	select {
	case <-s.ended:
	case <-s.cancel:
		s.stopCapture()
		s.tsess.Abort()
		return
	case <-s.ctx.Done():
		s.stopCapture()
		s.tsess.Abort()
		return
	}

	reason := s.stopCapture()
	if reason == EndNoSpeech {
		s.tsess.Abort()
		s.events <- Event{Kind: EventError, Err: ErrNoSpeech}
		return
	}

	start := time.Now()
	result, err := s.tsess.Close()
	select {
	case <-s.cancel:
		return
	default:
	}
	if err != nil {
		s.events <- Event{Kind: EventError, Err: fmt.Errorf("%s: %w", s.provider, err)}
		return
	}

	m := log.SpeechMetrics{
		Provider:   s.provider,
		TotalMs:    float64(time.Since(start).Milliseconds()),
		Endpointed: reason == EndTrailingSilence,
	}
	if result.Batch != nil {
		m.AudioS = result.Batch.AudioLengthS
		m.EncodedKB = result.Batch.CompressedSizeKB
		m.Peak = result.Batch.PeakLevel
	}
	log.SpeechResult(m)

	if !result.HasText {
		s.events <- Event{Kind: EventError, Err: ErrNoSpeech}
		return
	}
	s.events <- Event{Kind: EventResult, Text: result.Text}
}
