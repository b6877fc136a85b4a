package speech

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"talkboard/audio"
	"talkboard/transcriber"
)

func nextEvent(t *testing.T, s Session) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		return ev, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a session event")
		return Event{}, false
	}
}

func TestMicTranscribesUtterance(t *testing.T) {
	actx := audio.NewFakeContext(ticksPCM(strings.Repeat("L", 8)), false)
	tr := transcriber.NewFake("where is the station", nil)
	m := NewMic(actx, nil, tr, EndpointConfig{})

	if !m.Supported() {
		t.Fatal("Supported() = false")
	}
	s, err := m.Start(context.Background(), Config{Locale: "ja-JP"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ev, ok := nextEvent(t, s)
	if !ok || ev.Kind != EventResult || ev.Text != "where is the station" {
		t.Fatalf("event = %+v (ok=%v)", ev, ok)
	}
	if _, ok := nextEvent(t, s); ok {
		t.Error("Events not closed after the result")
	}
	if got := tr.Locales(); len(got) != 1 || got[0] != "ja-JP" {
		t.Errorf("transcriber locales = %v", got)
	}
	if tr.FedBytes() < 8*testRate/10*2 {
		t.Errorf("fed %d bytes, want the whole utterance", tr.FedBytes())
	}
}

func TestMicSilenceIsNoSpeech(t *testing.T) {
	tr := transcriber.NewFake("should not be used", nil)
	m := NewMic(audio.NewFakeContext(nil, false), nil, tr, EndpointConfig{NoSpeech: time.Second})
	s, err := m.Start(context.Background(), Config{Locale: "en-US"})
	if err != nil {
		t.Fatal(err)
	}
	ev, _ := nextEvent(t, s)
	if ev.Kind != EventError || !errors.Is(ev.Err, ErrNoSpeech) {
		t.Errorf("event = %+v, want ErrNoSpeech", ev)
	}
}

func TestMicEmptyTranscriptIsNoSpeech(t *testing.T) {
	m := NewMic(audio.NewFakeContext(ticksPCM("LLLL"), false), nil, transcriber.NewFake("", nil), EndpointConfig{})
	s, err := m.Start(context.Background(), Config{Locale: "en-US"})
	if err != nil {
		t.Fatal(err)
	}
	ev, _ := nextEvent(t, s)
	if !errors.Is(ev.Err, ErrNoSpeech) {
		t.Errorf("event = %+v, want ErrNoSpeech", ev)
	}
}

func TestMicProviderError(t *testing.T) {
	boom := errors.New("503")
	m := NewMic(audio.NewFakeContext(ticksPCM("LLLL"), false), nil, transcriber.NewFake("", boom), EndpointConfig{})
	s, err := m.Start(context.Background(), Config{Locale: "en-US"})
	if err != nil {
		t.Fatal(err)
	}
	ev, _ := nextEvent(t, s)
	if ev.Kind != EventError || !errors.Is(ev.Err, boom) {
		t.Errorf("event = %+v, want provider error", ev)
	}
	if !strings.Contains(ev.Err.Error(), "fake") {
		t.Errorf("error %q does not name the provider", ev.Err)
	}
}

func TestMicCancel(t *testing.T) {
	actx := audio.NewFakeContext(ticksPCM(strings.Repeat("L", 50)), true)
	m := NewMic(actx, nil, transcriber.NewFake("never", nil), EndpointConfig{})
	s, err := m.Start(context.Background(), Config{Locale: "en-US"})
	if err != nil {
		t.Fatal(err)
	}
	s.Cancel()
	if ev, ok := nextEvent(t, s); ok {
		t.Errorf("cancelled session emitted %+v", ev)
	}
}

func TestMicUnsupported(t *testing.T) {
	for name, m := range map[string]*Mic{
		"no audio":       NewMic(nil, nil, transcriber.NewFake("", nil), EndpointConfig{}),
		"no transcriber": NewMic(audio.NewFakeContext(nil, false), nil, nil, EndpointConfig{}),
	} {
		t.Run(name, func(t *testing.T) {
			if m.Supported() {
				t.Fatal("Supported() = true")
			}
			if _, err := m.Start(context.Background(), Config{}); !errors.Is(err, ErrUnsupported) {
				t.Errorf("Start err = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestMicRejectsContinuous(t *testing.T) {
	m := NewMic(audio.NewFakeContext(nil, false), nil, transcriber.NewFake("", nil), EndpointConfig{})
	if _, err := m.Start(context.Background(), Config{Continuous: true}); err == nil {
		t.Error("expected an error for continuous recognition")
	}
}

func TestCaptureOverMic(t *testing.T) {
	actx := audio.NewFakeContext(ticksPCM(strings.Repeat("L", 6)), false)
	c := NewCapture(NewMic(actx, nil, transcriber.NewFake("thank you", nil), EndpointConfig{}))
	if !c.Supported() {
		t.Fatal("Supported() = false")
	}
	c.Activate(context.Background(), "en")
	o := waitOutcome(t, c)
	if o.Text != "thank you" {
		t.Errorf("outcome = %+v", o)
	}
}
