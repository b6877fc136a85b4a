package speech

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	tickInterval = 100 * time.Millisecond
	// speechClearRatio is the share of loud ticks in the trailing window
	// that counts as "still talking".
	speechClearRatio = 0.25

	DefaultMaxUtterance    = 15 * time.Second
	DefaultTrailingSilence = 1200 * time.Millisecond
	DefaultNoSpeech        = 8 * time.Second
	DefaultSilenceLevel    = 0.02
)

type EndReason int

const (
	EndNone EndReason = iota
	EndTrailingSilence
	EndMaxDuration
	EndNoSpeech
)

func (r EndReason) String() string {
	switch r {
	case EndTrailingSilence:
		return "trailing_silence"
	case EndMaxDuration:
		return "max_duration"
	case EndNoSpeech:
		return "no_speech"
	default:
		return "none"
	}
}

type EndpointConfig struct {
	SampleRate      int
	MaxUtterance    time.Duration
	TrailingSilence time.Duration
	NoSpeech        time.Duration
	SilenceLevel    float64
}

func (c EndpointConfig) withDefaults() EndpointConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.MaxUtterance <= 0 {
		c.MaxUtterance = DefaultMaxUtterance
	}
	if c.TrailingSilence <= 0 {
		c.TrailingSilence = DefaultTrailingSilence
	}
	if c.NoSpeech <= 0 {
		c.NoSpeech = DefaultNoSpeech
	}
	if c.SilenceLevel <= 0 {
		c.SilenceLevel = DefaultSilenceLevel
	}
	return c
}

// endpointer decides when a single utterance is over. Time is measured in
// samples fed, so it behaves the same for live and replayed audio.
type endpointer struct {
	tickSamples int
	level       float64
	maxTicks    int
	silentTicks int
	noSpeechAt  int

	pending    int
	sumSquares float64

	ticks     int
	window    []bool
	heard     bool
	firstLoud int
	quietRun  int
	done      EndReason
}

func newEndpointer(cfg EndpointConfig) *endpointer {
	cfg = cfg.withDefaults()
	ticksFor := func(d time.Duration) int {
		return max(1, int(d/tickInterval))
	}
	silent := ticksFor(cfg.TrailingSilence)
	return &endpointer{
		tickSamples: cfg.SampleRate * int(tickInterval/time.Millisecond) / 1000,
		level:       cfg.SilenceLevel,
		maxTicks:    ticksFor(cfg.MaxUtterance),
		silentTicks: silent,
		noSpeechAt:  ticksFor(cfg.NoSpeech),
		window:      make([]bool, silent),
	}
}

// Feed consumes little-endian 16-bit PCM and reports why the utterance
// ended, or EndNone while it continues. Once ended, the reason sticks.
func (e *endpointer) Feed(pcm []byte) EndReason {
	for i := 0; i+1 < len(pcm) && e.done == EndNone; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		normalized := float64(sample) / 32768.0
		e.sumSquares += normalized * normalized
		e.pending++
		if e.pending == e.tickSamples {
			rms := math.Sqrt(e.sumSquares / float64(e.pending))
			e.pending, e.sumSquares = 0, 0
			e.done = e.tick(rms >= e.level)
		}
	}
	return e.done
}

func (e *endpointer) tick(loud bool) EndReason {
	e.window[e.ticks%len(e.window)] = loud
	e.ticks++

	if loud {
		if !e.heard {
			e.heard = true
			e.firstLoud = e.ticks
		}
		e.quietRun = 0
	} else {
		e.quietRun++
	}

	if e.ticks >= e.maxTicks {
		if !e.heard {
			return EndNoSpeech
		}
		return EndMaxDuration
	}
	if !e.heard {
		if e.ticks >= e.noSpeechAt {
			return EndNoSpeech
		}
		return EndNone
	}
	if e.quietRun >= e.silentTicks {
		return EndTrailingSilence
	}
	// A mostly quiet window ends the utterance early even if isolated
	// clicks interrupted the pause.
	if e.ticks-e.firstLoud >= e.silentTicks && e.quietRun*3 >= e.silentTicks && e.ratio() < speechClearRatio {
		return EndTrailingSilence
	}
	return EndNone
}

// ratio is the share of loud ticks in the trailing window, counting only
// ticks that have been filled.
func (e *endpointer) ratio() float64 {
	n := min(e.ticks, len(e.window))
	if n == 0 {
		return 0
	}
	loud := 0
	for _, l := range e.window[:n] {
		if l {
			loud++
		}
	}
	return float64(loud) / float64(n)
}

// Elapsed is the audio duration fed so far, rounded down to whole ticks.
func (e *endpointer) Elapsed() time.Duration {
	return time.Duration(e.ticks) * tickInterval
}
