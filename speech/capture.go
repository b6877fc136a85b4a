package speech

import (
	"context"
	"sync"

	"talkboard/locale"
	"talkboard/log"
)

type State int

const (
	Idle State = iota
	Listening
	Failed
)

func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Outcome is what a finished attempt reports: a transcript or an error.
type Outcome struct {
	Lang locale.Lang
	Text string
	Err  error
}

// Capture runs at most one recognition attempt at a time. Activating while
// an attempt is in flight cancels it instead of starting another, and a
// cancelled attempt never produces an Outcome.
type Capture struct {
	rec       Recognizer
	supported bool
	outcomes  chan Outcome

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	session Session
	lastErr error
}

func NewCapture(rec Recognizer) *Capture {
	return &Capture{
		rec:       rec,
		supported: rec != nil && rec.Supported(),
		outcomes:  make(chan Outcome, 1),
	}
}

// Supported is fixed at construction.
func (c *Capture) Supported() bool { return c.supported }

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that put the capture into the Failed state.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Failed {
		return nil
	}
	return c.lastErr
}

// Outcomes delivers one value per attempt that finished on its own.
func (c *Capture) Outcomes() <-chan Outcome { return c.outcomes }

// Activate toggles recognition. From Idle or Failed it starts an attempt
// for lang; while Listening it cancels the attempt in flight. It returns
// ErrUnsupported, and does nothing else, when there is no capability.
func (c *Capture) Activate(ctx context.Context, lang locale.Lang) error {
	if !c.supported {
		return ErrUnsupported
	}

	c.mu.Lock()
	if c.state == Listening {
		c.stopLocked()
		c.mu.Unlock()
		log.Info("speech_cancel")
		return nil
	}

	c.gen++
	gen := c.gen
	attemptCtx, cancel := context.WithCancel(ctx)
	c.state = Listening
	c.cancel = cancel
	c.session = nil
	c.mu.Unlock()

	// Opening a device can be slow; State stays readable meanwhile.
	cfg := Config{Locale: lang.Locale()}
	log.SpeechStart(cfg.Locale)
	sess, err := c.rec.Start(attemptCtx, cfg)

	c.mu.Lock()
	if c.gen != gen {
		// cancelled while starting
		c.mu.Unlock()
		cancel()
		if sess != nil {
			sess.Cancel()
		}
		return nil
	}
	if err != nil {
		cancel()
		c.cancel = nil
		c.state = Failed
		c.lastErr = err
		c.mu.Unlock()
		log.Errorf("speech_error: %v", err)
		go c.deliver(ctx, Outcome{Lang: lang, Err: err})
		return nil
	}
	c.session = sess
	c.mu.Unlock()

	go c.watch(ctx, attemptCtx, gen, lang, sess)
	return nil
}

// Cancel stops the attempt in flight, if any, without an Outcome.
func (c *Capture) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Listening {
		c.stopLocked()
	}
}

func (c *Capture) stopLocked() {
	c.gen++
	if c.session != nil {
		c.session.Cancel()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.session = nil
	c.cancel = nil
	c.state = Idle
}

func (c *Capture) watch(parent, attemptCtx context.Context, gen uint64, lang locale.Lang, sess Session) {
	var ev Event
	var ok bool
	select {
	case ev, ok = <-sess.Events():
	case <-attemptCtx.Done():
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.session = nil
	c.cancel = nil

	var out Outcome
	switch {
	case !ok:
		if parent.Err() != nil {
			c.state = Idle
			c.mu.Unlock()
			return
		}
		// Closed without a verdict: treat as no speech.
		out = Outcome{Lang: lang, Err: ErrNoSpeech}
	case ev.Kind == EventError:
		out = Outcome{Lang: lang, Err: ev.Err}
	default:
		out = Outcome{Lang: lang, Text: ev.Text}
	}
	if out.Err != nil {
		c.state = Failed
		c.lastErr = out.Err
	} else {
		c.state = Idle
	}
	c.mu.Unlock()

	if out.Err != nil {
		log.Errorf("speech_error: %v", out.Err)
	} else {
		log.Transcript(string(lang), out.Text)
	}
	c.deliver(parent, out)
}

func (c *Capture) deliver(ctx context.Context, out Outcome) {
	select {
	case c.outcomes <- out:
	case <-ctx.Done():
	}
}
