package board

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"talkboard/locale"
)

// Observer receives every state a Board publishes.
type Observer func(State)

type Board struct {
	// publishMu orders mutations end to end, so observers see states in
	// the order they were applied.
	publishMu sync.Mutex
	mu        sync.Mutex
	state     State
	observers map[int]Observer
	nextObs   int
	mutations int
	newID     func() string
}

// New wraps an initial state. The state is normalized so every supported
// language has a (possibly empty) shortcut list.
func New(initial State) *Board {
	return &Board{
		state:     initial.normalize(State{BgColor: Black, TextColor: White, Language: locale.English}),
		observers: make(map[int]Observer),
		newID:     uuid.NewString,
	}
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Shortcuts returns the active language's list.
func (b *Board) Shortcuts() []Shortcut {
	return b.State().ActiveShortcuts()
}

// Mutations counts published states since New.
func (b *Board) Mutations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mutations
}

// Subscribe registers fn for every subsequent state and returns a func that
// removes it again.
func (b *Board) Subscribe(fn Observer) func() {
	b.mu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.observers, id)
		b.mu.Unlock()
	}
}

// apply runs fn against the current state under the lock and publishes the
// result when fn reports a change. Observers run outside the state lock,
// in registration order, and must not mutate the board themselves.
func (b *Board) apply(fn func(State) (State, bool)) State {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	next, changed := fn(b.state)
	if !changed {
		s := b.state
		b.mu.Unlock()
		return s
	}
	b.state = next
	b.mutations++
	ids := make([]int, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	obs := make([]Observer, len(ids))
	for i, id := range ids {
		obs[i] = b.observers[id]
	}
	b.mu.Unlock()

	for _, o := range obs {
		o(next)
	}
	return next
}

func (b *Board) SetText(text string) State {
	return b.apply(func(s State) (State, bool) {
		s.CurrentText = text
		return s, true
	})
}

func (b *Board) ToggleRotation() State {
	return b.apply(func(s State) (State, bool) {
		s.IsRotated = !s.IsRotated
		return s, true
	})
}

func (b *Board) SetLanguage(l locale.Lang) (State, error) {
	if !l.Valid() {
		return b.State(), fmt.Errorf("%w: %q", ErrUnknownLanguage, string(l))
	}
	return b.apply(func(s State) (State, bool) {
		s.Language = l
		return s, true
	}), nil
}

func (b *Board) SetColors(bg, fg Color) (State, error) {
	bgc, err := ParseColor(string(bg))
	if err != nil {
		return b.State(), fmt.Errorf("background: %w", err)
	}
	fgc, err := ParseColor(string(fg))
	if err != nil {
		return b.State(), fmt.Errorf("text: %w", err)
	}
	return b.apply(func(s State) (State, bool) {
		s.BgColor, s.TextColor = bgc, fgc
		return s, true
	}), nil
}

// AddShortcut prepends text to the active language's list. Blank text is ignored.
func (b *Board) AddShortcut(text string) State {
	if strings.TrimSpace(text) == "" {
		return b.State()
	}
	id := b.newID()
	return b.apply(func(s State) (State, bool) {
		n := s.with()
		cur := s.Shortcuts[s.Language]
		list := make([]Shortcut, 0, len(cur)+1)
		list = append(list, Shortcut{ID: id, Text: text})
		list = append(list, cur...)
		n.Shortcuts[s.Language] = list
		return n, true
	})
}

// RemoveShortcut drops id from the active language's list. Unknown ids are ignored.
func (b *Board) RemoveShortcut(id string) State {
	return b.apply(func(s State) (State, bool) {
		cur := s.Shortcuts[s.Language]
		idx := slices.IndexFunc(cur, func(sc Shortcut) bool { return sc.ID == id })
		if idx < 0 {
			return s, false
		}
		n := s.with()
		list := make([]Shortcut, 0, len(cur)-1)
		list = append(list, cur[:idx]...)
		list = append(list, cur[idx+1:]...)
		n.Shortcuts[s.Language] = list
		return n, true
	})
}

// Reset replaces the whole state, e.g. with Defaults.
func (b *Board) Reset(s State) State {
	next := s.normalize(b.State())
	return b.apply(func(State) (State, bool) {
		return next, true
	})
}
