package review

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// State is the phase of a review session.
type State int

const (
	// Idle: no deck has been started.
	Idle State = iota
	// Showing: the current card's question is visible.
	Showing
	// Revealed: the current card's answer is visible.
	Revealed
	// Complete: every card has been marked.
	Complete
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Showing:
		return "showing"
	case Revealed:
		return "revealed"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid review transition")

	// ErrNoDeck is returned by Restart before any deck was started.
	ErrNoDeck = errors.New("no deck to review")

	// ErrNotComplete is returned by Summary before the last card is marked.
	ErrNotComplete = errors.New("review is not complete")
)

// TransitionError names the rejected action and the state it was tried in.
type TransitionError struct {
	Action string
	State  State
}

// Error implements the error interface for TransitionError.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Action, e.State)
}

// Is lets errors.Is match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Outcome counts the marks given to one card.
type Outcome struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Progress is a snapshot of the session counters. Position is the 1-based
// index of the current card, or Total once complete.
type Progress struct {
	Position  int `json:"position"`
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Remaining int `json:"remaining"`
}

// Shuffler returns a permutation of [0, n).
type Shuffler func(n int) []int

// Option configures a Session.
type Option func(*Session)

// WithShuffler replaces the random permutation source.
func WithShuffler(fn Shuffler) Option {
	return func(s *Session) {
		s.shuffle = fn
	}
}

// WithSeed makes shuffling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Session) {
		r := rand.New(rand.NewPCG(seed, seed))
		s.shuffle = r.Perm
	}
}

// WithClock sets the time stamped on Summary.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session walks one deck.
type Session struct {
	deck    *domain.Deck
	order   []int
	cursor  int
	flipped bool
	state   State
	tally   map[int]Outcome
	correct int
	wrong   int

	shuffle Shuffler
	now     func() time.Time
}

// NewSession creates an Idle session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		state:   Idle,
		tally:   map[int]Outcome{},
		shuffle: rand.Perm,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a pass over deck in document order, or shuffled. An empty
// deck completes immediately.
func (s *Session) Start(deck *domain.Deck, shuffle bool) error {
	if deck == nil {
		return ErrNoDeck
	}
	n := len(deck.Cards)
	var order []int
	if shuffle && n > 1 {
		order = s.shuffle(n)
		if !isPermutation(order, n) {
			return fmt.Errorf("shuffler returned an invalid permutation of %d", n)
		}
	} else {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}

	s.deck = deck
	s.order = order
	s.cursor = 0
	s.flipped = false
	s.tally = map[int]Outcome{}
	s.correct, s.wrong = 0, 0
	if n == 0 {
		s.state = Complete
	} else {
		s.state = Showing
	}
	return nil
}

// Restart begins a fresh pass over the current deck.
func (s *Session) Restart(shuffle bool) error {
	if s.deck == nil {
		return ErrNoDeck
	}
	return s.Start(s.deck, shuffle)
}

// Reveal shows the answer of the current card.
func (s *Session) Reveal() error {
	if s.state != Showing {
		return &TransitionError{Action: "reveal", State: s.state}
	}
	s.flipped = true
	s.state = Revealed
	return nil
}

// Mark records whether the revealed card was answered correctly and moves
// to the next card.
func (s *Session) Mark(correct bool) error {
	if s.state != Revealed {
		return &TransitionError{Action: "mark", State: s.state}
	}

	card := s.deck.Cards[s.order[s.cursor]]
	o := s.tally[card.ID]
	if correct {
		o.Correct++
		s.correct++
	} else {
		o.Incorrect++
		s.wrong++
	}
	s.tally[card.ID] = o

	s.cursor++
	s.flipped = false
	if s.cursor >= len(s.order) {
		s.state = Complete
	} else {
		s.state = Showing
	}
	return nil
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Flipped reports whether the current card's answer is visible.
func (s *Session) Flipped() bool {
	return s.flipped
}

// Deck returns the deck under review, or nil.
func (s *Session) Deck() *domain.Deck {
	return s.deck
}

// Current returns the card at the cursor. It reports false when Idle or
// Complete.
func (s *Session) Current() (domain.Flashcard, bool) {
	if s.state != Showing && s.state != Revealed {
		return domain.Flashcard{}, false
	}
	return s.deck.Cards[s.order[s.cursor]], true
}

// Progress returns the current counters.
func (s *Session) Progress() Progress {
	total := len(s.order)
	position := s.cursor + 1
	if s.state == Complete || s.state == Idle {
		position = s.cursor
	}
	return Progress{
		Position:  position,
		Total:     total,
		Correct:   s.correct,
		Incorrect: s.wrong,
		Remaining: total - s.cursor,
	}
}

// Tally returns a copy of the per-card outcomes keyed by card ID.
func (s *Session) Tally() map[int]Outcome {
	out := make(map[int]Outcome, len(s.tally))
	for id, o := range s.tally {
		out[id] = o
	}
	return out
}

// Summary returns the attempt to record once the pass is complete.
func (s *Session) Summary() (*domain.ReviewAttempt, error) {
	if s.state != Complete || s.deck == nil {
		return nil, ErrNotComplete
	}
	return domain.NewReviewAttempt(s.deck.Subject, s.correct, s.wrong, s.now()), nil
}

// Mistakes returns the cards marked incorrect during the completed pass, in
// the order they were shown.
func (s *Session) Mistakes() ([]domain.Mistake, error) {
	if s.state != Complete || s.deck == nil {
		return nil, ErrNotComplete
	}
	at := s.now()
	var out []domain.Mistake
	for _, i := range s.order {
		card := s.deck.Cards[i]
		if s.tally[card.ID].Incorrect > 0 {
			out = append(out, domain.NewMistake(s.deck.Subject, card, at))
		}
	}
	return out, nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
