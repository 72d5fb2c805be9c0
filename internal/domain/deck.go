package domain

import (
	"fmt"
	"strings"
	"time"
)

// Deck is the full set of flashcards for one subject. The subject is the
// storage key, so a subject holds at most one deck at a time.
type Deck struct {
	Subject   string      `json:"subject"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
}

// NormalizeSubject trims surrounding whitespace from a subject key.
func NormalizeSubject(subject string) string {
	return strings.TrimSpace(subject)
}

// NewDeck builds a deck for subject, stamping each card with the subject.
// Returns an error if validation fails.
func NewDeck(subject string, cards []Flashcard, createdAt time.Time) (*Deck, error) {
	subject = NormalizeSubject(subject)
	owned := make([]Flashcard, len(cards))
	for i, c := range cards {
		c.Subject = subject
		owned[i] = c
	}

	deck := &Deck{
		Subject:   subject,
		Cards:     owned,
		CreatedAt: createdAt.UTC(),
	}
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks the deck subject, every card, and ID uniqueness.
func (d *Deck) Validate() error {
	if NormalizeSubject(d.Subject) == "" {
		return ErrEmptySubject
	}

	seen := make(map[int]struct{}, len(d.Cards))
	for _, c := range d.Cards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %w: %d", ErrValidation, ErrDuplicateCardID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.Cards)
}

// CardByID looks up a card by its deck-local ID.
func (d *Deck) CardByID(id int) (Flashcard, bool) {
	for _, c := range d.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Flashcard{}, false
}
