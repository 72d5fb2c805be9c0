package domain

import (
	"fmt"
	"strings"
)

// Flashcard is a single question/answer pair belonging to a deck.
// Cards are immutable once curated; review outcomes are tracked separately
// by the review session.
type Flashcard struct {
	// ID is unique within the owning deck. Curated decks number cards from 1.
	ID       int    `json:"id"`
	Subject  string `json:"subject"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	// SourceHint is an optional excerpt of the chunk the card came from.
	SourceHint string `json:"source_hint,omitempty"`
}

// Validate checks that both sides of the card carry text.
func (c Flashcard) Validate() error {
	if strings.TrimSpace(c.Question) == "" {
		return fmt.Errorf("%w: card %d", ErrEmptyQuestion, c.ID)
	}
	if strings.TrimSpace(c.Answer) == "" {
		return fmt.Errorf("%w: card %d", ErrEmptyAnswer, c.ID)
	}
	return nil
}

// Candidate is a raw, unvalidated question/answer pair extracted from a
// model response. Candidates become Flashcards only through curation.
type Candidate struct {
	Question   string
	Answer     string
	SourceHint string
}
