package store

import (
	"context"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// DeckStore defines the interface for deck persistence.
// A subject holds at most one deck; saving replaces whatever was there.
type DeckStore interface {
	// Save atomically replaces the deck stored under deck.Subject with deck.
	// Either the whole new deck is visible afterwards or the previous deck
	// is left untouched. Failures are returned as *StoreError.
	Save(ctx context.Context, deck *domain.Deck) error

	// Load returns the deck stored under subject with cards in their saved
	// order and IDs renumbered 1..n. Returns an error matching ErrNotFound
	// if there is none.
	Load(ctx context.Context, subject string) (*domain.Deck, error)

	// ListSubjects returns every stored subject in ascending order.
	ListSubjects(ctx context.Context) ([]string, error)

	// Delete removes the deck stored under subject. Deleting a subject that
	// has no deck is not an error.
	Delete(ctx context.Context, subject string) error
}

// ProgressStore records completed review passes and the cards missed in them.
type ProgressStore interface {
	// RecordAttempt appends attempt to the review history.
	RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error

	// ListAttempts returns the attempts for subject, oldest first. An empty
	// subject lists attempts for every subject.
	ListAttempts(ctx context.Context, subject string) ([]domain.ReviewAttempt, error)

	// RecordMistakes appends the cards missed in one pass. Nothing is
	// written if any mistake is invalid.
	RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error

	// ListMistakes returns the mistakes for subject, newest first. An empty
	// subject lists mistakes for every subject.
	ListMistakes(ctx context.Context, subject string) ([]domain.Mistake, error)
}
