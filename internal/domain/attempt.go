package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ReviewAttempt records the outcome of one completed pass through a deck.
// It is a history entry, not a scheduling input.
type ReviewAttempt struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	Total       int       `json:"total"`
	Accuracy    float64   `json:"accuracy"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewReviewAttempt computes accuracy as a percentage rounded to two decimals.
func NewReviewAttempt(subject string, correct, incorrect int, completedAt time.Time) *ReviewAttempt {
	total := correct + incorrect
	return &ReviewAttempt{
		ID:          uuid.New(),
		Subject:     NormalizeSubject(subject),
		Correct:     correct,
		Incorrect:   incorrect,
		Total:       total,
		Accuracy:    Accuracy(correct, total),
		CompletedAt: completedAt.UTC(),
	}
}

// Accuracy returns correct/total as a percentage with two decimals, or 0
// when nothing was answered.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}

// Validate checks the attempt's identity and counters.
func (a *ReviewAttempt) Validate() error {
	if a.ID == uuid.Nil {
		return ErrValidation
	}
	if NormalizeSubject(a.Subject) == "" {
		return ErrEmptySubject
	}
	if a.Correct < 0 || a.Incorrect < 0 || a.Total != a.Correct+a.Incorrect {
		return ErrValidation
	}
	return nil
}
