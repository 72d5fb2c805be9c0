package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mistake is a card that was marked incorrect during a review pass. The
// question and correct answer are copied so the log survives deck
// regeneration.
type Mistake struct {
	ID         uuid.UUID `json:"id"`
	Subject    string    `json:"subject"`
	CardID     int       `json:"card_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"correct_answer"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewMistake captures card as missed at recordedAt.
func NewMistake(subject string, card Flashcard, recordedAt time.Time) Mistake {
	return Mistake{
		ID:         uuid.New(),
		Subject:    NormalizeSubject(subject),
		CardID:     card.ID,
		Question:   card.Question,
		Answer:     card.Answer,
		RecordedAt: recordedAt.UTC(),
	}
}

// Validate checks the mistake's identity and text.
func (m Mistake) Validate() error {
	if m.ID == uuid.Nil {
		return ErrValidation
	}
	if NormalizeSubject(m.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(m.Question) == "" {
		return ErrEmptyQuestion
	}
	if strings.TrimSpace(m.Answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}
