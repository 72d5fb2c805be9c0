package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	cards := []Flashcard{
		{ID: 1, Question: "What is ATP?", Answer: "The cell's energy currency"},
		{ID: 2, Question: "What is DNA?", Answer: "Genetic material", Subject: "ignored"},
	}

	deck, err := NewDeck("  Biology ", cards, created)
	require.NoError(t, err)

	assert.Equal(t, "Biology", deck.Subject)
	assert.Equal(t, 2, deck.Len())
	assert.Equal(t, time.UTC, deck.CreatedAt.Location())
	for _, c := range deck.Cards {
		assert.Equal(t, "Biology", c.Subject)
	}
	// The input slice is not mutated.
	assert.Equal(t, "ignored", cards[1].Subject)
}

func TestDeckValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deck    Deck
		wantErr error
	}{
		{
			name:    "empty subject",
			deck:    Deck{Subject: "   "},
			wantErr: ErrEmptySubject,
		},
		{
			name:    "blank question",
			deck:    Deck{Subject: "Math", Cards: []Flashcard{{ID: 1, Question: " ", Answer: "4"}}},
			wantErr: ErrEmptyQuestion,
		},
		{
			name:    "blank answer",
			deck:    Deck{Subject: "Math", Cards: []Flashcard{{ID: 1, Question: "2+2?", Answer: ""}}},
			wantErr: ErrEmptyAnswer,
		},
		{
			name: "duplicate id",
			deck: Deck{Subject: "Math", Cards: []Flashcard{
				{ID: 1, Question: "2+2?", Answer: "4"},
				{ID: 1, Question: "3+3?", Answer: "6"},
			}},
			wantErr: ErrDuplicateCardID,
		},
		{
			name: "empty deck is valid",
			deck: Deck{Subject: "Math"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.deck.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeckCardByID(t *testing.T) {
	t.Parallel()

	deck := Deck{Subject: "Math", Cards: []Flashcard{{ID: 7, Question: "q", Answer: "a"}}}

	c, ok := deck.CardByID(7)
	assert.True(t, ok)
	assert.Equal(t, "q", c.Question)

	_, ok = deck.CardByID(8)
	assert.False(t, ok)
}

func TestNewReviewAttempt(t *testing.T) {
	t.Parallel()

	at := NewReviewAttempt(" Chemistry ", 2, 1, time.Now())
	assert.NotEqual(t, uuid.Nil, at.ID)
	assert.Equal(t, "Chemistry", at.Subject)
	assert.Equal(t, 3, at.Total)
	assert.Equal(t, 66.67, at.Accuracy)
	assert.NoError(t, at.Validate())

	at.Total = 10
	assert.True(t, errors.Is(at.Validate(), ErrValidation))
}

func TestAccuracy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Accuracy(0, 0))
	assert.Equal(t, 100.0, Accuracy(4, 4))
	assert.Equal(t, 33.33, Accuracy(1, 3))
}

func TestNewMistake(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	card := Flashcard{ID: 3, Question: "What is ATP?", Answer: "Energy currency"}
	m := NewMistake(" Biology ", card, at)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, "Biology", m.Subject)
	assert.Equal(t, 3, m.CardID)
	assert.Equal(t, "Energy currency", m.Answer)
	assert.Equal(t, time.UTC, m.RecordedAt.Location())
	require.NoError(t, m.Validate())

	blank := m
	blank.Answer = "  "
	assert.ErrorIs(t, blank.Validate(), ErrEmptyAnswer)

	blank = m
	blank.Subject = ""
	assert.ErrorIs(t, blank.Validate(), ErrEmptySubject)
}
