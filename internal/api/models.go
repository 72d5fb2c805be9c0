package api

import (
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/service"
)

// GenerateDeckRequest defines the payload for POST /api/decks.
type GenerateDeckRequest struct {
	Subject        string `json:"subject"         validate:"required,max=200"`
	SourceText     string `json:"source_text"     validate:"required"`
	RequestedCount int    `json:"requested_count" validate:"gte=0,lte=500"`
	Save           bool   `json:"save"`
}

// CardRequest is one card of a SaveDeckRequest.
type CardRequest struct {
	Question   string `json:"question"              validate:"required"`
	Answer     string `json:"answer"                validate:"required"`
	SourceHint string `json:"source_hint,omitempty"`
}

// SaveDeckRequest defines the payload for PUT /api/decks/{subject}.
type SaveDeckRequest struct {
	Cards []CardRequest `json:"cards" validate:"dive"`
}

// RecordAttemptRequest defines the payload for POST /api/decks/{subject}/attempts.
type RecordAttemptRequest struct {
	Correct   int `json:"correct"   validate:"gte=0"`
	Incorrect int `json:"incorrect" validate:"gte=0"`

	// MissedCardIDs names the cards marked incorrect; each is copied into
	// the mistakes log.
	MissedCardIDs []int `json:"missed_card_ids,omitempty" validate:"omitempty,dive,gt=0"`
}

// CardResponse is the JSON form of a flashcard.
type CardResponse struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	SourceHint string `json:"source_hint,omitempty"`
}

// DeckResponse is the JSON form of a deck.
type DeckResponse struct {
	Subject   string         `json:"subject"`
	CreatedAt time.Time      `json:"created_at"`
	Cards     []CardResponse `json:"cards"`
}

// GenerateDeckResponse reports a generated deck and what curation dropped.
type GenerateDeckResponse struct {
	Deck       DeckResponse `json:"deck"`
	Requested  int          `json:"requested"`
	Produced   int          `json:"produced"`
	Duplicates int          `json:"duplicates"`
	Invalid    int          `json:"invalid"`
	Chunks     int          `json:"chunks"`
	Saved      bool         `json:"saved"`
}

// SubjectsResponse lists stored subjects.
type SubjectsResponse struct {
	Subjects []string `json:"subjects"`
}

func deckToResponse(d *domain.Deck) DeckResponse {
	cards := make([]CardResponse, len(d.Cards))
	for i, c := range d.Cards {
		cards[i] = CardResponse{
			ID:         c.ID,
			Question:   c.Question,
			Answer:     c.Answer,
			SourceHint: c.SourceHint,
		}
	}
	return DeckResponse{Subject: d.Subject, CreatedAt: d.CreatedAt, Cards: cards}
}

func generateResultToResponse(res *service.GenerateResult) GenerateDeckResponse {
	return GenerateDeckResponse{
		Deck:       deckToResponse(&res.Deck),
		Requested:  res.Requested,
		Produced:   res.Produced,
		Duplicates: res.Duplicates,
		Invalid:    res.Invalid,
		Chunks:     res.Chunks,
		Saved:      res.Saved,
	}
}

func (r SaveDeckRequest) toCards() []domain.Flashcard {
	cards := make([]domain.Flashcard, len(r.Cards))
	for i, c := range r.Cards {
		cards[i] = domain.Flashcard{
			ID:         i + 1,
			Question:   c.Question,
			Answer:     c.Answer,
			SourceHint: c.SourceHint,
		}
	}
	return cards
}
