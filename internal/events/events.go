package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the deck service.
const (
	TypeChunkGenerated = "deck.chunk_generated"
	TypeDeckGenerated  = "deck.generated"
	TypeDeckSaved      = "deck.saved"
	TypeDeckDeleted    = "deck.deleted"
	TypeReviewRecorded = "review.recorded"

	TypeMistakesRecorded = "review.mistakes_recorded"
)

// Event is a notification about one subject.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ChunkGenerated is the payload of TypeChunkGenerated.
type ChunkGenerated struct {
	ChunkIndex int `json:"chunk_index"`
	Chunks     int `json:"chunks"`
	Candidates int `json:"candidates"`
}

// DeckGenerated is the payload of TypeDeckGenerated.
type DeckGenerated struct {
	Requested  int `json:"requested"`
	Produced   int `json:"produced"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// DeckSaved is the payload of TypeDeckSaved.
type DeckSaved struct {
	Cards int `json:"cards"`
}

// ReviewRecorded is the payload of TypeReviewRecorded.
type ReviewRecorded struct {
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

// MistakesRecorded is the payload of TypeMistakesRecorded.
type MistakesRecorded struct {
	Count int `json:"count"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type, subject and payload.
// A nil payload is omitted.
func NewEvent(eventType, subject string, payload any) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Subject:   subject,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
