package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		event, err := NewEvent(TypeDeckDeleted, "Biology", nil)
		require.NoError(t, err)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("all handlers receive the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event, err := NewEvent(TypeDeckSaved, "Biology", DeckSaved{Cards: 4})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		require.Len(t, h1.events, 1)
		require.Len(t, h2.events, 1)
		assert.Same(t, event, h1.events[0])
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		event, err := NewEvent(TypeDeckSaved, "x", nil)
		require.NoError(t, err)
		assert.EqualError(t, emitter.EmitEvent(context.Background(), event), "handler error")
		assert.Len(t, ok.events, 1)
	})

	t.Run("handler func", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var got string
		emitter.RegisterHandler(HandlerFunc(func(_ context.Context, e *Event) error {
			got = e.Subject
			return nil
		}))

		event, err := NewEvent(TypeReviewRecorded, "Chemistry", nil)
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, "Chemistry", got)
	})
}

func TestEventPayload(t *testing.T) {
	event, err := NewEvent(TypeChunkGenerated, "Biology", ChunkGenerated{ChunkIndex: 2, Chunks: 5, Candidates: 7})
	require.NoError(t, err)
	assert.Equal(t, TypeChunkGenerated, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var p ChunkGenerated
	require.NoError(t, event.UnmarshalPayload(&p))
	assert.Equal(t, ChunkGenerated{ChunkIndex: 2, Chunks: 5, Candidates: 7}, p)

	empty, err := NewEvent(TypeDeckDeleted, "Biology", nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Payload)

	_, err = NewEvent(TypeDeckSaved, "x", make(chan int))
	assert.Error(t, err)
}

func TestNopEmitter(t *testing.T) {
	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), &Event{}))
}
