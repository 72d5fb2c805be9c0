package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/extract"
	"github.com/stretchr/testify/mock"
)

// MockDeckStore is a mock implementation of store.DeckStore
type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) Save(ctx context.Context, deck *domain.Deck) error {
	args := m.Called(ctx, deck)
	return args.Error(0)
}

func (m *MockDeckStore) Load(ctx context.Context, subject string) (*domain.Deck, error) {
	args := m.Called(ctx, subject)
	deck, _ := args.Get(0).(*domain.Deck)
	return deck, args.Error(1)
}

func (m *MockDeckStore) ListSubjects(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	subjects, _ := args.Get(0).([]string)
	return subjects, args.Error(1)
}

func (m *MockDeckStore) Delete(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

// MockProgressStore is a mock implementation of store.ProgressStore
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockProgressStore) ListAttempts(ctx context.Context, subject string) ([]domain.ReviewAttempt, error) {
	args := m.Called(ctx, subject)
	attempts, _ := args.Get(0).([]domain.ReviewAttempt)
	return attempts, args.Error(1)
}

func (m *MockProgressStore) RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error {
	args := m.Called(ctx, mistakes)
	return args.Error(0)
}

func (m *MockProgressStore) ListMistakes(ctx context.Context, subject string) ([]domain.Mistake, error) {
	args := m.Called(ctx, subject)
	mistakes, _ := args.Get(0).([]domain.Mistake)
	return mistakes, args.Error(1)
}

// fakeGenerator answers per chunk, keyed by the chunk's first word.
type fakeGenerator struct {
	mu      sync.Mutex
	cards   map[string][]domain.Candidate
	errs    map[string]error
	delays  map[string]time.Duration
	targets []int
	chunks  []string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		cards:  map[string][]domain.Candidate{},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
	}
}

// withCards registers n candidates "<key> <i>?" → "<key> answer <i>".
func (g *fakeGenerator) withCards(key string, n int) *fakeGenerator {
	for i := 1; i <= n; i++ {
		g.cards[key] = append(g.cards[key], domain.Candidate{
			Question: fmt.Sprintf("%s %d?", key, i),
			Answer:   fmt.Sprintf("%s answer %d", key, i),
		})
	}
	return g
}

func (g *fakeGenerator) Generate(ctx context.Context, chunk string, targetCount int) ([]domain.Candidate, error) {
	key := strings.Fields(chunk)[0]

	g.mu.Lock()
	g.targets = append(g.targets, targetCount)
	g.chunks = append(g.chunks, chunk)
	delay, err := g.delays[key], g.errs[key]
	cards := g.cards[key]
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, len(cards))
	copy(out, cards)
	return out, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.chunks)
}

type failingExtractor struct{}

func (failingExtractor) Extract([]byte, extract.Format) (string, error) {
	return "", &extract.ExtractionError{Format: extract.FormatPDF, Reason: "corrupt", Err: errors.New("bad xref")}
}

type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) HandleEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *eventRecorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.types {
		if t == eventType {
			n++
		}
	}
	return n
}
