package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/curate"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/extract"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/segment"
	"github.com/phrazzld/flashdeck/internal/store"
	"golang.org/x/sync/errgroup"
)

// Options tune the generation pipeline and store access.
type Options struct {
	MaxChunkChars  int
	Workers        int
	DefaultCount   int
	StorageTimeout time.Duration
}

// OptionsFromConfig picks the service settings out of the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxChunkChars:  cfg.Generation.MaxChunkChars,
		Workers:        cfg.Generation.Workers,
		DefaultCount:   cfg.Generation.DefaultCount,
		StorageTimeout: cfg.Storage.Timeout,
	}
}

// Dependencies are the collaborators of a DeckService. Generator, Extractor,
// Emitter and Now are optional; without a Generator only the store
// operations work.
type Dependencies struct {
	Generator generation.CardGenerator
	Decks     store.DeckStore
	Progress  store.ProgressStore
	Extractor extract.Extractor
	Emitter   events.EventEmitter
	Now       func() time.Time
}

// GenerateRequest asks for a deck built from either Source bytes in Format
// or SourceText. Source takes precedence when both are set.
type GenerateRequest struct {
	Subject    string
	Source     []byte
	Format     extract.Format
	SourceText string

	// RequestedCount is the maximum number of cards. Zero selects the
	// configured default.
	RequestedCount int

	// Save stores the deck, replacing any deck under the same subject.
	Save bool
}

// GenerateResult describes a generated deck.
type GenerateResult struct {
	curate.Result

	// Chunks is the number of segments the source was split into.
	Chunks int

	// Saved reports whether the deck was persisted.
	Saved bool
}

// ProgressSummary aggregates the review history of a subject.
type ProgressSummary struct {
	Subject         string                 `json:"subject"`
	Attempts        []domain.ReviewAttempt `json:"attempts"`
	Count           int                    `json:"count"`
	AverageAccuracy float64                `json:"average_accuracy"`
	BestAccuracy    float64                `json:"best_accuracy"`
	Last            *domain.ReviewAttempt  `json:"last,omitempty"`
}

// DeckService orchestrates deck generation and fronts the stores.
type DeckService struct {
	generator generation.CardGenerator
	decks     store.DeckStore
	progress  store.ProgressStore
	extractor extract.Extractor
	emitter   events.EventEmitter
	locker    *store.SubjectLocker
	curator   curate.Curator
	opts      Options
	logger    *slog.Logger
}

// NewDeckService creates a DeckService. It returns an error when a required
// dependency is missing or an option is out of range.
func NewDeckService(deps Dependencies, opts Options, logger *slog.Logger) (*DeckService, error) {
	if deps.Decks == nil {
		return nil, errors.New("deck store cannot be nil")
	}
	if deps.Progress == nil {
		return nil, errors.New("progress store cannot be nil")
	}
	if opts.MaxChunkChars <= 0 {
		return nil, fmt.Errorf("max chunk chars must be positive, got %d", opts.MaxChunkChars)
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.DefaultCount <= 0 {
		return nil, fmt.Errorf("default count must be positive, got %d", opts.DefaultCount)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New()
	}
	if deps.Emitter == nil {
		deps.Emitter = events.NopEmitter{}
	}

	return &DeckService{
		generator: deps.Generator,
		decks:     deps.Decks,
		progress:  deps.Progress,
		extractor: deps.Extractor,
		emitter:   deps.Emitter,
		locker:    store.NewSubjectLocker(),
		curator:   curate.Curator{Now: deps.Now},
		opts:      opts,
		logger:    logger.With(slog.String("component", "deck_service")),
	}, nil
}

// GenerateDeck runs the whole pipeline for one request. Chunks are generated
// in parallel, bounded by the configured worker count, and curated in
// document order. The first chunk that fails after its retry cancels the
// rest and is reported as a *GenerationError.
func (s *DeckService) GenerateDeck(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.generator == nil {
		return nil, ErrNoGenerator
	}
	subject := domain.NormalizeSubject(req.Subject)
	if subject == "" {
		return nil, invalidRequest("subject is required", domain.ErrEmptySubject)
	}
	requested := req.RequestedCount
	if requested < 0 {
		return nil, invalidRequest(fmt.Sprintf("requested count must be positive, got %d", requested), nil)
	}
	if requested == 0 {
		requested = s.opts.DefaultCount
	}

	text := req.SourceText
	if len(req.Source) > 0 {
		extracted, err := s.extractor.Extract(req.Source, req.Format)
		if err != nil {
			log.WarnContext(ctx, "text extraction failed",
				slog.String("subject", subject),
				slog.String("format", string(req.Format)),
				slog.String("error", err.Error()))
			return nil, err
		}
		text = extracted
	}

	chunks, err := segment.Segment(text, s.opts.MaxChunkChars)
	if err != nil {
		return nil, err
	}

	target := perChunkTarget(requested, len(chunks))
	log.InfoContext(ctx, "generating deck",
		slog.String("subject", subject),
		slog.Int("requested", requested),
		slog.Int("chunks", len(chunks)),
		slog.Int("per_chunk", target))

	batches := make([][]domain.Candidate, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			candidates, err := s.generator.Generate(gctx, chunk.Text, target)
			if err != nil {
				return NewChunkError(subject, chunk.Index, err)
			}
			batches[i] = candidates
			s.emit(gctx, events.TypeChunkGenerated, subject, events.ChunkGenerated{
				ChunkIndex: chunk.Index,
				Chunks:     len(chunks),
				Candidates: len(candidates),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "deck generation failed",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, err
	}

	curated := s.curator.Curate(batches, subject, requested)
	if curated.Produced == 0 {
		return nil, &GenerationError{Subject: subject, ChunkIndex: -1, Err: ErrNoCards}
	}
	if curated.Short() {
		log.InfoContext(ctx, "generated fewer cards than requested",
			slog.String("subject", subject),
			slog.Int("requested", requested),
			slog.Int("produced", curated.Produced))
	}

	s.emit(ctx, events.TypeDeckGenerated, subject, events.DeckGenerated{
		Requested:  curated.Requested,
		Produced:   curated.Produced,
		Duplicates: curated.Duplicates,
		Invalid:    curated.Invalid,
	})

	result := &GenerateResult{Result: curated, Chunks: len(chunks)}
	if req.Save {
		if err := s.SaveDeck(ctx, &result.Deck); err != nil {
			return nil, err
		}
		result.Saved = true
	}
	return result, nil
}

// perChunkTarget spreads requested over chunks, rounding up, never below one.
func perChunkTarget(requested, chunks int) int {
	if chunks <= 0 {
		return requested
	}
	target := (requested + chunks - 1) / chunks
	if target < 1 {
		return 1
	}
	return target
}

// SaveDeck validates deck and replaces the stored deck for its subject.
// The store receives a copy with the subject normalized; deck itself is not
// modified.
func (s *DeckService) SaveDeck(ctx context.Context, deck *domain.Deck) error {
	if deck == nil {
		return invalidRequest("deck cannot be nil", nil)
	}
	normalized := *deck
	normalized.Subject = domain.NormalizeSubject(deck.Subject)
	normalized.Cards = append([]domain.Flashcard(nil), deck.Cards...)
	if err := normalized.Validate(); err != nil {
		return invalidRequest("deck is invalid", err)
	}

	unlock := s.locker.Lock(normalized.Subject)
	defer unlock()

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.decks.Save(ctx, &normalized); err != nil {
		return NewServiceError("save_deck", normalized.Subject, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "deck saved",
		slog.String("subject", normalized.Subject),
		slog.Int("cards", normalized.Len()))
	s.emit(ctx, events.TypeDeckSaved, normalized.Subject, events.DeckSaved{Cards: normalized.Len()})
	return nil
}

// LoadDeck returns the stored deck for subject.
func (s *DeckService) LoadDeck(ctx context.Context, subject string) (*domain.Deck, error) {
	subject = domain.NormalizeSubject(subject)
	if subject == "" {
		return nil, invalidRequest("subject is required", domain.ErrEmptySubject)
	}

	unlock := s.locker.RLock(subject)
	defer unlock()

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	deck, err := s.decks.Load(ctx, subject)
	if err != nil {
		return nil, NewServiceError("load_deck", subject, err)
	}
	return deck, nil
}

// ListSubjects returns every stored subject in ascending order.
func (s *DeckService) ListSubjects(ctx context.Context) ([]string, error) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	subjects, err := s.decks.ListSubjects(ctx)
	if err != nil {
		return nil, NewServiceError("list_subjects", "", err)
	}
	return subjects, nil
}

// DeleteDeck removes the deck for subject. A missing deck is not an error.
func (s *DeckService) DeleteDeck(ctx context.Context, subject string) error {
	subject = domain.NormalizeSubject(subject)
	if subject == "" {
		return invalidRequest("subject is required", domain.ErrEmptySubject)
	}

	unlock := s.locker.Lock(subject)
	defer unlock()

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.decks.Delete(ctx, subject); err != nil {
		return NewServiceError("delete_deck", subject, err)
	}
	s.emit(ctx, events.TypeDeckDeleted, subject, nil)
	return nil
}

// RecordAttempt appends a finished review pass to the history.
func (s *DeckService) RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error {
	if attempt == nil {
		return invalidRequest("attempt cannot be nil", nil)
	}
	if err := attempt.Validate(); err != nil {
		return invalidRequest("attempt is invalid", err)
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.progress.RecordAttempt(ctx, attempt); err != nil {
		return NewServiceError("record_attempt", attempt.Subject, err)
	}
	s.emit(ctx, events.TypeReviewRecorded, attempt.Subject, events.ReviewRecorded{
		Correct:   attempt.Correct,
		Incorrect: attempt.Incorrect,
		Accuracy:  attempt.Accuracy,
	})
	return nil
}

// RecordMistakes appends the cards missed in one pass to the mistakes log.
// Every mistake must belong to the same subject.
func (s *DeckService) RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}
	subject := domain.NormalizeSubject(mistakes[0].Subject)
	for _, m := range mistakes {
		if err := m.Validate(); err != nil {
			return invalidRequest("mistake is invalid", err)
		}
		if domain.NormalizeSubject(m.Subject) != subject {
			return invalidRequest("mistakes span more than one subject", nil)
		}
	}

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.progress.RecordMistakes(ctx, mistakes); err != nil {
		return NewServiceError("record_mistakes", subject, err)
	}
	s.emit(ctx, events.TypeMistakesRecorded, subject, events.MistakesRecorded{Count: len(mistakes)})
	return nil
}

// Mistakes lists missed cards for subject, newest first, or for every
// subject when subject is empty.
func (s *DeckService) Mistakes(ctx context.Context, subject string) ([]domain.Mistake, error) {
	subject = domain.NormalizeSubject(subject)

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	mistakes, err := s.progress.ListMistakes(ctx, subject)
	if err != nil {
		return nil, NewServiceError("list_mistakes", subject, err)
	}
	if mistakes == nil {
		mistakes = []domain.Mistake{}
	}
	return mistakes, nil
}

// Progress summarizes the review history for subject, or for every subject
// when subject is empty.
func (s *DeckService) Progress(ctx context.Context, subject string) (*ProgressSummary, error) {
	subject = domain.NormalizeSubject(subject)

	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	attempts, err := s.progress.ListAttempts(ctx, subject)
	if err != nil {
		return nil, NewServiceError("list_attempts", subject, err)
	}
	return Summarize(subject, attempts), nil
}

// Summarize computes aggregate accuracy over attempts, which must be
// ordered oldest first.
func Summarize(subject string, attempts []domain.ReviewAttempt) *ProgressSummary {
	if attempts == nil {
		attempts = []domain.ReviewAttempt{}
	}
	summary := &ProgressSummary{
		Subject:  subject,
		Attempts: attempts,
		Count:    len(attempts),
	}
	if len(attempts) == 0 {
		return summary
	}

	var sum float64
	for _, a := range attempts {
		sum += a.Accuracy
		if a.Accuracy > summary.BestAccuracy {
			summary.BestAccuracy = a.Accuracy
		}
	}
	summary.AverageAccuracy = roundPercent(sum / float64(len(attempts)))
	last := attempts[len(attempts)-1]
	summary.Last = &last
	return summary
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *DeckService) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StorageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StorageTimeout)
}

// emit publishes an event. Handler failures are logged and never fail the
// operation that produced the event.
func (s *DeckService) emit(ctx context.Context, eventType, subject string, payload any) {
	event, err := events.NewEvent(eventType, subject, payload)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event handler failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
