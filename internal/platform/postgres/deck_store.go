package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// It needs the pool itself rather than a DBTX because Save owns its transaction.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db *sql.DB, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Save implements store.DeckStore.Save.
// The delete of the previous deck and every insert share one transaction.
func (s *PostgresDeckStore) Save(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if deck == nil {
		return store.NewStoreError("deck", "save", "", "deck cannot be nil", store.ErrInvalidEntity)
	}
	subject := domain.NormalizeSubject(deck.Subject)
	if subject == "" {
		return store.NewStoreError("deck", "save", "", "invalid deck", domain.ErrEmptySubject)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE subject = $1`, subject); err != nil {
			return store.NewStoreError("deck", "save", subject, "failed to delete previous deck", MapError(err))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO decks (subject, created_at) VALUES ($1, $2)`,
			subject, deck.CreatedAt.UTC()); err != nil {
			return store.NewStoreError("deck", "save", subject, "failed to insert deck", MapError(err))
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cards (subject, position, question, answer, source_hint)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return store.NewStoreError("deck", "save", subject, "failed to prepare card insert", MapError(err))
		}
		defer func() { _ = stmt.Close() }()

		for i, c := range deck.Cards {
			if _, err := stmt.ExecContext(ctx, subject, i+1, c.Question, c.Answer, c.SourceHint); err != nil {
				log.WarnContext(ctx, "card rejected during save",
					slog.String("subject", subject),
					slog.Int("position", i+1),
					slog.Bool("check_violation", IsCheckConstraintViolation(err)))
				return store.NewStoreError("deck", "save", subject, "failed to insert card", MapError(err))
			}
		}
		return nil
	})
	if err != nil {
		var se *store.StoreError
		if !errors.As(err, &se) {
			err = store.NewStoreError("deck", "save", subject, "transaction failed", err)
		}
		log.ErrorContext(ctx, "failed to save deck",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return err
	}

	log.InfoContext(ctx, "deck saved successfully",
		slog.String("subject", subject),
		slog.Int("cards", len(deck.Cards)))
	return nil
}

// Load implements store.DeckStore.Load.
func (s *PostgresDeckStore) Load(ctx context.Context, subject string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	subject = domain.NormalizeSubject(subject)

	deck := &domain.Deck{Subject: subject, Cards: []domain.Flashcard{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM decks WHERE subject = $1`, subject).Scan(&deck.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.DebugContext(ctx, "deck not found", slog.String("subject", subject))
			return nil, store.NewDeckNotFoundError(subject)
		}
		return nil, store.NewStoreError("deck", "load", subject, "failed to query deck", err)
	}
	deck.CreatedAt = deck.CreatedAt.UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT question, answer, source_hint
		FROM cards
		WHERE subject = $1
		ORDER BY position`, subject)
	if err != nil {
		return nil, store.NewStoreError("deck", "load", subject, "failed to query cards", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c := domain.Flashcard{ID: len(deck.Cards) + 1, Subject: subject}
		if err := rows.Scan(&c.Question, &c.Answer, &c.SourceHint); err != nil {
			return nil, store.NewStoreError("deck", "load", subject, "failed to scan card", err)
		}
		deck.Cards = append(deck.Cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("deck", "load", subject, "failed to iterate cards", err)
	}

	log.DebugContext(ctx, "deck retrieved successfully",
		slog.String("subject", subject),
		slog.Int("cards", len(deck.Cards)))
	return deck, nil
}

// ListSubjects implements store.DeckStore.ListSubjects.
func (s *PostgresDeckStore) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subject FROM decks ORDER BY subject COLLATE "C"`)
	if err != nil {
		return nil, store.NewStoreError("deck", "list", "", "failed to query subjects", err)
	}
	defer func() { _ = rows.Close() }()

	subjects := []string{}
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, store.NewStoreError("deck", "list", "", "failed to scan subject", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("deck", "list", "", "failed to iterate subjects", err)
	}
	return subjects, nil
}

// Delete implements store.DeckStore.Delete.
// Cards are removed by ON DELETE CASCADE.
func (s *PostgresDeckStore) Delete(ctx context.Context, subject string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	subject = domain.NormalizeSubject(subject)

	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE subject = $1`, subject)
	if err != nil {
		log.ErrorContext(ctx, "failed to delete deck",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return store.NewStoreError("deck", "delete", subject, "failed to delete deck", MapError(err))
	}

	n, _ := result.RowsAffected()
	log.InfoContext(ctx, "deck deleted",
		slog.String("subject", subject),
		slog.Bool("existed", n > 0))
	return nil
}
