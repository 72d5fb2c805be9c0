package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresProgressStore implements store.ProgressStore on PostgreSQL.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// NewPostgresProgressStore creates a PostgresProgressStore.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// RecordAttempt implements store.ProgressStore.RecordAttempt.
func (s *PostgresProgressStore) RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if attempt == nil {
		return store.NewStoreError("review_attempt", "record", "", "attempt cannot be nil", store.ErrInvalidEntity)
	}
	if err := attempt.Validate(); err != nil {
		log.WarnContext(ctx, "review attempt validation failed", slog.String("error", err.Error()))
		return store.NewStoreError("review_attempt", "record", attempt.Subject, "invalid attempt", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_attempts (id, subject, correct, incorrect, total, accuracy, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attempt.ID,
		attempt.Subject,
		attempt.Correct,
		attempt.Incorrect,
		attempt.Total,
		attempt.Accuracy,
		attempt.CompletedAt.UTC(),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to record review attempt",
			slog.String("subject", attempt.Subject),
			slog.String("error", err.Error()))
		return store.NewStoreError("review_attempt", "record", attempt.Subject, "failed to insert attempt", MapError(err))
	}

	log.InfoContext(ctx, "review attempt recorded",
		slog.String("subject", attempt.Subject),
		slog.String("attempt_id", attempt.ID.String()))
	return nil
}

// ListAttempts implements store.ProgressStore.ListAttempts.
func (s *PostgresProgressStore) ListAttempts(ctx context.Context, subject string) ([]domain.ReviewAttempt, error) {
	subject = domain.NormalizeSubject(subject)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, correct, incorrect, total, accuracy, completed_at
		FROM review_attempts
		WHERE $1 = '' OR subject = $1
		ORDER BY completed_at, seq`, subject)
	if err != nil {
		return nil, store.NewStoreError("review_attempt", "list", subject, "failed to query attempts", err)
	}
	defer func() { _ = rows.Close() }()

	attempts := []domain.ReviewAttempt{}
	for rows.Next() {
		var a domain.ReviewAttempt
		if err := rows.Scan(&a.ID, &a.Subject, &a.Correct, &a.Incorrect, &a.Total, &a.Accuracy, &a.CompletedAt); err != nil {
			return nil, store.NewStoreError("review_attempt", "list", subject, "failed to scan attempt", err)
		}
		a.CompletedAt = a.CompletedAt.UTC()
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_attempt", "list", subject, "failed to iterate attempts", err)
	}
	return attempts, nil
}

// RecordMistakes implements store.ProgressStore.RecordMistakes. The rows are
// written with one statement so a pass is logged entirely or not at all.
func (s *PostgresProgressStore) RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if len(mistakes) == 0 {
		return nil
	}

	values := make([]string, 0, len(mistakes))
	args := make([]any, 0, len(mistakes)*6)
	for _, m := range mistakes {
		if err := m.Validate(); err != nil {
			log.WarnContext(ctx, "mistake validation failed", slog.String("error", err.Error()))
			return store.NewStoreError("review_mistake", "record", m.Subject, "invalid mistake", err)
		}
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6))
		args = append(args, m.ID, m.Subject, m.CardID, m.Question, m.Answer, m.RecordedAt.UTC())
	}

	subject := mistakes[0].Subject
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_mistakes (id, subject, card_id, question, correct_answer, recorded_at)
		VALUES `+strings.Join(values, ", "), args...)
	if err != nil {
		log.ErrorContext(ctx, "failed to record mistakes",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return store.NewStoreError("review_mistake", "record", subject, "failed to insert mistakes", MapError(err))
	}

	log.InfoContext(ctx, "mistakes recorded",
		slog.String("subject", subject),
		slog.Int("count", len(mistakes)))
	return nil
}

// ListMistakes implements store.ProgressStore.ListMistakes.
func (s *PostgresProgressStore) ListMistakes(ctx context.Context, subject string) ([]domain.Mistake, error) {
	subject = domain.NormalizeSubject(subject)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, card_id, question, correct_answer, recorded_at
		FROM review_mistakes
		WHERE $1 = '' OR subject = $1
		ORDER BY recorded_at DESC, seq DESC`, subject)
	if err != nil {
		return nil, store.NewStoreError("review_mistake", "list", subject, "failed to query mistakes", err)
	}
	defer func() { _ = rows.Close() }()

	mistakes := []domain.Mistake{}
	for rows.Next() {
		var m domain.Mistake
		if err := rows.Scan(&m.ID, &m.Subject, &m.CardID, &m.Question, &m.Answer, &m.RecordedAt); err != nil {
			return nil, store.NewStoreError("review_mistake", "list", subject, "failed to scan mistake", err)
		}
		m.RecordedAt = m.RecordedAt.UTC()
		mistakes = append(mistakes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_mistake", "list", subject, "failed to iterate mistakes", err)
	}
	return mistakes, nil
}
