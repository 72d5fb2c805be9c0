package sqlite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// ProgressStore implements store.ProgressStore on SQLite.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates a ProgressStore.
// If logger is nil, a default logger will be used.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_progress_store")),
	}
}

// RecordAttempt implements store.ProgressStore.RecordAttempt.
func (s *ProgressStore) RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID.String(),
		attempt.Subject,
		attempt.Correct,
		attempt.Incorrect,
		attempt.Total,
		attempt.Accuracy,
		formatTime(attempt.CompletedAt),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to record review attempt",
			slog.String("subject", attempt.Subject),
			slog.String("error", err.Error()))
		return store.NewStoreError("review_attempt", "record", attempt.Subject, "failed to insert attempt", MapError(err))
	}

	log.InfoContext(ctx, "review attempt recorded",
		slog.String("subject", attempt.Subject),
		slog.Float64("accuracy", attempt.Accuracy))
	return nil
}

// ListAttempts implements store.ProgressStore.ListAttempts.
func (s *ProgressStore) ListAttempts(ctx context.Context, subject string) ([]domain.ReviewAttempt, error) {
	subject = domain.NormalizeSubject(subject)

	query := `
		SELECT id, subject, correct, incorrect, total, accuracy, completed_at
		FROM review_attempts`
	var args []any
	if subject != "" {
		query += ` WHERE subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY completed_at, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("review_attempt", "list", subject, "failed to query attempts", err)
	}
	defer func() { _ = rows.Close() }()

	attempts := []domain.ReviewAttempt{}
	for rows.Next() {
		var (
			a           domain.ReviewAttempt
			id          string
			completedAt string
		)
		if err := rows.Scan(&id, &a.Subject, &a.Correct, &a.Incorrect, &a.Total, &a.Accuracy, &completedAt); err != nil {
			return nil, store.NewStoreError("review_attempt", "list", subject, "failed to scan attempt", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, store.NewStoreError("review_attempt", "list", subject, "invalid attempt id", err)
		}
		if a.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, store.NewStoreError("review_attempt", "list", subject, "invalid completed_at", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_attempt", "list", subject, "failed to iterate attempts", err)
	}
	return attempts, nil
}


// RecordMistakes implements store.ProgressStore.RecordMistakes. The rows are
// written with one statement so a pass is logged entirely or not at all.
func (s *ProgressStore) RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error {
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
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, m.ID.String(), m.Subject, m.CardID, m.Question, m.Answer, formatTime(m.RecordedAt))
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
func (s *ProgressStore) ListMistakes(ctx context.Context, subject string) ([]domain.Mistake, error) {
	subject = domain.NormalizeSubject(subject)

	query := `
		SELECT id, subject, card_id, question, correct_answer, recorded_at
		FROM review_mistakes`
	var args []any
	if subject != "" {
		query += ` WHERE subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY recorded_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("review_mistake", "list", subject, "failed to query mistakes", err)
	}
	defer func() { _ = rows.Close() }()

	mistakes := []domain.Mistake{}
	for rows.Next() {
		var (
			m          domain.Mistake
			id         string
			recordedAt string
		)
		if err := rows.Scan(&id, &m.Subject, &m.CardID, &m.Question, &m.Answer, &recordedAt); err != nil {
			return nil, store.NewStoreError("review_mistake", "list", subject, "failed to scan mistake", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, store.NewStoreError("review_mistake", "list", subject, "invalid mistake id", err)
		}
		if m.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, store.NewStoreError("review_mistake", "list", subject, "invalid recorded_at", err)
		}
		mistakes = append(mistakes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_mistake", "list", subject, "failed to iterate mistakes", err)
	}
	return mistakes, nil
}
