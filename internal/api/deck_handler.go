package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/extract"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service"
)

// MaxUploadBytes bounds multipart uploads.
const MaxUploadBytes = 32 << 20

// DeckService is the subset of service.DeckService used by the handlers.
type DeckService interface {
	GenerateDeck(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
	SaveDeck(ctx context.Context, deck *domain.Deck) error
	LoadDeck(ctx context.Context, subject string) (*domain.Deck, error)
	ListSubjects(ctx context.Context) ([]string, error)
	DeleteDeck(ctx context.Context, subject string) error
	RecordAttempt(ctx context.Context, attempt *domain.ReviewAttempt) error
	Progress(ctx context.Context, subject string) (*service.ProgressSummary, error)
	RecordMistakes(ctx context.Context, mistakes []domain.Mistake) error
	Mistakes(ctx context.Context, subject string) ([]domain.Mistake, error)
}

var _ DeckService = (*service.DeckService)(nil)

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	decks  DeckService
	now    func() time.Time
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(decks DeckService, logger *slog.Logger) *DeckHandler {
	if decks == nil {
		panic("deck service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		decks:  decks,
		now:    time.Now,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /api/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.decks.ListSubjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SubjectsResponse{Subjects: subjects})
}

// GenerateDeck handles POST /api/decks
func (h *DeckHandler) GenerateDeck(w http.ResponseWriter, r *http.Request) {
	var req GenerateDeckRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	h.generate(w, r, service.GenerateRequest{
		Subject:        req.Subject,
		SourceText:     req.SourceText,
		RequestedCount: req.RequestedCount,
		Save:           req.Save,
	})
}

// UploadDeck handles POST /api/decks/upload with multipart fields file,
// subject (defaults to the file name), count and save.
func (h *DeckHandler) UploadDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart upload", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid file: required field", err)
		return
	}
	defer file.Close()

	format, err := extract.FormatFromFilename(header.Filename)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Unsupported file format", err)
		return
	}

	count := 0
	if v := r.FormValue("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 0 {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid count: validation failed", err)
			return
		}
	}
	save, _ := strconv.ParseBool(r.FormValue("save"))

	subject := r.FormValue("subject")
	if strings.TrimSpace(subject) == "" {
		subject = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	h.generate(w, r, service.GenerateRequest{
		Subject:        subject,
		Source:         data,
		Format:         format,
		RequestedCount: count,
		Save:           save,
	})
}

func (h *DeckHandler) generate(w http.ResponseWriter, r *http.Request, req service.GenerateRequest) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	res, err := h.decks.GenerateDeck(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.InfoContext(r.Context(), "deck generated",
		slog.String("subject", res.Deck.Subject),
		slog.Int("cards", res.Produced),
		slog.Bool("saved", res.Saved))

	status := http.StatusOK
	if res.Saved {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, generateResultToResponse(res))
}

// GetDeck handles GET /api/decks/{subject}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	deck, err := h.decks.LoadDeck(r.Context(), subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// SaveDeck handles PUT /api/decks/{subject}, replacing the stored deck.
func (h *DeckHandler) SaveDeck(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	var req SaveDeckRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	deck, err := domain.NewDeck(subject, req.toCards(), h.now())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.decks.SaveDeck(r.Context(), deck); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// DeleteDeck handles DELETE /api/decks/{subject}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	if err := h.decks.DeleteDeck(r.Context(), subject); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProgress handles GET /api/decks/{subject}/progress
func (h *DeckHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	summary, err := h.decks.Progress(r.Context(), subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// RecordAttempt handles POST /api/decks/{subject}/attempts
func (h *DeckHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	now := h.now()
	var mistakes []domain.Mistake
	if len(req.MissedCardIDs) > 0 {
		deck, err := h.decks.LoadDeck(r.Context(), subject)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		for _, id := range req.MissedCardIDs {
			card, ok := deck.CardByID(id)
			if !ok {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown card ID "+strconv.Itoa(id))
				return
			}
			mistakes = append(mistakes, domain.NewMistake(subject, card, now))
		}
	}

	attempt := domain.NewReviewAttempt(subject, req.Correct, req.Incorrect, now)
	if err := h.decks.RecordAttempt(r.Context(), attempt); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.decks.RecordMistakes(r.Context(), mistakes); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, attempt)
}

// GetMistakes handles GET /api/decks/{subject}/mistakes
func (h *DeckHandler) GetMistakes(w http.ResponseWriter, r *http.Request) {
	subject, ok := getSubjectParam(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrEmptySubject, "")
		return
	}

	mistakes, err := h.decks.Mistakes(r.Context(), subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mistakes)
}
