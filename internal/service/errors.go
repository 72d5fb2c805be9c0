package service

import (
	"errors"
	"fmt"
)

// Common service errors. Callers match them with errors.Is; the API layer
// maps them to HTTP status codes.
var (
	// ErrGenerationFailed marks any failure of the generation pipeline after
	// the source text was accepted.
	ErrGenerationFailed = errors.New("deck generation failed")

	// ErrNoCards indicates that every chunk was processed but no usable card
	// survived curation.
	ErrNoCards = errors.New("no flashcards could be generated")

	// ErrInvalidRequest indicates a request rejected before any work started.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoGenerator is returned by GenerateDeck on a service built without
	// a card generator.
	ErrNoGenerator = errors.New("no card generator configured")
)

// GenerationError reports a failed generation request with the subject and,
// when one chunk is to blame, its index. ChunkIndex is -1 otherwise.
type GenerationError struct {
	Subject    string
	ChunkIndex int
	Err        error
}

// Error implements the error interface for GenerationError.
func (e *GenerationError) Error() string {
	if e.ChunkIndex >= 0 {
		return fmt.Sprintf("generate deck %q: chunk %d: %v", e.Subject, e.ChunkIndex, e.Err)
	}
	return fmt.Sprintf("generate deck %q: %v", e.Subject, e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewChunkError creates a GenerationError for one failed chunk.
func NewChunkError(subject string, chunkIndex int, err error) *GenerationError {
	return &GenerationError{Subject: subject, ChunkIndex: chunkIndex, Err: err}
}

// ServiceError wraps store failures with the operation that triggered them.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "save_deck", "load_deck")
	Operation string
	// Subject is the deck subject involved, if any
	Subject string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("deck service %s %q: %v", e.Operation, e.Subject, e.Err)
	}
	return fmt.Sprintf("deck service %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, subject string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Subject: subject, Err: err}
}

func invalidRequest(reason string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRequest, reason, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}
