package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptySubject is returned when a deck has no subject after trimming.
	ErrEmptySubject = errors.New("subject cannot be empty")

	// ErrEmptyQuestion is returned when a card's question is blank.
	ErrEmptyQuestion = errors.New("card question cannot be empty")

	// ErrEmptyAnswer is returned when a card's answer is blank.
	ErrEmptyAnswer = errors.New("card answer cannot be empty")

	// ErrDuplicateCardID is returned when two cards in a deck share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID in deck")

	// ErrEmptyInput is matched by errors reporting that there was no text to work on.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrExtraction is matched by errors reporting an unreadable source document.
	ErrExtraction = errors.New("text extraction failed")
)
