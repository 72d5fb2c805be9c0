package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyChunk is returned when asked to generate from blank text
	ErrEmptyChunk = errors.New("chunk text cannot be empty")

	// ErrInvalidTargetCount is returned when the requested card count is not positive
	ErrInvalidTargetCount = errors.New("target card count must be positive")
)
