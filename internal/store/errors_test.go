package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("load: %w", ErrNotFound), expected: true},
		{name: "ErrDeckNotFound", err: ErrDeckNotFound, expected: true},
		{name: "NotFoundError", err: NewDeckNotFoundError("Biology"), expected: true},
		{
			name:     "store error",
			err:      NewStoreError("deck", "load", "Biology", "query failed", errors.New("disk I/O")),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("service: %w", NewDeckNotFoundError("Biology"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.NotErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), `deck "Biology" not found`)

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "Biology", nf.Subject)

	other := &NotFoundError{Entity: "review_attempt", Subject: "x"}
	assert.ErrorIs(t, other, ErrNotFound)
	assert.NotErrorIs(t, other, ErrDeckNotFound)
}

func TestStoreError(t *testing.T) {
	cause := errors.New("database is locked")

	tests := []struct {
		name string
		err  *StoreError
		want string
	}{
		{
			name: "with subject and cause",
			err:  NewStoreError("deck", "save", "Chemistry", "failed to insert card", cause),
			want: `save operation on deck "Chemistry" failed: failed to insert card: database is locked`,
		},
		{
			name: "without subject",
			err:  NewStoreError("deck", "list", "", "failed to scan subject", cause),
			want: "list operation on deck failed: failed to scan subject: database is locked",
		},
		{
			name: "without cause",
			err:  NewStoreError("review_attempt", "record", "", "invalid attempt", nil),
			want: "record operation on review_attempt failed: invalid attempt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrStorage)
			assert.False(t, IsNotFoundError(tt.err))
		})
	}

	wrapped := fmt.Errorf("outer: %w", NewStoreError("deck", "save", "Chemistry", "boom", cause))
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrStorage)
}
