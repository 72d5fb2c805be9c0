// Package postgres provides PostgreSQL implementations of the DeckStore and
// ProgressStore interfaces defined in the internal/store package, using the
// pgx database/sql driver. It handles query execution and the mapping
// between domain entities and rows.
package postgres
