// Package sqlite implements the store interfaces on an SQLite file using
// the pure-Go modernc.org/sqlite driver. It is the default backend for the
// CLI and needs no external service.
package sqlite
