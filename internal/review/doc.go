// Package review implements the interactive review loop over a deck as an
// explicit state machine, independent of any user interface.
//
//	Idle ──Start──▶ Showing ──Reveal──▶ Revealed ──Mark──▶ Showing | Complete
//
// Restart re-enters Start from any state. A Session is owned by a single
// caller and is not safe for concurrent use.
package review
