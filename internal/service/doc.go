// Package service contains the application use cases of flashdeck. It
// orchestrates the generation pipeline (extract, segment, generate, curate)
// and fronts the deck and progress stores for the presentation layers.
//
// DeckService is the only type the CLI, the TUI and the HTTP API talk to.
// It depends on the store interfaces in internal/store and the
// generation.CardGenerator interface, never on a concrete database or LLM
// provider.
//
// Store calls are bounded by the configured storage timeout and serialized
// per subject with a store.SubjectLocker: saves and deletes take the write
// lock, loads take the read lock.
package service
