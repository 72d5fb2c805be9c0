// Package domain contains the core entities of flashdeck: flashcards, decks,
// raw candidates produced by the model, and review attempts. It is
// independent of any storage, provider or presentation mechanism.
package domain
