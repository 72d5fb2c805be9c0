// Package gemini adapts Google's Gemini API to the llm.Completer contract
// using the google.golang.org/genai client.
//
// The adapter is deliberately thin: it sends one prompt, concatenates the
// text parts of the first candidate and translates API failures into
// *llm.ProviderError. Prompt construction, retries and parsing belong to
// internal/generation.
package gemini
