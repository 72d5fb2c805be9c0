// Package generation turns a chunk of study text into flashcard candidates
// by prompting a language model through the llm.Completer contract. It owns
// the prompt template, the retry-once policy for provider failures and the
// tolerant parser that treats model output as untrusted data: every
// well-formed question/answer unit is kept and everything else is dropped.
package generation
