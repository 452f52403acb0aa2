// Package tts defines the Speaker interface for text-to-speech backends.
//
// Speech output here is strictly best-effort: the launcher announces what it
// is doing ("abriendo spotify") but a broken synthesizer must never prevent a
// command from executing. Callers log Speak errors and move on.
package tts

import "context"

// Speaker is the abstraction over any speech synthesis backend.
//
// Implementations must be safe for concurrent use.
type Speaker interface {
	// Speak synthesizes and plays the given text, blocking until playback
	// ends or ctx is cancelled. An error indicates the announcement was not
	// (fully) delivered; callers treat it as non-fatal.
	Speak(ctx context.Context, text string) error

	// Close releases synthesizer resources.
	Close() error
}
