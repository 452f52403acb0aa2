// Package stt defines the speech-to-text provider abstraction.
//
// Transcription here is batch-oriented: the listening loop records one
// complete utterance, then hands the clip to a Transcriber. Providers that
// could stream partials (cloud APIs, whisper.cpp) still expose only the
// final text, which is all the resolution engine consumes.
package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorales/fastaccess/pkg/audio"
)

// ErrUnrecognizedSpeech is returned when the provider processed the clip
// successfully but could not extract any text from it. Callers should treat
// this as a normal outcome of a quiet or garbled utterance, not a failure of
// the provider.
var ErrUnrecognizedSpeech = errors.New("stt: no speech recognized")

// ServiceError wraps a provider-side failure (network, server, model) so that
// callers can distinguish "the service broke" from "the user said nothing".
// Service errors are retryable; ErrUnrecognizedSpeech is not.
type ServiceError struct {
	// Provider identifies the transcription backend, e.g. "whisper" or
	// "openai".
	Provider string
	// Err is the underlying failure.
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("stt: %s service error: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Transcriber converts a recorded audio clip into text.
//
// Implementations must be safe for concurrent use. An empty transcription
// result is reported as ErrUnrecognizedSpeech; infrastructure failures are
// reported as *ServiceError.
type Transcriber interface {
	// Transcribe returns the text spoken in clip. The context bounds the
	// whole operation including any network round trips.
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)

	// Close releases provider resources (models, connections).
	Close() error
}
