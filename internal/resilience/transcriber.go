package resilience

import (
	"context"
	"errors"

	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
)

// TranscriberFallback implements [stt.Transcriber] with automatic failover
// across multiple transcription backends. Each backend has its own circuit
// breaker.
//
// [stt.ErrUnrecognizedSpeech] is a valid outcome, not a backend failure: it
// never trips a breaker and never causes the next backend to be tried — a
// quiet clip is quiet for every backend.
type TranscriberFallback struct {
	group *FallbackGroup[stt.Transcriber]
}

// Compile-time interface assertion.
var _ stt.Transcriber = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary stt.Transcriber, primaryName string, cbCfg CircuitBreakerConfig) *TranscriberFallback {
	return &TranscriberFallback{
		group: NewFallbackGroup(primary, primaryName, FallbackConfig{
			CircuitBreaker: cbCfg,
			IsBenign: func(err error) bool {
				return errors.Is(err, stt.ErrUnrecognizedSpeech) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// AddFallback registers an additional transcription backend.
func (f *TranscriberFallback) AddFallback(name string, t stt.Transcriber) {
	f.group.AddFallback(name, t)
}

// Transcribe runs the clip through the first healthy backend, failing over on
// service errors.
func (f *TranscriberFallback) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	return Execute(f.group, func(t stt.Transcriber) (string, error) {
		return t.Transcribe(ctx, clip)
	})
}

// Close closes every registered backend and returns the joined errors.
func (f *TranscriberFallback) Close() error {
	var errs []error
	f.group.Each(func(name string, t stt.Transcriber) {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
