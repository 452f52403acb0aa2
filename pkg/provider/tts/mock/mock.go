// Package mock provides a test double for the tts.Speaker interface.
package mock

import (
	"context"
	"sync"

	"github.com/dmorales/fastaccess/pkg/provider/tts"
)

// Compile-time assertion that Speaker satisfies tts.Speaker.
var _ tts.Speaker = (*Speaker)(nil)

// Speaker records every Speak call and optionally fails them.
type Speaker struct {
	mu     sync.Mutex
	spoken []string
	closed bool

	// SpeakErr, if non-nil, is returned from every Speak call.
	SpeakErr error
}

// Speak implements tts.Speaker.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return s.SpeakErr
}

// Spoken returns a copy of all texts passed to Speak.
func (s *Speaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// Close implements tts.Speaker.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Speaker) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
