// Package mock provides a scripted test double for the audio.Source
// interface.
//
// Feed clips into Clips (or pre-populate it via NewSource) and every Record
// call pops the next one. When the queue is empty, Record blocks until a clip
// arrives or the context is cancelled — mirroring a microphone waiting for
// speech.
package mock

import (
	"context"
	"sync"

	"github.com/dmorales/fastaccess/pkg/audio"
)

// Compile-time assertion that Source implements audio.Source.
var _ audio.Source = (*Source)(nil)

// Source is a mock implementation of audio.Source.
type Source struct {
	// Clips is the queue of clips returned by Record, in order.
	Clips chan audio.Clip

	// RecordErr, if non-nil, is returned by every Record call.
	RecordErr error

	mu          sync.Mutex
	recordCalls int
	closed      bool
}

// NewSource returns a Source whose queue is pre-loaded with clips.
func NewSource(clips ...audio.Clip) *Source {
	s := &Source{Clips: make(chan audio.Clip, len(clips)+16)}
	for _, c := range clips {
		s.Clips <- c
	}
	return s
}

// Record pops the next scripted clip, or blocks until one arrives or ctx is
// cancelled.
func (s *Source) Record(ctx context.Context) (audio.Clip, error) {
	s.mu.Lock()
	s.recordCalls++
	err := s.RecordErr
	s.mu.Unlock()

	if err != nil {
		return audio.Clip{}, err
	}

	select {
	case <-ctx.Done():
		return audio.Clip{}, ctx.Err()
	case clip := <-s.Clips:
		return clip, nil
	}
}

// RecordCalls returns how many times Record has been invoked. Thread-safe.
func (s *Source) RecordCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordCalls
}

// Close marks the source closed. It never fails.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
