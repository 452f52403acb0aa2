// Package command provides a tts.Speaker that shells out to a local speech
// synthesis binary such as espeak-ng, say (macOS), or piper.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/dmorales/fastaccess/pkg/provider/tts"
)

// Compile-time assertion that Speaker satisfies tts.Speaker.
var _ tts.Speaker = (*Speaker)(nil)

// Speaker synthesizes speech by running an external command once per
// announcement, with the text appended as the final argument.
type Speaker struct {
	binary string
	args   []string

	// Announcements are serialized so overlapping events do not talk over
	// each other.
	mu     sync.Mutex
	closed bool
}

// Option is a functional option for configuring a Speaker.
type Option func(*Speaker)

// WithArgs sets extra arguments passed to the binary before the text
// (e.g., voice or rate flags).
func WithArgs(args ...string) Option {
	return func(s *Speaker) { s.args = args }
}

// New creates a Speaker that runs the given binary. When binary is empty a
// platform default is chosen: "say" on macOS, "espeak-ng" elsewhere.
func New(binary string, opts ...Option) (*Speaker, error) {
	if binary == "" {
		binary = defaultBinary()
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("tts command: %w", err)
	}
	s := &Speaker{binary: binary}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func defaultBinary() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak-ng"
}

// Speak implements tts.Speaker. It blocks until the synthesis command exits.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("tts command: speaker is closed")
	}

	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(ctx, s.binary, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tts command: %s: %w", s.binary, err)
	}
	return nil
}

// Close implements tts.Speaker.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
