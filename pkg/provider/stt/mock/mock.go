// Package mock provides an in-memory stt.Transcriber for tests.
package mock

import (
	"context"
	"sync"

	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
)

// Compile-time assertion that Transcriber satisfies stt.Transcriber.
var _ stt.Transcriber = (*Transcriber)(nil)

// Result is one scripted outcome for a Transcribe call.
type Result struct {
	Text string
	Err  error
}

// Transcriber is a scriptable stt.Transcriber. Each Transcribe call pops the
// next Result from the script; when the script runs out, Transcribe blocks
// until the context is cancelled. Safe for concurrent use.
type Transcriber struct {
	mu      sync.Mutex
	script  []Result
	calls   []audio.Clip
	closed  bool
	blocked chan struct{}
}

// NewTranscriber returns a Transcriber preloaded with the given results.
func NewTranscriber(results ...Result) *Transcriber {
	return &Transcriber{
		script:  results,
		blocked: make(chan struct{}),
	}
}

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, clip)
	if len(t.script) > 0 {
		r := t.script[0]
		t.script = t.script[1:]
		t.mu.Unlock()
		return r.Text, r.Err
	}
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.blocked:
		return "", stt.ErrUnrecognizedSpeech
	}
}

// Append adds further scripted results. Calls already blocked on an
// exhausted script are not woken; Append only affects future calls.
func (t *Transcriber) Append(results ...Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.script = append(t.script, results...)
}

// Calls returns a copy of the clips passed to Transcribe so far.
func (t *Transcriber) Calls() []audio.Clip {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]audio.Clip, len(t.calls))
	copy(out, t.calls)
	return out
}

// Close implements stt.Transcriber.
func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (t *Transcriber) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
