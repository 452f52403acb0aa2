// Package listener runs the voice loop: capture an utterance, transcribe it,
// resolve it against the catalog, execute the match, repeat.
//
// The loop runs in a single goroutine and is strictly sequential — at most
// one utterance is in flight at any point. It never terminates on its own:
// every failure is absorbed at the iteration boundary and the loop carries on
// until its context is cancelled. Pausing is a soft gate: the loop keeps
// running but discards input, so resuming is instant.
package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmorales/fastaccess/internal/catalog"
	"github.com/dmorales/fastaccess/internal/events"
	"github.com/dmorales/fastaccess/internal/executor"
	"github.com/dmorales/fastaccess/internal/observe"
	"github.com/dmorales/fastaccess/internal/resolve"
	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
	"github.com/dmorales/fastaccess/pkg/provider/tts"
)

// State is the listener's current position in the loop.
type State int32

const (
	// StateIdle means the voice gate is closed; input is discarded.
	StateIdle State = iota

	// StateListening means the microphone is open waiting for an utterance.
	StateListening

	// StateTranscribing means a captured clip is at the STT provider.
	StateTranscribing

	// StateResolving means a transcript is being matched against the catalog.
	StateResolving

	// StateExecuting means a matched target is being launched.
	StateExecuting
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateTranscribing:
		return "transcribing"
	case StateResolving:
		return "resolving"
	case StateExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

// Phrases holds the spoken feedback lines. The defaults match the launcher's
// original Spanish voice.
type Phrases struct {
	// Activated is spoken once at startup and after each reactivation.
	Activated string

	// NotUnderstood is spoken when transcription yields no usable text.
	NotUnderstood string

	// NoMatch is spoken when the transcript matches nothing in the catalog.
	NoMatch string

	// OpeningFmt is the confirmation format; it receives the matched name.
	OpeningFmt string
}

// DefaultPhrases returns the built-in Spanish feedback lines.
func DefaultPhrases() Phrases {
	return Phrases{
		Activated:     "asistente de voz activado",
		NotUnderstood: "no te he entendido",
		NoMatch:       "no encontré ese comando",
		OpeningFmt:    "abriendo %s",
	}
}

// PhrasesForLanguage returns the built-in feedback lines for a BCP 47-ish
// language code ("es", "en", "en-US"). Unknown languages fall back to the
// Spanish defaults.
func PhrasesForLanguage(lang string) Phrases {
	if lang == "en" || strings.HasPrefix(lang, "en-") {
		return Phrases{
			Activated:     "voice assistant activated",
			NotUnderstood: "I didn't catch that",
			NoMatch:       "I couldn't find that command",
			OpeningFmt:    "opening %s",
		}
	}
	return DefaultPhrases()
}

// Config tunes the loop. Zero values get defaults from [New].
type Config struct {
	// Announce enables spoken feedback. When false the Speaker is never
	// called.
	Announce bool

	// Phrases are the spoken feedback lines; zero-value fields fall back to
	// [DefaultPhrases].
	Phrases Phrases

	// IdlePoll is how often the paused loop re-checks the voice gate.
	// Default 200ms.
	IdlePoll time.Duration

	// BaseBackoff is the first delay after a transcription service error.
	// Doubled per consecutive error up to MaxBackoff. Default 500ms.
	BaseBackoff time.Duration

	// MaxBackoff caps the error backoff. Default 8s.
	MaxBackoff time.Duration
}

// Listener owns the voice loop. Construct with [New], drive with [Run], and
// toggle with [Listener.SetActive] from any goroutine.
type Listener struct {
	source   audio.Source
	stt      stt.Transcriber
	speaker  tts.Speaker
	store    *catalog.Store
	resolver *resolve.Resolver
	exec     *executor.Executor
	bus      *events.Bus
	metrics  *observe.Metrics
	cfg      Config

	active atomic.Bool
	state  atomic.Int32

	// announcePending re-arms the activation announcement on each
	// false→true gate transition.
	announcePending atomic.Bool

	// captureCancel aborts an in-flight Record when the gate closes.
	mu            sync.Mutex
	captureCancel context.CancelFunc

	// speakWG tracks fire-and-forget announcements so Run can drain them
	// before returning.
	speakWG sync.WaitGroup
}

// New wires up a Listener. All collaborators are required except speaker,
// which may be nil when announcements are disabled.
func New(source audio.Source, transcriber stt.Transcriber, speaker tts.Speaker,
	store *catalog.Store, resolver *resolve.Resolver, exec *executor.Executor,
	bus *events.Bus, metrics *observe.Metrics, cfg Config) *Listener {

	if cfg.IdlePoll <= 0 {
		cfg.IdlePoll = 200 * time.Millisecond
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 8 * time.Second
	}
	def := DefaultPhrases()
	if cfg.Phrases.Activated == "" {
		cfg.Phrases.Activated = def.Activated
	}
	if cfg.Phrases.NotUnderstood == "" {
		cfg.Phrases.NotUnderstood = def.NotUnderstood
	}
	if cfg.Phrases.NoMatch == "" {
		cfg.Phrases.NoMatch = def.NoMatch
	}
	if cfg.Phrases.OpeningFmt == "" {
		cfg.Phrases.OpeningFmt = def.OpeningFmt
	}

	l := &Listener{
		source:   source,
		stt:      transcriber,
		speaker:  speaker,
		store:    store,
		resolver: resolver,
		exec:     exec,
		bus:      bus,
		metrics:  metrics,
		cfg:      cfg,
	}
	l.state.Store(int32(StateIdle))
	return l
}

// State returns the loop's current state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Active reports whether the voice gate is open.
func (l *Listener) Active() bool {
	return l.active.Load()
}

// SetActive opens or closes the voice gate. Closing it aborts any in-flight
// capture; the partially recorded clip is discarded. Opening it re-arms the
// activation announcement. Idempotent.
func (l *Listener) SetActive(active bool) {
	prev := l.active.Swap(active)
	if prev == active {
		return
	}
	if active {
		l.announcePending.Store(true)
		l.metrics.ListenerActive.Add(context.Background(), 1)
		l.bus.Publish(events.StatusChanged, "voice activated")
	} else {
		l.metrics.ListenerActive.Add(context.Background(), -1)
		l.bus.Publish(events.StatusChanged, "voice paused")
		l.mu.Lock()
		if l.captureCancel != nil {
			l.captureCancel()
		}
		l.mu.Unlock()
	}
	slog.Info("voice gate toggled", "active", active)
}

// Start opens the gate before Run, without publishing a toggle event. Used
// at boot when the config says the listener starts active.
func (l *Listener) Start() {
	if !l.active.Swap(true) {
		l.announcePending.Store(true)
		l.metrics.ListenerActive.Add(context.Background(), 1)
	}
}

// Run executes the loop until ctx is cancelled. It always returns ctx's
// error; per-iteration failures are logged, published on the bus, and
// absorbed.
func (l *Listener) Run(ctx context.Context) error {
	defer l.speakWG.Wait()
	defer l.state.Store(int32(StateIdle))

	backoff := l.cfg.BaseBackoff
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !l.active.Load() {
			l.state.Store(int32(StateIdle))
			if !sleep(ctx, l.cfg.IdlePoll) {
				return ctx.Err()
			}
			continue
		}

		if l.announcePending.Swap(false) {
			l.speakAsync(ctx, l.cfg.Phrases.Activated)
		}

		clip, ok := l.capture(ctx)
		if !ok {
			continue
		}

		text, err := l.transcribe(ctx, clip)
		switch {
		case err == nil:
			backoff = l.cfg.BaseBackoff
		case errors.Is(err, stt.ErrUnrecognizedSpeech):
			backoff = l.cfg.BaseBackoff
			l.metrics.RecordUtterance(ctx, "unrecognized")
			l.bus.Publish(events.StatusChanged, "didn't understand")
			l.speakAsync(ctx, l.cfg.Phrases.NotUnderstood)
			continue
		case errors.Is(err, context.Canceled):
			continue
		default:
			l.metrics.RecordUtterance(ctx, "error")
			l.metrics.RecordProviderError(ctx, providerOf(err), "stt")
			l.bus.Publish(events.ErrorOccurred, err.Error())
			slog.Error("transcription failed", "error", err)
			// Back off so a dead service is not hammered in a tight loop.
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, l.cfg.MaxBackoff)
			continue
		}

		l.bus.Publish(events.CommandDetected, text)

		match, snap, found := l.resolveTranscript(ctx, text)
		if !found {
			l.metrics.RecordUtterance(ctx, "unmatched")
			l.bus.Publish(events.StatusChanged, fmt.Sprintf("no match for %q", text))
			l.speakAsync(ctx, l.cfg.Phrases.NoMatch)
			continue
		}

		l.metrics.RecordUtterance(ctx, "resolved")
		l.metrics.RecordMatch(ctx, match.Kind.String())
		l.execute(ctx, snap, match)
	}
}

// capture records one utterance. The second return is false when the clip
// must be discarded (cancellation, device error, or the gate closed while
// recording).
func (l *Listener) capture(ctx context.Context) (audio.Clip, bool) {
	l.state.Store(int32(StateListening))

	capCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.captureCancel = cancel
	l.mu.Unlock()

	start := time.Now()
	clip, err := l.source.Record(capCtx)

	l.mu.Lock()
	l.captureCancel = nil
	l.mu.Unlock()
	cancel()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.bus.Publish(events.ErrorOccurred, err.Error())
			slog.Error("capture failed", "error", err)
			sleep(ctx, l.cfg.BaseBackoff)
		}
		return audio.Clip{}, false
	}
	l.metrics.CaptureDuration.Record(ctx, time.Since(start).Seconds())

	// The gate may have closed mid-utterance; what was recorded while
	// pausing is not a command.
	if !l.active.Load() {
		return audio.Clip{}, false
	}
	return clip, true
}

func (l *Listener) transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	l.state.Store(int32(StateTranscribing))
	start := time.Now()
	text, err := l.stt.Transcribe(ctx, clip)
	l.metrics.TranscribeDuration.Record(ctx, time.Since(start).Seconds())
	return text, err
}

// resolveTranscript matches text against the newest catalog snapshot. The
// snapshot is returned alongside the match so execution sees the same
// catalog the match was made against.
func (l *Listener) resolveTranscript(ctx context.Context, text string) (resolve.Match, *catalog.Snapshot, bool) {
	l.state.Store(int32(StateResolving))
	start := time.Now()
	snap := l.store.Snapshot()
	match, found := l.resolver.Resolve(text, snap.CommandNames, snap.GroupNames)
	l.metrics.ResolveDuration.Record(ctx, time.Since(start).Seconds())
	return match, snap, found
}

func (l *Listener) execute(ctx context.Context, snap *catalog.Snapshot, match resolve.Match) {
	l.state.Store(int32(StateExecuting))
	start := time.Now()

	var err error
	switch match.Kind {
	case resolve.KindCommand:
		if cmd, ok := snap.Command(match.Name); ok {
			err = l.exec.RunCommand(ctx, cmd)
		}
	case resolve.KindGroup:
		if g, ok := snap.Group(match.Name); ok {
			_, err = l.exec.RunGroup(ctx, snap, g)
		}
	}
	l.metrics.ExecuteDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		l.bus.Publish(events.ErrorOccurred, fmt.Sprintf("open %s: %v", match.Name, err))
		slog.Error("execution failed", "name", match.Name, "error", err)
		return
	}

	l.bus.Publish(events.StatusChanged, fmt.Sprintf("executing %s", match.Name))
	// Confirmation must not delay the next capture.
	l.speakAsync(ctx, fmt.Sprintf(l.cfg.Phrases.OpeningFmt, match.Name))
}

// speakAsync fires a best-effort announcement without blocking the loop.
func (l *Listener) speakAsync(ctx context.Context, text string) {
	if !l.cfg.Announce || l.speaker == nil {
		return
	}
	l.speakWG.Add(1)
	go func() {
		defer l.speakWG.Done()
		if err := l.speaker.Speak(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("announcement failed", "text", text, "error", err)
		}
	}()
}

// sleep waits for d or until ctx is done; reports whether the full duration
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// providerOf extracts the provider name from a service error, "unknown"
// otherwise.
func providerOf(err error) string {
	var svcErr *stt.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Provider
	}
	return "unknown"
}
