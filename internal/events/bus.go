// Package events carries asynchronous notifications from the voice listener
// to its observers (status panels, log sinks, tests). Delivery never blocks
// the publisher: a subscriber that stops draining its channel loses events
// rather than stalling the listening loop.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an event.
type Kind string

const (
	// StatusChanged reports normal progress ("listening", "executing Spotify").
	StatusChanged Kind = "status_changed"

	// ErrorOccurred reports a recovered failure (service error, no match,
	// unopenable target).
	ErrorOccurred Kind = "error_occurred"

	// CommandDetected reports a raw transcript captured from the microphone,
	// before resolution.
	CommandDetected Kind = "command_detected"
)

// Event is a single notification.
type Event struct {
	// ID uniquely identifies the event.
	ID string

	// Kind classifies the event.
	Kind Kind

	// Message is the human-readable payload: a status line, an error
	// description, or the detected transcript.
	Message string

	// Time is when the event was published.
	Time time.Time
}

// Bus fans events out to subscribers. Publish is non-blocking and safe for
// concurrent use; each subscriber gets its own buffered channel.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new observer with the given channel buffer size
// (minimum 1). The returned cancel function unregisters the observer and
// closes its channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event of the given kind to every subscriber. Slow
// subscribers with a full buffer are skipped (the drop is logged at debug
// level), so Publish returns promptly regardless of observer behaviour.
func (b *Bus) Publish(kind Kind, message string) Event {
	e := Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		Time:    time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			slog.Debug("events: dropping event for slow subscriber", "kind", kind, "id", e.ID)
		}
	}
	return e
}
