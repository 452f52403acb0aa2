package events_test

import (
	"testing"
	"time"

	"github.com/dmorales/fastaccess/internal/events"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	b := events.NewBus()
	ch1, cancel1 := b.Subscribe(4)
	defer cancel1()
	ch2, cancel2 := b.Subscribe(4)
	defer cancel2()

	published := b.Publish(events.StatusChanged, "listening")

	for i, ch := range []<-chan events.Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Kind != events.StatusChanged || e.Message != "listening" {
				t.Errorf("subscriber %d got %+v", i, e)
			}
			if e.ID != published.ID {
				t.Errorf("subscriber %d event ID = %q, want %q", i, e.ID, published.ID)
			}
			if e.ID == "" {
				t.Errorf("subscriber %d event has empty ID", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	b := events.NewBus()
	_, cancel := b.Subscribe(1)
	defer cancel()

	// The buffer holds one event; further publishes must not block even
	// though nobody drains the channel.
	done := make(chan struct{})
	go func() {
		for range 10 {
			b.Publish(events.CommandDetected, "abrir spotify")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	t.Parallel()

	b := events.NewBus()
	ch, cancel := b.Subscribe(4)
	cancel()
	cancel() // idempotent

	b.Publish(events.ErrorOccurred, "boom")

	// The channel is closed; a receive yields the zero value immediately.
	if e, ok := <-ch; ok {
		t.Errorf("received %+v on a cancelled subscription", e)
	}
}
