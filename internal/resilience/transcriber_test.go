package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
	sttmock "github.com/dmorales/fastaccess/pkg/provider/stt/mock"
)

func clip() audio.Clip {
	return audio.Clip{PCM: make([]byte, 320), SampleRate: 16000}
}

func TestTranscriberFallbackPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := sttmock.NewTranscriber(sttmock.Result{Text: "abrir spotify"})
	secondary := sttmock.NewTranscriber(sttmock.Result{Text: "should not be used"})

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{})
	f.AddFallback("secondary", secondary)

	text, err := f.Transcribe(context.Background(), clip())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "abrir spotify" {
		t.Errorf("text = %q, want %q", text, "abrir spotify")
	}
	if n := len(secondary.Calls()); n != 0 {
		t.Errorf("secondary called %d times, want 0", n)
	}
}

func TestTranscriberFallbackFailsOverOnServiceError(t *testing.T) {
	t.Parallel()

	primary := sttmock.NewTranscriber(
		sttmock.Result{Err: &stt.ServiceError{Provider: "primary", Err: errors.New("down")}},
	)
	secondary := sttmock.NewTranscriber(sttmock.Result{Text: "pon musica"})

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{})
	f.AddFallback("secondary", secondary)

	text, err := f.Transcribe(context.Background(), clip())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "pon musica" {
		t.Errorf("text = %q, want %q", text, "pon musica")
	}
}

func TestTranscriberFallbackUnrecognizedSpeechIsNotFailover(t *testing.T) {
	t.Parallel()

	primary := sttmock.NewTranscriber(sttmock.Result{Err: stt.ErrUnrecognizedSpeech})
	secondary := sttmock.NewTranscriber(sttmock.Result{Text: "should not be used"})

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{MaxFailures: 1})
	f.AddFallback("secondary", secondary)

	_, err := f.Transcribe(context.Background(), clip())
	if !errors.Is(err, stt.ErrUnrecognizedSpeech) {
		t.Fatalf("err = %v, want ErrUnrecognizedSpeech", err)
	}
	if n := len(secondary.Calls()); n != 0 {
		t.Errorf("secondary called %d times, want 0", n)
	}

	// The benign error must not have tripped the primary's breaker.
	primary.Append(sttmock.Result{Text: "abrir discord"})
	text, err := f.Transcribe(context.Background(), clip())
	if err != nil {
		t.Fatalf("second Transcribe: %v", err)
	}
	if text != "abrir discord" {
		t.Errorf("text = %q, want %q", text, "abrir discord")
	}
}

func TestTranscriberFallbackAllFailed(t *testing.T) {
	t.Parallel()

	svcErr := &stt.ServiceError{Provider: "x", Err: errors.New("down")}
	primary := sttmock.NewTranscriber(sttmock.Result{Err: svcErr})

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{})

	_, err := f.Transcribe(context.Background(), clip())
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}

func TestTranscriberFallbackSkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	svcErr := &stt.ServiceError{Provider: "primary", Err: errors.New("down")}
	primary := sttmock.NewTranscriber(
		sttmock.Result{Err: svcErr},
		sttmock.Result{Text: "never reached"},
	)
	secondary := sttmock.NewTranscriber(
		sttmock.Result{Text: "first"},
		sttmock.Result{Text: "second"},
	)

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{MaxFailures: 1})
	f.AddFallback("secondary", secondary)

	if _, err := f.Transcribe(context.Background(), clip()); err != nil {
		t.Fatalf("first Transcribe: %v", err)
	}

	// Primary's breaker is now open: the second call must go straight to the
	// fallback without touching the primary again.
	text, err := f.Transcribe(context.Background(), clip())
	if err != nil {
		t.Fatalf("second Transcribe: %v", err)
	}
	if text != "second" {
		t.Errorf("text = %q, want %q", text, "second")
	}
	if n := len(primary.Calls()); n != 1 {
		t.Errorf("primary called %d times, want 1", n)
	}
}

func TestTranscriberFallbackClose(t *testing.T) {
	t.Parallel()

	primary := sttmock.NewTranscriber()
	secondary := sttmock.NewTranscriber()

	f := NewTranscriberFallback(primary, "primary", CircuitBreakerConfig{})
	f.AddFallback("secondary", secondary)

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !primary.Closed() || !secondary.Closed() {
		t.Error("Close must close every backend")
	}
}
