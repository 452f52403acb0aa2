package config

import (
	"errors"
	"testing"

	"github.com/dmorales/fastaccess/pkg/audio"
	audiomock "github.com/dmorales/fastaccess/pkg/audio/mock"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
	sttmock "github.com/dmorales/fastaccess/pkg/provider/stt/mock"
	"github.com/dmorales/fastaccess/pkg/provider/tts"
	ttsmock "github.com/dmorales/fastaccess/pkg/provider/tts/mock"
)

func TestRegistryCreate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterSTT("mock", func(e ProviderEntry) (stt.Transcriber, error) {
		return sttmock.NewTranscriber(), nil
	})
	r.RegisterTTS("mock", func(e ProviderEntry) (tts.Speaker, error) {
		return &ttsmock.Speaker{}, nil
	})
	r.RegisterAudio("mock", func(e ProviderEntry) (audio.Source, error) {
		return audiomock.NewSource(), nil
	})

	if _, err := r.CreateSTT(ProviderEntry{Name: "mock"}); err != nil {
		t.Errorf("CreateSTT: %v", err)
	}
	if _, err := r.CreateTTS(ProviderEntry{Name: "mock"}); err != nil {
		t.Errorf("CreateTTS: %v", err)
	}
	if _, err := r.CreateAudio(ProviderEntry{Name: "mock"}); err != nil {
		t.Errorf("CreateAudio: %v", err)
	}
}

func TestRegistryUnregistered(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.CreateSTT(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryFactoryReceivesEntry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var got ProviderEntry
	r.RegisterSTT("whisper", func(e ProviderEntry) (stt.Transcriber, error) {
		got = e
		return sttmock.NewTranscriber(), nil
	})

	entry := ProviderEntry{Name: "whisper", BaseURL: "http://localhost:8080", Model: "base"}
	if _, err := r.CreateSTT(entry); err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if got.BaseURL != entry.BaseURL || got.Model != entry.Model {
		t.Errorf("factory received %+v, want %+v", got, entry)
	}
}
