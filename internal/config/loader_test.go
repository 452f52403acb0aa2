package config

import (
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  listen_addr: "127.0.0.1:9000"
  log_level: debug
catalog:
  path: /tmp/commands.json
  poll_interval: 5s
voice:
  language: es
  match_threshold: 0.7
  announce: false
providers:
  stt:
    name: whisper
    base_url: http://localhost:8080
  stt_fallbacks:
    - name: openai
      api_key: sk-test
      model: whisper-1
  tts:
    name: command
    options:
      binary: espeak-ng
  audio:
    name: mic
`

func TestLoadFromReaderValid(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogDebug {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Catalog.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", cfg.Catalog.PollInterval)
	}
	if cfg.Voice.MatchThreshold != 0.7 {
		t.Errorf("MatchThreshold = %v", cfg.Voice.MatchThreshold)
	}
	if cfg.Voice.Announce == nil || *cfg.Voice.Announce {
		t.Error("Announce should be false")
	}
	if cfg.Providers.STT.Name != "whisper" {
		t.Errorf("STT.Name = %q", cfg.Providers.STT.Name)
	}
	if len(cfg.Providers.STTFallbacks) != 1 || cfg.Providers.STTFallbacks[0].Name != "openai" {
		t.Errorf("STTFallbacks = %+v", cfg.Providers.STTFallbacks)
	}
	if got := cfg.Providers.TTS.Options["binary"]; got != "espeak-ng" {
		t.Errorf("TTS binary option = %v", got)
	}
}

func TestLoadFromReaderDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(`
providers:
  stt:
    name: whisper
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want default", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Catalog.Path != DefaultCatalogPath {
		t.Errorf("Catalog.Path = %q, want default", cfg.Catalog.Path)
	}
	if cfg.Catalog.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.Catalog.PollInterval)
	}
	if cfg.Voice.Language != DefaultLanguage {
		t.Errorf("Language = %q, want es", cfg.Voice.Language)
	}
	if cfg.Voice.MatchThreshold != DefaultMatchThreshold {
		t.Errorf("MatchThreshold = %v, want default", cfg.Voice.MatchThreshold)
	}
	if cfg.Voice.Active == nil || !*cfg.Voice.Active {
		t.Error("Active should default to true")
	}
	if cfg.Voice.Announce == nil || !*cfg.Voice.Announce {
		t.Error("Announce should default to true")
	}
	if cfg.Providers.Audio.Name != "mic" {
		t.Errorf("Audio.Name = %q, want mic", cfg.Providers.Audio.Name)
	}
}

func TestVoiceLanguageIsDefaultSTTLanguage(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(`
voice:
  language: en
providers:
  stt:
    name: whisper
  stt_fallbacks:
    - name: openai
      model: whisper-1
      options:
        language: pt
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if got := cfg.Providers.STT.Options["language"]; got != "en" {
		t.Errorf("STT options.language = %v, want the voice language", got)
	}
	// An explicit per-provider language is not overridden.
	if got := cfg.Providers.STTFallbacks[0].Options["language"]; got != "pt" {
		t.Errorf("fallback options.language = %v, want pt", got)
	}
}

func TestLoadFromReaderUnknownField(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader(`
providers:
  stt:
    name: whisper
banana: true
`))
	if err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.LogLevel = "loud"
	cfg.Voice.MatchThreshold = 1.5
	cfg.Catalog.Path = ""
	// STT name left empty.

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"log_level", "match_threshold", "catalog.path", "providers.stt.name"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
