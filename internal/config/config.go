// Package config provides the configuration schema, loader, and provider
// registry for the voice launcher daemon.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the daemon.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for the daemon.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Voice     VoiceConfig     `yaml:"voice"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds network and logging settings for the control plane.
type ServerConfig struct {
	// ListenAddr is the TCP address the control plane listens on
	// (e.g., "127.0.0.1:7749").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// CatalogConfig locates the catalog file and tunes the change watcher.
type CatalogConfig struct {
	// Path is the catalog JSON file. Created on first use when missing.
	Path string `yaml:"path"`

	// PollInterval is how often the watcher checks the file for external
	// edits (e.g., by the CLI while the daemon runs).
	PollInterval time.Duration `yaml:"poll_interval"`
}

// VoiceConfig tunes the resolution engine and the listening loop.
type VoiceConfig struct {
	// Active is the initial voice gate state. The control plane can toggle
	// it at runtime.
	Active *bool `yaml:"active"`

	// Language is the ISO-639-1 code selecting the spoken feedback phrase
	// set and the default transcription language for STT providers whose
	// options carry no explicit "language" (e.g., "es").
	Language string `yaml:"language"`

	// FillerWords overrides the built-in filler vocabulary stripped from
	// transcripts before matching. Empty means the default set.
	FillerWords []string `yaml:"filler_words"`

	// MatchThreshold is the minimum fuzzy similarity in (0, 1] accepted as
	// a match when substring containment fails. 0 means the default.
	MatchThreshold float64 `yaml:"match_threshold"`

	// Announce enables spoken feedback (startup announcement, match
	// confirmations).
	Announce *bool `yaml:"announce"`
}

// ProvidersConfig declares which implementation to use for each pipeline
// stage. Each entry selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	// STT is the primary transcription backend.
	STT ProviderEntry `yaml:"stt"`

	// STTFallbacks lists additional transcription backends tried in order
	// when the primary fails.
	STTFallbacks []ProviderEntry `yaml:"stt_fallbacks"`

	// TTS is the speech synthesis backend for spoken feedback.
	TTS ProviderEntry `yaml:"tts"`

	// Audio is the capture source.
	Audio ProviderEntry `yaml:"audio"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "whisper", "whisper-native", "openai", "command", "mic").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint (e.g., the
	// whisper-server address). Leave empty for the built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "whisper-1")
	// or, for whisper-native, the model file path.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above. Values may be strings, numbers, booleans,
	// or nested maps.
	Options map[string]any `yaml:"options"`
}

// Default values applied by [ApplyDefaults].
const (
	DefaultListenAddr     = "127.0.0.1:7749"
	DefaultCatalogPath    = "commands.json"
	DefaultPollInterval   = 2 * time.Second
	DefaultLanguage       = "es"
	DefaultMatchThreshold = 0.6
)

// ApplyDefaults fills zero-value fields with their documented defaults.
// Called by the loader after decoding; exported so tests and programmatic
// construction can use the same behaviour.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.PollInterval <= 0 {
		cfg.Catalog.PollInterval = DefaultPollInterval
	}
	if cfg.Voice.Language == "" {
		cfg.Voice.Language = DefaultLanguage
	}
	if cfg.Voice.MatchThreshold == 0 {
		cfg.Voice.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.Voice.Active == nil {
		active := true
		cfg.Voice.Active = &active
	}
	if cfg.Voice.Announce == nil {
		announce := true
		cfg.Voice.Announce = &announce
	}
	if cfg.Providers.Audio.Name == "" {
		cfg.Providers.Audio.Name = "mic"
	}

	// The voice language is the default transcription language; an explicit
	// per-provider options.language still wins.
	applyLanguageDefault(&cfg.Providers.STT, cfg.Voice.Language)
	for i := range cfg.Providers.STTFallbacks {
		applyLanguageDefault(&cfg.Providers.STTFallbacks[i], cfg.Voice.Language)
	}
}

func applyLanguageDefault(entry *ProviderEntry, lang string) {
	if lang == "" {
		return
	}
	if s, ok := entry.Options["language"].(string); ok && s != "" {
		return
	}
	if entry.Options == nil {
		entry.Options = map[string]any{}
	}
	entry.Options["language"] = lang
}

// SlogLevel maps the configured log level to its slog equivalent.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
