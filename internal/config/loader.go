package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":   {"whisper", "whisper-native", "openai", "mock"},
	"tts":   {"command", "mock"},
	"audio": {"mic", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path must not be empty"))
	}
	if cfg.Catalog.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("catalog.poll_interval %v must be positive", cfg.Catalog.PollInterval))
	}
	if t := cfg.Voice.MatchThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("voice.match_threshold %.2f is out of range (0, 1]", t))
	}
	for _, w := range cfg.Voice.FillerWords {
		if w == "" {
			errs = append(errs, errors.New("voice.filler_words must not contain empty entries"))
			break
		}
	}

	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	} else {
		validateProviderName("stt", cfg.Providers.STT.Name)
	}
	for i, e := range cfg.Providers.STTFallbacks {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("providers.stt_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("stt", e.Name)
	}
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("audio", cfg.Providers.Audio.Name)

	if cfg.Providers.TTS.Name == "" {
		slog.Warn("providers.tts is not configured; spoken feedback is disabled")
	}

	return errors.Join(errs...)
}

// validateProviderName warns when name is non-empty and not in the known set
// for kind. Unknown names are not fatal: a registry may carry custom
// registrations.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	if !slices.Contains(ValidProviderNames[kind], name) {
		slog.Warn("unrecognised provider name",
			"kind", kind,
			"name", name,
			"known", ValidProviderNames[kind])
	}
}
