package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmorales/fastaccess/internal/app"
	"github.com/dmorales/fastaccess/internal/config"
	"github.com/dmorales/fastaccess/internal/observe"
	"github.com/dmorales/fastaccess/internal/resilience"
	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/audio/mic"
	audiomock "github.com/dmorales/fastaccess/pkg/audio/mock"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
	sttmock "github.com/dmorales/fastaccess/pkg/provider/stt/mock"
	"github.com/dmorales/fastaccess/pkg/provider/stt/openai"
	"github.com/dmorales/fastaccess/pkg/provider/stt/whisper"
	"github.com/dmorales/fastaccess/pkg/provider/tts"
	ttscommand "github.com/dmorales/fastaccess/pkg/provider/tts/command"
	ttsmock "github.com/dmorales/fastaccess/pkg/provider/tts/mock"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the listening daemon",
	Long: `Start the voice listening loop and the HTTP control plane.

The daemon records utterances from the configured audio source, transcribes
them with the configured speech-to-text provider, resolves the transcript
against the catalog and opens the matched command or group. It keeps running
until interrupted.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %q not found (see configs/example.yaml)", cfgFile)
		}
		return err
	}
	if catalogFile != "" {
		cfg.Catalog.Path = catalogFile
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("fastaccess starting",
		"config", cfgFile,
		"catalog", cfg.Catalog.Path,
		"listen_addr", cfg.Server.ListenAddr,
		"stt", cfg.Providers.STT.Name,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "fastaccess",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		return err
	}

	// ── Application ───────────────────────────────────────────────────────
	application, err := app.New(cfg, providers)
	if err != nil {
		return err
	}

	slog.Info("daemon ready, press Ctrl+C to stop")
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("goodbye")
	return nil
}

// registerBuiltinProviders wires the provider factories that ship with
// fastaccess into reg. Each factory turns a config entry into a live
// provider.
func registerBuiltinProviders(reg *config.Registry) {
	// ── STT ───────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithNativeLanguage(lang))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, openai.WithLanguage(lang))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterSTT("mock", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		return sttmock.NewTranscriber(), nil
	})

	// ── TTS ───────────────────────────────────────────────────────────────

	reg.RegisterTTS("command", func(entry config.ProviderEntry) (tts.Speaker, error) {
		var opts []ttscommand.Option
		if args := optStrings(entry.Options, "args"); len(args) > 0 {
			opts = append(opts, ttscommand.WithArgs(args...))
		}
		return ttscommand.New(optString(entry.Options, "binary"), opts...)
	})

	reg.RegisterTTS("mock", func(entry config.ProviderEntry) (tts.Speaker, error) {
		return &ttsmock.Speaker{}, nil
	})

	// ── Audio ─────────────────────────────────────────────────────────────

	reg.RegisterAudio("mic", func(entry config.ProviderEntry) (audio.Source, error) {
		var opts []mic.Option
		if rate := optInt(entry.Options, "sample_rate"); rate > 0 {
			opts = append(opts, mic.WithSampleRate(rate))
		}
		if device := optString(entry.Options, "device"); device != "" {
			opts = append(opts, mic.WithDevice(device))
		}
		if rms := optFloat(entry.Options, "silence_threshold"); rms > 0 {
			opts = append(opts, mic.WithSilenceThreshold(rms))
		}
		if ms := optInt(entry.Options, "silence_ms"); ms > 0 {
			opts = append(opts, mic.WithSilenceMs(ms))
		}
		if ms := optInt(entry.Options, "max_utterance_ms"); ms > 0 {
			opts = append(opts, mic.WithMaxUtteranceMs(ms))
		}
		return mic.New(opts...)
	})

	reg.RegisterAudio("mock", func(entry config.ProviderEntry) (audio.Source, error) {
		return audiomock.NewSource(), nil
	})
}

// buildProviders instantiates the providers named in cfg. The STT provider is
// wrapped in a circuit-breaker fallback chain when fallbacks are configured.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	primary, err := reg.CreateSTT(cfg.Providers.STT)
	if err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	if len(cfg.Providers.STTFallbacks) > 0 {
		chain := resilience.NewTranscriberFallback(primary, cfg.Providers.STT.Name,
			resilience.CircuitBreakerConfig{Name: cfg.Providers.STT.Name})
		for _, entry := range cfg.Providers.STTFallbacks {
			fb, err := reg.CreateSTT(entry)
			if err != nil {
				return nil, fmt.Errorf("create stt fallback %q: %w", entry.Name, err)
			}
			chain.AddFallback(entry.Name, fb)
			slog.Info("stt fallback registered", "name", entry.Name)
		}
		ps.STT = chain
	} else {
		ps.STT = primary
	}
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	if name := cfg.Providers.TTS.Name; name != "" {
		speaker, err := reg.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		}
		ps.TTS = speaker
		slog.Info("provider created", "kind", "tts", "name", name)
	} else {
		slog.Info("tts not configured, spoken feedback disabled")
	}

	source, err := reg.CreateAudio(cfg.Providers.Audio)
	if err != nil {
		return nil, fmt.Errorf("create audio provider %q: %w", cfg.Providers.Audio.Name, err)
	}
	ps.Audio = source
	slog.Info("provider created", "kind", "audio", "name", cfg.Providers.Audio.Name)

	return ps, nil
}

// ── Option-map helpers ───────────────────────────────────────────────────────

// optString extracts a string from a provider Options map. Returns "" when
// the map is nil, the key is absent, or the value has another type.
func optString(opts map[string]any, key string) string {
	if s, ok := opts[key].(string); ok {
		return s
	}
	return ""
}

// optInt extracts an int, accepting the int and float64 shapes YAML decoding
// produces.
func optInt(opts map[string]any, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// optFloat extracts a float, accepting int values too.
func optFloat(opts map[string]any, key string) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// optStrings extracts a string slice from a decoded []any value.
func optStrings(opts map[string]any, key string) []string {
	raw, ok := opts[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
