// Package mic implements [audio.Source] on top of PortAudio. It captures
// 16-bit mono PCM from the default (or a named) input device and segments
// utterances with an RMS energy gate: leading silence is discarded, speech
// frames are buffered, and a configurable run of trailing silence closes the
// utterance.
package mic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/dmorales/fastaccess/pkg/audio"
)

const (
	defaultSampleRate      = 16000
	defaultFramesPerBuffer = 512

	// defaultRMSThreshold is the energy level (in 16-bit PCM units) below
	// which a frame counts as silence. 16-bit full scale is 32 767; 300 is
	// near-silence on typical microphones.
	defaultRMSThreshold = 300.0

	defaultSilenceMs      = 800
	defaultMaxUtteranceMs = 10_000
)

// Compile-time assertion that Source implements audio.Source.
var _ audio.Source = (*Source)(nil)

// Option is a functional option for configuring a [Source].
type Option func(*Source)

// WithSampleRate sets the capture rate in Hz. Defaults to 16000, the rate
// speech models expect.
func WithSampleRate(rate int) Option {
	return func(s *Source) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithDevice selects an input device by (case-insensitive substring) name.
// Empty means the system default input.
func WithDevice(name string) Option {
	return func(s *Source) { s.deviceName = name }
}

// WithSilenceThreshold sets the RMS level below which a frame counts as
// silence. Default: 300.
func WithSilenceThreshold(rms float64) Option {
	return func(s *Source) {
		if rms > 0 {
			s.rmsThreshold = rms
		}
	}
}

// WithSilenceMs sets the trailing-silence duration that closes an utterance.
// Default: 800 ms.
func WithSilenceMs(ms int) Option {
	return func(s *Source) {
		if ms > 0 {
			s.silenceMs = ms
		}
	}
}

// WithMaxUtteranceMs caps a single utterance's duration; the buffer is
// returned once the cap is reached even without trailing silence.
// Default: 10 s.
func WithMaxUtteranceMs(ms int) Option {
	return func(s *Source) {
		if ms > 0 {
			s.maxUtteranceMs = ms
		}
	}
}

// Source captures utterances from a PortAudio input stream.
// Record and Close must not be called concurrently with each other.
type Source struct {
	sampleRate     int
	deviceName     string
	rmsThreshold   float64
	silenceMs      int
	maxUtteranceMs int

	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

// New initialises PortAudio and opens the input stream. Call [Source.Close]
// to release the device and shut PortAudio down.
func New(opts ...Option) (*Source, error) {
	s := &Source{
		sampleRate:     defaultSampleRate,
		rmsThreshold:   defaultRMSThreshold,
		silenceMs:      defaultSilenceMs,
		maxUtteranceMs: defaultMaxUtteranceMs,
	}
	for _, o := range opts {
		o(s)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("mic: initialize portaudio: %w", err)
	}

	s.buf = make([]int16, defaultFramesPerBuffer)

	stream, err := s.openStream()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, nil
}

// openStream opens the configured input device, falling back to the default
// input when the named device is not found.
func (s *Source) openStream() (*portaudio.Stream, error) {
	if s.deviceName != "" {
		if dev, err := findDevice(s.deviceName); err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   dev,
					Channels: 1,
					Latency:  dev.DefaultLowInputLatency,
				},
				SampleRate:      float64(s.sampleRate),
				FramesPerBuffer: len(s.buf),
			}
			stream, err := portaudio.OpenStream(params, s.buf)
			if err == nil {
				return stream, nil
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.sampleRate), len(s.buf), s.buf)
	if err != nil {
		return nil, fmt.Errorf("mic: open input stream: %w", err)
	}
	return stream, nil
}

// findDevice returns the first input device whose name contains name
// (case-insensitive).
func findDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("mic: list devices: %w", err)
	}
	needle := strings.ToLower(name)
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), needle) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("mic: no input device matching %q", name)
}

// Record implements [audio.Source]. It starts the stream, discards frames
// until speech is heard, buffers until the trailing-silence window (or the
// utterance cap) closes the utterance, and stops the stream again so no
// capture happens between calls. Cancellation is checked between frames, so
// pause latency is bounded by one frame (~32 ms at the defaults).
func (s *Source) Record(ctx context.Context) (audio.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return audio.Clip{}, fmt.Errorf("mic: source is closed")
	}

	if err := s.stream.Start(); err != nil {
		return audio.Clip{}, fmt.Errorf("mic: start stream: %w", err)
	}
	defer s.stream.Stop()

	frameMs := len(s.buf) * 1000 / s.sampleRate
	maxBytes := s.maxUtteranceMs * s.sampleRate / 1000 * 2

	var (
		utterance []byte
		hadSpeech bool
		silence   int
	)

	for {
		select {
		case <-ctx.Done():
			return audio.Clip{}, ctx.Err()
		default:
		}

		if err := s.stream.Read(); err != nil {
			return audio.Clip{}, fmt.Errorf("mic: read stream: %w", err)
		}
		frame := audio.Int16ToPCM(s.buf)

		if audio.RMS(frame) < s.rmsThreshold {
			if !hadSpeech {
				continue // leading silence
			}
			silence += frameMs
			utterance = append(utterance, frame...)
			if silence >= s.silenceMs {
				return audio.Clip{PCM: utterance, SampleRate: s.sampleRate}, nil
			}
			continue
		}

		hadSpeech = true
		silence = 0
		utterance = append(utterance, frame...)
		if len(utterance) >= maxBytes {
			return audio.Clip{PCM: utterance, SampleRate: s.sampleRate}, nil
		}
	}
}

// Close implements [audio.Source]. It releases the stream and terminates
// PortAudio. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("mic: close stream: %w", err))
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("mic: terminate portaudio: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
