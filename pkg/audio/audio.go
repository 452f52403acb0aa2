// Package audio defines the capture abstraction used by the voice listener
// and shared PCM helpers (WAV container encoding, RMS energy, float
// conversion) consumed by the STT providers.
//
// A [Source] delivers one utterance per call: implementations block until
// speech has been heard and a trailing silence window closes it, then return
// the whole utterance as a single [Clip]. The real microphone source lives in
// the mic subpackage; the mock subpackage provides a scripted test double.
package audio

import (
	"context"
	"encoding/binary"
	"math"
)

// Clip is one captured utterance of 16-bit signed little-endian mono PCM.
type Clip struct {
	// PCM is the raw sample data, two bytes per sample.
	PCM []byte

	// SampleRate is the capture rate in Hz.
	SampleRate int
}

// DurationMs returns the clip length in milliseconds, 0 for invalid clips.
func (c Clip) DurationMs() int {
	if c.SampleRate <= 0 {
		return 0
	}
	return len(c.PCM) * 1000 / (c.SampleRate * 2)
}

// Source captures utterances from an audio input.
//
// Record blocks until a full utterance is available or ctx is cancelled.
// Implementations must return ctx.Err() promptly on cancellation so that
// pausing the listener never waits out an open-ended capture.
type Source interface {
	Record(ctx context.Context) (Clip, error)

	// Close releases the underlying device. Record must not be called
	// after Close.
	Close() error
}

// EncodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container, suitable for multipart upload to transcription
// services.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	const bps = 16
	byteRate := sampleRate * channels * bps / 8
	blockAlign := channels * bps / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], bps)                // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

// RMS returns the root-mean-square energy of a 16-bit signed little-endian
// PCM buffer, in PCM sample units (0–32 767). Returns 0 for buffers shorter
// than one sample.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])))
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// PCMToFloat32 converts 16-bit signed little-endian PCM to float32 samples
// normalised to [-1.0, 1.0], the format whisper.cpp consumes. Any trailing
// odd byte is ignored.
func PCMToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}

// Int16ToPCM serialises int16 samples to little-endian bytes.
func Int16ToPCM(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
