package audio_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/dmorales/fastaccess/pkg/audio"
)

func TestEncodeWAV_Header(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 320) // 160 samples
	wav := audio.EncodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Error("missing RIFF/WAVE/data markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
}

func TestRMS(t *testing.T) {
	t.Parallel()

	if got := audio.RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
	if got := audio.RMS(make([]byte, 64)); got != 0 {
		t.Errorf("RMS(silence) = %f, want 0", got)
	}

	// A full-scale square wave has RMS equal to its amplitude.
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 10000
		if i%2 == 1 {
			samples[i] = -10000
		}
	}
	got := audio.RMS(audio.Int16ToPCM(samples))
	if math.Abs(got-10000) > 1 {
		t.Errorf("RMS(square wave) = %f, want ≈10000", got)
	}
}

func TestPCMToFloat32(t *testing.T) {
	t.Parallel()

	pcm := audio.Int16ToPCM([]int16{0, 16384, -16384, 32767})
	f := audio.PCMToFloat32(pcm)

	want := []float32{0, 0.5, -0.5, float32(32767) / 32768}
	if len(f) != len(want) {
		t.Fatalf("len = %d, want %d", len(f), len(want))
	}
	for i := range want {
		if math.Abs(float64(f[i]-want[i])) > 1e-6 {
			t.Errorf("f[%d] = %f, want %f", i, f[i], want[i])
		}
	}
}

func TestClip_DurationMs(t *testing.T) {
	t.Parallel()

	c := audio.Clip{PCM: make([]byte, 32000), SampleRate: 16000}
	if got := c.DurationMs(); got != 1000 {
		t.Errorf("DurationMs = %d, want 1000", got)
	}
	if got := (audio.Clip{}).DurationMs(); got != 0 {
		t.Errorf("zero clip DurationMs = %d, want 0", got)
	}
}
