// Package whisper provides whisper.cpp-backed speech-to-text transcribers.
//
// Two flavours are available: Provider talks to a running whisper-server
// binary over its REST API (POST /inference), and NativeProvider links the
// whisper.cpp library directly via CGO. Both take a complete utterance and
// return its transcription in one shot.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080",
//	    whisper.WithLanguage("es"),
//	)
//	text, err := p.Transcribe(ctx, clip)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dmorales/fastaccess/pkg/audio"
	"github.com/dmorales/fastaccess/pkg/provider/stt"
)

const (
	defaultLanguage = "es"
	providerName    = "whisper"
)

// Compile-time assertion that Provider implements stt.Transcriber.
var _ stt.Transcriber = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base", "small"). When empty the server uses whichever model it was
// started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server
// (e.g., "es", "en", "de"). Defaults to "es".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithHTTPClient replaces the HTTP client used for inference requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements stt.Transcriber backed by a local whisper.cpp HTTP
// server. It is safe for concurrent use.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a Provider that connects to the whisper.cpp HTTP server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe encodes the clip as a WAV file and POSTs it to the whisper.cpp
// /inference endpoint as multipart/form-data.
func (p *Provider) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	wav := audio.EncodeWAV(clip.PCM, clip.SampleRate, 1)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := fw.Write(wav); err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("write wav data: %w", err)}
	}
	if p.language != "" {
		if err := mw.WriteField("language", p.language); err != nil {
			return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("write language field: %w", err)}
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("write model field: %w", err)}
		}
	}
	if err := mw.Close(); err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("close multipart writer: %w", err)}
	}

	endpoint := p.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("server returned HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("read response body: %w", err)}
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: fmt.Errorf("parse JSON response: %w", err)}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", stt.ErrUnrecognizedSpeech
	}
	return text, nil
}

// Close is a no-op; the HTTP provider holds no long-lived resources.
func (p *Provider) Close() error { return nil }
