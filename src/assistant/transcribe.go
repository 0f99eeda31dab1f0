package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultTranscribeURL   = "https://api.openai.com"
	defaultTranscribeModel = "whisper-1"
)

// TranscriberConfig represents speech-to-text client configuration
type TranscriberConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Transcriber proxies audio uploads to a Whisper-compatible API.
type Transcriber struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewTranscriber creates a speech-to-text client.
func NewTranscriber(cfg TranscriberConfig) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcription API key required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTranscribeURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultTranscribeModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Transcriber{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Transcribe sends the audio file and returns the transcribed text.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := t.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API status %d: %s", resp.StatusCode, string(data))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return parsed.Text, nil
}
