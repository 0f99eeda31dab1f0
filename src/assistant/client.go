package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 60 * time.Second

	defaultRateLimit  = 2 // requests per second
	defaultBurst      = 4
	defaultMaxRetries = 3
)

var (
	ErrNoResponse    = errors.New("assistant returned no response")
	ErrNotConfigured = errors.New("assistant API key is not configured")
)

// Client generates text from a prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig represents LLM client configuration
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// geminiClient implements Client against a Gemini-compatible generateContent
// endpoint.
type geminiClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates an LLM client for the assistant.
func NewClient(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant API key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &geminiClient{
		model:      model,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
	}, nil
}

// disabledClient is used when no API key is configured. Every request fails
// with ErrNotConfigured.
type disabledClient struct{}

// NewDisabledClient creates a client that rejects every request.
func NewDisabledClient() Client {
	return disabledClient{}
}

func (disabledClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt and returns the generated text. Transient
// failures (429 and 5xx) are retried with backoff.
func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, retryable, err := c.doRequest(ctx, url, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("assistant request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *geminiClient) doRequest(ctx context.Context, url string, body []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("assistant API status %d: %s", resp.StatusCode, string(data))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("assistant API status %d: %s", resp.StatusCode, string(data))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to decode assistant response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("assistant API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, ErrNoResponse
	}
	return parsed.Candidates[0].Content.Parts[0].Text, false, nil
}
