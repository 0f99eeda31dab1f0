package assistant_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ria-board/src/assistant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiOK(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func newGeminiServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, assistant.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := assistant.NewClient(assistant.ClientConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return srv, client
}

func TestClient_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody string
	_, client := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(geminiOK("Hello back")))
	})

	text, err := client.Complete(context.Background(), "Hello there")
	require.NoError(t, err)
	assert.Equal(t, "Hello back", text)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotBody, "Hello there")
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	_, client := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiOK("eventually")))
	})

	text, err := client.Complete(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, "eventually", text)
	assert.Equal(t, 3, attempts)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	_, client := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad prompt"}}`))
	})

	_, err := client.Complete(context.Background(), "bad")
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_EmptyCandidates(t *testing.T) {
	_, client := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Complete(context.Background(), "anything")
	assert.ErrorIs(t, err, assistant.ErrNoResponse)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := assistant.NewClient(assistant.ClientConfig{})
	assert.Error(t, err)
}

func TestDisabledClient(t *testing.T) {
	client := assistant.NewDisabledClient()

	_, err := client.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, assistant.ErrNotConfigured)
}

func TestTranscriber_Transcribe(t *testing.T) {
	var gotAuth, gotModel, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
		}
		w.Write([]byte(`{"text":"dictated note"}`))
	}))
	t.Cleanup(srv.Close)

	transcriber, err := assistant.NewTranscriber(assistant.TranscriberConfig{
		APIKey:  "openai-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	text, err := transcriber.Transcribe(context.Background(), "memo.webm", strings.NewReader("fake audio"))
	require.NoError(t, err)

	assert.Equal(t, "dictated note", text)
	assert.Equal(t, "Bearer openai-key", gotAuth)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "memo.webm", gotFilename)
}

func TestTranscriber_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	t.Cleanup(srv.Close)

	transcriber, err := assistant.NewTranscriber(assistant.TranscriberConfig{
		APIKey:  "bad-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = transcriber.Transcribe(context.Background(), "memo.webm", strings.NewReader("audio"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewTranscriber_RequiresAPIKey(t *testing.T) {
	_, err := assistant.NewTranscriber(assistant.TranscriberConfig{})
	assert.Error(t, err)
}
