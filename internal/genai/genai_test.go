package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/logging"
)

type funcGenerator func(ctx context.Context, prompt string) (string, error)

func (f funcGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestGeminiClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				MaxOutputTokens int `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 256, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" Keep "},{"text":"saving."}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "k-123", Model: "gemini-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Keep saving.", text)
}

func TestGeminiClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = NewGeminiClient(context.Background(), GeminiConfig{Model: "m"})
	assert.Error(t, err)
}

func TestBoundedFallsBackOnTimeout(t *testing.T) {
	slow := funcGenerator(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	b := NewBounded(slow, 20*time.Millisecond, logging.Discard())

	start := time.Now()
	text, ok := b.GenerateOr(context.Background(), "p", "fallback")
	assert.False(t, ok)
	assert.Equal(t, "fallback", text)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBoundedFallsBackOnErrorAndEmptyText(t *testing.T) {
	failing := NewBounded(funcGenerator(func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}), time.Second, logging.Discard())
	text, ok := failing.GenerateOr(context.Background(), "p", "fallback")
	assert.False(t, ok)
	assert.Equal(t, "fallback", text)

	empty := NewBounded(funcGenerator(func(context.Context, string) (string, error) { return "  ", nil }), time.Second, logging.Discard())
	text, ok = empty.GenerateOr(context.Background(), "p", "fallback")
	assert.False(t, ok)
	assert.Equal(t, "fallback", text)

	off := NewBounded(Unavailable{}, time.Second, logging.Discard())
	_, ok = off.GenerateOr(context.Background(), "p", "fallback")
	assert.False(t, ok)
}

func TestBoundedReturnsGeneratedText(t *testing.T) {
	b := NewBounded(funcGenerator(func(context.Context, string) (string, error) { return " Spend wisely. ", nil }), time.Second, logging.Discard())
	text, ok := b.GenerateOr(context.Background(), "p", "fallback")
	assert.True(t, ok)
	assert.Equal(t, "Spend wisely.", text)
}
