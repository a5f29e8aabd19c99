package genai

import (
	"context"
	"fmt"
	"strings"

	gemini "google.golang.org/genai"
)

const geminiAPIVersion = "v1beta"

// GeminiConfig configures the Gemini client. BaseURL is optional and
// overrides the public endpoint.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiClient generates text with the Gemini API. It makes a single request
// per call and honors the context deadline.
type GeminiClient struct {
	client *gemini.Client
	model  string
	config *gemini.GenerateContentConfig
}

// NewGeminiClient validates cfg and builds a client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}
	client, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: gemini.BackendGeminiAPI,
		HTTPOptions: gemini.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		config: &gemini.GenerateContentConfig{
			Temperature:     gemini.Ptr[float32](0.7),
			MaxOutputTokens: 256,
		},
	}, nil
}

// Generate implements Generator.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, gemini.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
