// Package genai calls an external text-generation service for short advisory
// text. Every call is bounded by a timeout and callers fall back to fixed
// text on any failure.
package genai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrUnavailable is returned when no text-generation backend is configured.
var ErrUnavailable = errors.New("text generation unavailable")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Unavailable is a Generator that always fails; used when no API key is set.
type Unavailable struct{}

// Generate implements Generator.
func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Bounded wraps a Generator with a per-call timeout and a fallback.
type Bounded struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewBounded builds a Bounded generator.
func NewBounded(gen Generator, timeout time.Duration, logger *slog.Logger) *Bounded {
	return &Bounded{gen: gen, timeout: timeout, logger: logger}
}

// GenerateOr returns generated text, or fallback when the backend errors,
// times out or returns nothing. The boolean reports whether generation succeeded.
func (b *Bounded) GenerateOr(ctx context.Context, prompt, fallback string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := b.gen.Generate(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		b.logger.Warn("text generation timed out", slog.Duration("timeout", b.timeout))
		return fallback, false
	case r := <-done:
		if r.err != nil {
			if !errors.Is(r.err, ErrUnavailable) {
				b.logger.Warn("text generation failed", slog.Any("error", r.err))
			}
			return fallback, false
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return fallback, false
		}
		return text, true
	}
}
