// Package imagegen talks to external text-to-image backends. Providers are
// tried in order until one succeeds; the placeholder provider never fails,
// so generation degrades instead of breaking when no API key is configured.
package imagegen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Request carries the parameters for one image generation.
type Request struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	CfgScale       float64
	Seed           int64
}

// Result is a produced image. URL is either a hosted location or a
// self-contained data URL.
type Result struct {
	URL   string
	Model string
}

// Provider produces an image for a request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Chain tries each provider in order and returns the first success.
type Chain struct {
	providers []Provider
	log       zerolog.Logger
}

// NewChain creates a provider chain.
func NewChain(log zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// Generate runs the chain. It fails only if every provider fails.
func (c *Chain) Generate(ctx context.Context, req Request) (*Result, error) {
	var lastErr error
	for _, p := range c.providers {
		result, err := p.Generate(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Str("provider", p.Name()).Msg("Image provider failed, trying next")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no image providers configured")
	}
	return nil, fmt.Errorf("all image providers failed: %w", lastErr)
}
