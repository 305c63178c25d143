package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openaiEndpoint = "https://api.openai.com/v1/images/generations"

// OpenAIProvider generates images via the OpenAI Images API.
type OpenAIProvider struct {
	apiKey string
	client HTTPClient
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey string, client HTTPClient) *OpenAIProvider {
	return &OpenAIProvider{apiKey: apiKey, client: client}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

type openaiRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type openaiResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate posts the prompt to OpenAI and returns the hosted image URL.
// The API ignores seed, steps and cfg scale.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openai: no API key configured")
	}

	body, err := json.Marshal(openaiRequest{
		Model:  "dall-e-3",
		Prompt: req.Prompt,
		N:      1,
		Size:   fmt.Sprintf("%dx%d", req.Width, req.Height),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, payload)
	}

	var out openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return nil, fmt.Errorf("openai: empty response")
	}

	return &Result{URL: out.Data[0].URL, Model: p.Name()}, nil
}
