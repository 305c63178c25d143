package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const stabilityEndpoint = "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"

// StabilityProvider generates images via the Stability AI REST API.
type StabilityProvider struct {
	apiKey string
	client HTTPClient
}

// NewStabilityProvider creates a Stability AI provider.
func NewStabilityProvider(apiKey string, client HTTPClient) *StabilityProvider {
	return &StabilityProvider{apiKey: apiKey, client: client}
}

// Name returns the provider name.
func (p *StabilityProvider) Name() string { return "stability" }

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Steps       int                   `json:"steps"`
	CfgScale    float64               `json:"cfg_scale"`
	Seed        int64                 `json:"seed"`
	Samples     int                   `json:"samples"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Generate posts the prompt to Stability and returns the image as a data URL.
func (p *StabilityProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("stability: no API key configured")
	}

	prompts := []stabilityTextPrompt{{Text: req.Prompt, Weight: 1}}
	if req.NegativePrompt != "" {
		prompts = append(prompts, stabilityTextPrompt{Text: req.NegativePrompt, Weight: -1})
	}
	body, err := json.Marshal(stabilityRequest{
		TextPrompts: prompts,
		Width:       req.Width,
		Height:      req.Height,
		Steps:       req.Steps,
		CfgScale:    req.CfgScale,
		Seed:        req.Seed,
		Samples:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("stability: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, stabilityEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stability: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stability: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stability: status %d: %s", resp.StatusCode, payload)
	}

	var out stabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("stability: decode response: %w", err)
	}
	if len(out.Artifacts) == 0 || out.Artifacts[0].Base64 == "" {
		return nil, fmt.Errorf("stability: empty response")
	}

	return &Result{
		URL:   "data:image/png;base64," + out.Artifacts[0].Base64,
		Model: p.Name(),
	}, nil
}
