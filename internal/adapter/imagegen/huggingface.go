package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const huggingfaceEndpoint = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"

// HuggingFaceProvider generates images via the Hugging Face inference API.
type HuggingFaceProvider struct {
	token  string
	client HTTPClient
}

// NewHuggingFaceProvider creates a Hugging Face provider.
func NewHuggingFaceProvider(token string, client HTTPClient) *HuggingFaceProvider {
	return &HuggingFaceProvider{token: token, client: client}
}

// Name returns the provider name.
func (p *HuggingFaceProvider) Name() string { return "huggingface" }

type huggingfaceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		NegativePrompt    string  `json:"negative_prompt,omitempty"`
		Width             int     `json:"width,omitempty"`
		Height            int     `json:"height,omitempty"`
		NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
		GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	} `json:"parameters"`
}

// Generate posts the prompt to the inference API. The endpoint responds with
// raw image bytes, returned here as a data URL.
func (p *HuggingFaceProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if p.token == "" {
		return nil, fmt.Errorf("huggingface: no token configured")
	}

	hfReq := huggingfaceRequest{Inputs: req.Prompt}
	hfReq.Parameters.NegativePrompt = req.NegativePrompt
	hfReq.Parameters.Width = req.Width
	hfReq.Parameters.Height = req.Height
	hfReq.Parameters.NumInferenceSteps = req.Steps
	hfReq.Parameters.GuidanceScale = req.CfgScale

	body, err := json.Marshal(hfReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, huggingfaceEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, payload)
	}

	// 20MB cap on the image payload.
	img, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("huggingface: read image: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("huggingface: empty response")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Result{
		URL:   "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img),
		Model: p.Name(),
	}, nil
}
