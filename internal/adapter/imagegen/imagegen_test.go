package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc lets a test stand in for an HTTP backend.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body any) *http.Response {
	payload, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestStabilityProvider_Generate(t *testing.T) {
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))

		var body stabilityRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "a neon garden", body.TextPrompts[0].Text)
		assert.Equal(t, int64(42), body.Seed)

		return jsonResponse(http.StatusOK, stabilityResponse{
			Artifacts: []struct {
				Base64       string `json:"base64"`
				FinishReason string `json:"finishReason"`
			}{{Base64: "aW1hZ2U=", FinishReason: "SUCCESS"}},
		}), nil
	})

	p := NewStabilityProvider("sk-test", client)
	result, err := p.Generate(context.Background(), Request{Prompt: "a neon garden", Width: 512, Height: 512, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, "stability", result.Model)
	assert.True(t, strings.HasPrefix(result.URL, "data:image/png;base64,"))
}

func TestStabilityProvider_NoKey(t *testing.T) {
	p := NewStabilityProvider("", nil)
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestOpenAIProvider_Generate(t *testing.T) {
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"data": []map[string]string{{"url": "https://images.example.com/out.png"}},
		}), nil
	})

	p := NewOpenAIProvider("sk-openai", client)
	result, err := p.Generate(context.Background(), Request{Prompt: "a cat", Width: 1024, Height: 1024})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/out.png", result.URL)
	assert.Equal(t, "openai", result.Model)
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, map[string]string{"error": "rate limited"}), nil
	})

	p := NewOpenAIProvider("sk-openai", client)
	_, err := p.Generate(context.Background(), Request{Prompt: "a cat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestPlaceholderProvider_Deterministic(t *testing.T) {
	p := NewPlaceholderProvider()
	req := Request{Prompt: "anything", Width: 32, Height: 32, Seed: 7}

	r1, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	r2, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, r1.URL, r2.URL, "same seed must produce the same image")
	assert.True(t, strings.HasPrefix(r1.URL, "data:image/png;base64,"))

	r3, err := p.Generate(context.Background(), Request{Prompt: "anything", Width: 32, Height: 32, Seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, r1.URL, r3.URL, "different seeds should differ")
}

func TestChain_FallsThroughToPlaceholder(t *testing.T) {
	failing := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("connection refused")
	})

	chain := NewChain(zerolog.Nop(),
		NewStabilityProvider("sk-test", failing),
		NewOpenAIProvider("", nil),
		NewPlaceholderProvider(),
	)

	result, err := chain.Generate(context.Background(), Request{Prompt: "x", Width: 16, Height: 16, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, "placeholder", result.Model)
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(zerolog.Nop(), NewOpenAIProvider("", nil))
	_, err := chain.Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)
}
