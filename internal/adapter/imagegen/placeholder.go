package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
)

// PlaceholderProvider renders a deterministic gradient locally so that the
// generation pipeline works end to end without any external API key. The
// same seed always yields the same image.
type PlaceholderProvider struct{}

// NewPlaceholderProvider creates the local fallback provider.
func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

// Name returns the provider name.
func (p *PlaceholderProvider) Name() string { return "placeholder" }

// Generate renders a seeded gradient PNG and returns it as a data URL.
func (p *PlaceholderProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if width <= 0 || width > 2048 {
		width = 512
	}
	if height <= 0 || height > 2048 {
		height = 512
	}

	rng := rand.New(rand.NewSource(req.Seed))
	base := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
	tint := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		fy := float64(y) / float64(height)
		for x := 0; x < width; x++ {
			fx := float64(x) / float64(width)
			t := (fx + fy) / 2
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(base.R, tint.R, t),
				G: lerp(base.G, tint.G, t),
				B: lerp(base.B, tint.B, t),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("placeholder: encode png: %w", err)
	}

	return &Result{
		URL:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Model: p.Name(),
	}, nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
