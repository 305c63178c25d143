package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus is the lifecycle state of an AI generation task.
type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationTask records one AI image generation request and its outcome.
// A completed task can be saved to the gallery as a published artwork.
type GenerationTask struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Prompt         string           `json:"prompt"`
	NegativePrompt string           `json:"negative_prompt,omitempty"`
	Model          string           `json:"model"` // provider that produced the image
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Steps          int              `json:"steps"`
	CfgScale       float64          `json:"cfg_scale"`
	Seed           int64            `json:"seed"`
	Status         GenerationStatus `json:"status"`
	ImageURL       string           `json:"image_url,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}
