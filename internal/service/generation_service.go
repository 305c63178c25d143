package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ai-art-marketplace/internal/adapter/imagegen"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImageGenerator produces an image for a prompt. Implemented by the
// imagegen provider chain.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Result, error)
}

// GenerationServiceImpl implements ports.GenerationService.
type GenerationServiceImpl struct {
	taskRepo    ports.GenerationTaskRepository
	artworkRepo ports.ArtworkRepository
	generator   ImageGenerator
	log         zerolog.Logger
}

// NewGenerationService creates a new GenerationServiceImpl.
func NewGenerationService(
	taskRepo ports.GenerationTaskRepository,
	artworkRepo ports.ArtworkRepository,
	generator ImageGenerator,
	log zerolog.Logger,
) *GenerationServiceImpl {
	return &GenerationServiceImpl{
		taskRepo:    taskRepo,
		artworkRepo: artworkRepo,
		generator:   generator,
		log:         log,
	}
}

// Generate runs the provider chain for the prompt and records the task. The
// task row is written before generation starts so failures leave an
// inspectable failed record.
func (s *GenerationServiceImpl) Generate(ctx context.Context, userID uuid.UUID, params ports.GenerateParams) (*domain.GenerationTask, error) {
	if params.Prompt == "" {
		return nil, apperror.Validation("prompt is required")
	}

	seed := params.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	now := time.Now().UTC()
	task := &domain.GenerationTask{
		ID:             uuid.New(),
		UserID:         userID,
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Width:          params.Width,
		Height:         params.Height,
		Steps:          params.Steps,
		CfgScale:       params.CfgScale,
		Seed:           seed,
		Status:         domain.GenerationStatusPending,
		CreatedAt:      now,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create generation task: %w", err))
	}

	result, err := s.generator.Generate(ctx, imagegen.Request{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Width:          params.Width,
		Height:         params.Height,
		Steps:          params.Steps,
		CfgScale:       params.CfgScale,
		Seed:           seed,
	})
	if err != nil {
		task.Status = domain.GenerationStatusFailed
		task.ErrorMessage = err.Error()
		if updateErr := s.taskRepo.Update(ctx, task); updateErr != nil {
			s.log.Error().Err(updateErr).Str("task_id", task.ID.String()).Msg("failed to record failed generation")
		}
		return nil, apperror.ErrGenerationFailed(err)
	}

	completedAt := time.Now().UTC()
	task.Status = domain.GenerationStatusCompleted
	task.Model = result.Model
	task.ImageURL = result.URL
	task.CompletedAt = &completedAt
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update generation task: %w", err))
	}

	s.log.Info().
		Str("task_id", task.ID.String()).
		Str("user_id", userID.String()).
		Str("model", task.Model).
		Msg("generation completed")
	return task, nil
}

// GetTask returns one of the user's generation tasks.
func (s *GenerationServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.GenerationTask, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find generation task: %w", err))
	}
	if task == nil || task.UserID != userID {
		return nil, apperror.ErrTaskNotFound()
	}
	return task, nil
}

// History returns the user's generation tasks, newest first.
func (s *GenerationServiceImpl) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.GenerationTask, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list generation tasks: %w", err))
	}
	return tasks, nil
}

// SaveArtwork turns a completed task owned by the user into a published
// artwork carrying the generation metadata.
func (s *GenerationServiceImpl) SaveArtwork(ctx context.Context, userID, taskID uuid.UUID, params ports.SaveArtworkParams) (*domain.Artwork, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find generation task: %w", err))
	}
	if task == nil || task.UserID != userID {
		return nil, apperror.ErrTaskNotFound()
	}
	if task.Status != domain.GenerationStatusCompleted {
		return nil, apperror.ErrTaskNotCompleted()
	}

	if err := validateListing(params.IsForSale, params.IsAuction, params.Price, params.MinimumBid, params.AuctionEndTime); err != nil {
		return nil, err
	}
	if params.Title == "" {
		return nil, apperror.Validation("title is required")
	}

	now := time.Now().UTC()
	artwork := &domain.Artwork{
		ID:             uuid.New(),
		OwnerID:        userID,
		CreatorID:      userID,
		Title:          params.Title,
		Description:    params.Description,
		ImageURL:       task.ImageURL,
		Prompt:         task.Prompt,
		Model:          task.Model,
		Seed:           task.Seed,
		Price:          params.Price,
		IsForSale:      params.IsForSale,
		IsAuction:      params.IsAuction,
		AuctionEndTime: params.AuctionEndTime,
		MinimumBid:     params.MinimumBid,
		Status:         domain.ArtworkStatusPublished,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.artworkRepo.Create(ctx, artwork); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create artwork: %w", err))
	}

	s.log.Info().
		Str("artwork_id", artwork.ID.String()).
		Str("task_id", task.ID.String()).
		Str("owner_id", userID.String()).
		Msg("generation saved to gallery")
	return artwork, nil
}

// validateListing enforces the listing invariants shared by artwork creation
// and relisting: fixed price and auction are mutually exclusive, a fixed
// price listing needs a positive price, an auction needs a positive minimum
// bid and a future end time when one is set.
func validateListing(isForSale, isAuction bool, price, minimumBid int64, end *time.Time) error {
	if isForSale && isAuction {
		return apperror.ErrInvalidListing("an artwork cannot be both for sale and an auction")
	}
	if isForSale && price <= 0 {
		return apperror.ErrInvalidListing("price must be positive for a fixed price listing")
	}
	if isAuction {
		if minimumBid <= 0 {
			return apperror.ErrInvalidListing("minimum bid must be positive for an auction")
		}
		if end != nil && !end.After(time.Now().UTC()) {
			return apperror.ErrInvalidListing("auction end time must be in the future")
		}
	}
	return nil
}
