package handler

import (
	"strconv"
	"time"

	"ai-art-marketplace/internal/adapter/http/dto"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"
	"ai-art-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// GenerationHandler handles AI image generation endpoints.
type GenerationHandler struct {
	generationSvc ports.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationSvc ports.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationSvc: generationSvc}
}

// Generate handles POST /api/v1/generate.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	task, err := h.generationSvc.Generate(c.Request.Context(), userID, ports.GenerateParams{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		CfgScale:       req.CfgScale,
		Seed:           req.Seed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTaskResponse(task))
}

// GetTask handles GET /api/v1/generate/:id.
func (h *GenerationHandler) GetTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrTaskNotFound())
		return
	}

	task, err := h.generationSvc.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTaskResponse(task))
}

// History handles GET /api/v1/generate/history.
func (h *GenerationHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	tasks, err := h.generationSvc.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.GenerationTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, toTaskResponse(task))
	}
	response.OK(c, items)
}

// SaveArtwork handles POST /api/v1/generate/:id/save.
func (h *GenerationHandler) SaveArtwork(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrTaskNotFound())
		return
	}

	var req dto.SaveArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	artwork, err := h.generationSvc.SaveArtwork(c.Request.Context(), userID, taskID, ports.SaveArtworkParams{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		IsForSale:      req.IsForSale,
		IsAuction:      req.IsAuction,
		AuctionEndTime: req.AuctionEndTime,
		MinimumBid:     req.MinimumBid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toArtworkResponse(artwork))
}

func toTaskResponse(task *domain.GenerationTask) dto.GenerationTaskResponse {
	resp := dto.GenerationTaskResponse{
		ID:           task.ID.String(),
		Prompt:       task.Prompt,
		Model:        task.Model,
		Seed:         task.Seed,
		Status:       string(task.Status),
		ImageURL:     task.ImageURL,
		ErrorMessage: task.ErrorMessage,
		CreatedAt:    task.CreatedAt.Format(time.RFC3339),
	}
	if task.CompletedAt != nil {
		s := task.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
