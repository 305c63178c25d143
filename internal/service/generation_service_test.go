package service

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/internal/adapter/imagegen"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubGenerator returns a canned result or error.
type stubGenerator struct {
	result *imagegen.Result
	err    error
	last   imagegen.Request
}

func (g *stubGenerator) Generate(_ context.Context, req imagegen.Request) (*imagegen.Result, error) {
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type generationTestDeps struct {
	svc         *GenerationServiceImpl
	taskRepo    *mocks.MockGenerationTaskRepository
	artworkRepo *mocks.MockArtworkRepository
	generator   *stubGenerator
	ctrl        *gomock.Controller
}

func setupGenerationService(t *testing.T) *generationTestDeps {
	ctrl := gomock.NewController(t)
	d := &generationTestDeps{
		taskRepo:    mocks.NewMockGenerationTaskRepository(ctrl),
		artworkRepo: mocks.NewMockArtworkRepository(ctrl),
		generator:   &stubGenerator{},
		ctrl:        ctrl,
	}
	d.svc = NewGenerationService(d.taskRepo, d.artworkRepo, d.generator, zerolog.Nop())
	return d
}

func newCompletedTask(userID uuid.UUID) *domain.GenerationTask {
	completedAt := time.Now().UTC()
	return &domain.GenerationTask{
		ID:          uuid.New(),
		UserID:      userID,
		Prompt:      "a neon garden",
		Model:       "stability",
		Seed:        42,
		Status:      domain.GenerationStatusCompleted,
		ImageURL:    "data:image/png;base64,aW1hZ2U=",
		CreatedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &completedAt,
	}
}

func TestGenerationService_Generate(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.generator.result = &imagegen.Result{URL: "data:image/png;base64,aW1hZ2U=", Model: "stability"}

	d.taskRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.GenerationTask) error {
			assert.Equal(t, domain.GenerationStatusPending, task.Status)
			assert.NotZero(t, task.Seed, "zero seed must be replaced with a random one")
			return nil
		})
	d.taskRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.GenerationTask) error {
			assert.Equal(t, domain.GenerationStatusCompleted, task.Status)
			assert.Equal(t, "stability", task.Model)
			assert.NotNil(t, task.CompletedAt)
			return nil
		})

	task, err := d.svc.Generate(ctx, userID, ports.GenerateParams{Prompt: "a neon garden", Width: 512, Height: 512})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aW1hZ2U=", task.ImageURL)
	assert.Equal(t, task.Seed, d.generator.last.Seed, "the stored seed is the one sent to the provider")
}

func TestGenerationService_Generate_EmptyPrompt(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Generate(context.Background(), uuid.New(), ports.GenerateParams{})
	assert.Error(t, err)
}

func TestGenerationService_Generate_ProviderFailure(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.generator.err = assert.AnError

	d.taskRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.taskRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.GenerationTask) error {
			assert.Equal(t, domain.GenerationStatusFailed, task.Status)
			assert.NotEmpty(t, task.ErrorMessage)
			return nil
		})

	_, err := d.svc.Generate(ctx, uuid.New(), ports.GenerateParams{Prompt: "x"})
	assertAppError(t, err, "GEN_001")
}

func TestGenerationService_GetTask_WrongOwner(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	task := newCompletedTask(uuid.New())
	d.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)

	_, err := d.svc.GetTask(context.Background(), uuid.New(), task.ID)
	assertAppError(t, err, "GEN_002")
}

func TestGenerationService_SaveArtwork(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	task := newCompletedTask(userID)

	d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
	d.artworkRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Artwork) error {
			assert.Equal(t, userID, a.OwnerID)
			assert.Equal(t, userID, a.CreatorID)
			assert.Equal(t, task.ImageURL, a.ImageURL)
			assert.Equal(t, task.Prompt, a.Prompt)
			assert.Equal(t, task.Seed, a.Seed)
			assert.Equal(t, domain.ArtworkStatusPublished, a.Status)
			return nil
		})

	artwork, err := d.svc.SaveArtwork(ctx, userID, task.ID, ports.SaveArtworkParams{
		Title:     "Neon Garden",
		Price:     10000,
		IsForSale: true,
	})
	require.NoError(t, err)
	assert.True(t, artwork.IsForSale)
	assert.Equal(t, int64(10000), artwork.Price)
}

func TestGenerationService_SaveArtwork_NotCompleted(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	userID := uuid.New()
	task := newCompletedTask(userID)
	task.Status = domain.GenerationStatusPending

	d.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)

	_, err := d.svc.SaveArtwork(context.Background(), userID, task.ID, ports.SaveArtworkParams{Title: "x"})
	assertAppError(t, err, "GEN_003")
}

func TestGenerationService_SaveArtwork_InvalidListing(t *testing.T) {
	d := setupGenerationService(t)
	defer d.ctrl.Finish()

	userID := uuid.New()
	task := newCompletedTask(userID)
	past := time.Now().UTC().Add(-time.Hour)

	cases := []struct {
		name   string
		params ports.SaveArtworkParams
	}{
		{"both sale and auction", ports.SaveArtworkParams{Title: "x", IsForSale: true, IsAuction: true, Price: 100, MinimumBid: 100}},
		{"for sale without price", ports.SaveArtworkParams{Title: "x", IsForSale: true}},
		{"auction without minimum bid", ports.SaveArtworkParams{Title: "x", IsAuction: true}},
		{"auction ending in the past", ports.SaveArtworkParams{Title: "x", IsAuction: true, MinimumBid: 100, AuctionEndTime: &past}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)
			_, err := d.svc.SaveArtwork(context.Background(), userID, task.ID, tc.params)
			assertAppError(t, err, "ART_007")
		})
	}
}
