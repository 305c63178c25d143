package postgres

import (
	"context"
	"errors"
	"fmt"

	"ai-art-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const generationColumns = `id, user_id, prompt, negative_prompt, model, width, height,
	steps, cfg_scale, seed, status, image_url, error_message, created_at, completed_at`

// GenerationTaskRepo implements ports.GenerationTaskRepository.
type GenerationTaskRepo struct {
	pool Pool
}

// NewGenerationTaskRepo creates a new GenerationTaskRepo.
func NewGenerationTaskRepo(pool Pool) *GenerationTaskRepo {
	return &GenerationTaskRepo{pool: pool}
}

// Create inserts a generation task.
func (r *GenerationTaskRepo) Create(ctx context.Context, t *domain.GenerationTask) error {
	query := `INSERT INTO generation_tasks (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Prompt, t.NegativePrompt, t.Model, t.Width, t.Height,
		t.Steps, t.CfgScale, t.Seed, t.Status, t.ImageURL, t.ErrorMessage,
		t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation task: %w", err)
	}
	return nil
}

// GetByID fetches a generation task by UUID. Returns (nil, nil) when not found.
func (r *GenerationTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error) {
	query := `SELECT ` + generationColumns + ` FROM generation_tasks WHERE id = $1`
	return r.scanTask(r.pool.QueryRow(ctx, query, id))
}

// Update persists the outcome of a generation task.
func (r *GenerationTaskRepo) Update(ctx context.Context, t *domain.GenerationTask) error {
	query := `UPDATE generation_tasks SET model = $1, status = $2, image_url = $3,
		error_message = $4, completed_at = $5 WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query, t.Model, t.Status, t.ImageURL, t.ErrorMessage, t.CompletedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update generation task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update generation task: task %s not found", t.ID)
	}
	return nil
}

// ListByUser returns a user's generation history, newest first.
func (r *GenerationTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.GenerationTask, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + generationColumns + ` FROM generation_tasks
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list generation tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.GenerationTask
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation tasks: %w", err)
	}
	return tasks, nil
}

func (r *GenerationTaskRepo) scanTask(row pgx.Row) (*domain.GenerationTask, error) {
	t := &domain.GenerationTask{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Prompt, &t.NegativePrompt, &t.Model, &t.Width, &t.Height,
		&t.Steps, &t.CfgScale, &t.Seed, &t.Status, &t.ImageURL, &t.ErrorMessage,
		&t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan generation task: %w", err)
	}
	return t, nil
}
