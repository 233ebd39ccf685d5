package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// PredictionRunRepository stores the history of completed predictions.
type PredictionRunRepository struct {
	db *sqlx.DB
}

// NewPredictionRunRepository creates a new PredictionRunRepository.
func NewPredictionRunRepository(db *sqlx.DB) *PredictionRunRepository {
	return &PredictionRunRepository{db: db}
}

// Record inserts a prediction run.
func (r *PredictionRunRepository) Record(ctx context.Context, run *models.PredictionRun) error {
	const q = `
        INSERT INTO prediction_runs (id, shopkeeper_id, slot_id, file_name, file_sha256, predictor, predictions, average_demand, created_at)
        VALUES (:id, :shopkeeper_id, :slot_id, :file_name, :file_sha256, :predictor, :predictions, :average_demand, :created_at)`

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := r.db.NamedExecContext(ctx, q, run)
	return err
}

// ListByOwner returns a page of a shopkeeper's runs, newest first, and the total count.
func (r *PredictionRunRepository) ListByOwner(ctx context.Context, shopkeeperID uuid.UUID, page, limit int) ([]models.PredictionRun, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM prediction_runs WHERE shopkeeper_id = $1`, shopkeeperID); err != nil {
		return nil, 0, err
	}

	const q = `
        SELECT id, shopkeeper_id, slot_id, file_name, file_sha256, predictor, predictions, average_demand, created_at
        FROM prediction_runs
        WHERE shopkeeper_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	runs := []models.PredictionRun{}
	if err := r.db.SelectContext(ctx, &runs, q, shopkeeperID, limit, (page-1)*limit); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// CountByOwnerBetween counts a shopkeeper's runs with from <= created_at < to.
func (r *PredictionRunRepository) CountByOwnerBetween(ctx context.Context, shopkeeperID uuid.UUID, from, to time.Time) (int, error) {
	const q = `
        SELECT COUNT(1) FROM prediction_runs
        WHERE shopkeeper_id = $1 AND created_at >= $2 AND created_at < $3`

	var n int
	err := r.db.GetContext(ctx, &n, q, shopkeeperID, from, to)
	return n, err
}

// DeleteOlderThan removes runs created before cutoff and returns how many were deleted.
func (r *PredictionRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prediction_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
