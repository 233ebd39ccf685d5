package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// SalesRepository stores dated sales rows taken from uploaded files.
type SalesRepository struct {
	db *sqlx.DB
}

// NewSalesRepository creates a new SalesRepository.
func NewSalesRepository(db *sqlx.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// ReplaceFileSales deletes the rows previously stored for the file and
// inserts records, in one transaction.
func (r *SalesRepository) ReplaceFileSales(ctx context.Context, shopkeeperID uuid.UUID, sha256 string, records []models.SaleRecord) error {
	const insert = `
        INSERT INTO sales_records (shopkeeper_id, file_sha256, product_id, product_name, sale_date, quantity)
        VALUES (:shopkeeper_id, :file_sha256, :product_id, :product_name, :sale_date, :quantity)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales_records WHERE shopkeeper_id = $1 AND file_sha256 = $2`, shopkeeperID, sha256); err != nil {
		return err
	}
	if len(records) > 0 {
		if _, err := tx.NamedExecContext(ctx, insert, records); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListSales returns a shopkeeper's rows with from <= sale_date < to.
func (r *SalesRepository) ListSales(ctx context.Context, shopkeeperID uuid.UUID, from, to time.Time) ([]models.SaleRecord, error) {
	const q = `
        SELECT shopkeeper_id, file_sha256, product_id, product_name, sale_date, quantity
        FROM sales_records
        WHERE shopkeeper_id = $1 AND sale_date >= $2 AND sale_date < $3
        ORDER BY sale_date`

	records := []models.SaleRecord{}
	if err := r.db.SelectContext(ctx, &records, q, shopkeeperID, from, to); err != nil {
		return nil, err
	}
	return records, nil
}

