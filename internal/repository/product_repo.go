package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// ProductRepository handles data access for shopkeeper products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns a shopkeeper's products. When search is non-empty only
// products whose name or category contains it (case-insensitive) are returned.
func (r *ProductRepository) List(ctx context.Context, shopkeeperID uuid.UUID, search string) ([]models.Product, error) {
	const q = `
        SELECT id, shopkeeper_id, sku, name, category, stock, predicted_demand, price, created_at, updated_at
        FROM products
        WHERE shopkeeper_id = $1
        AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR category ILIKE '%' || $2 || '%')
        ORDER BY name`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q, shopkeeperID, search); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns one product owned by the shopkeeper.
func (r *ProductRepository) GetByID(ctx context.Context, shopkeeperID, id uuid.UUID) (*models.Product, error) {
	const q = `
        SELECT id, shopkeeper_id, sku, name, category, stock, predicted_demand, price, created_at, updated_at
        FROM products WHERE id = $1 AND shopkeeper_id = $2`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id, shopkeeperID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a product and fills its generated fields.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (id, shopkeeper_id, sku, name, category, stock, predicted_demand, price)
        VALUES (:id, :shopkeeper_id, :sku, :name, :category, :stock, :predicted_demand, :price)
        RETURNING created_at, updated_at`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	rows, err := r.db.NamedQueryContext(ctx, q, p)
	if err != nil {
		if isUniqueViolation(err) {
			return &utils.ValidationError{Field: "sku", Message: "already exists"}
		}
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&p.CreatedAt, &p.UpdatedAt)
	}
	return rows.Err()
}

// Update writes the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products
        SET name = $1, category = $2, stock = $3, predicted_demand = $4, price = $5, updated_at = NOW()
        WHERE id = $6 AND shopkeeper_id = $7
        RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, q, p.Name, p.Category, p.Stock, p.PredictedDemand, p.Price, p.ID, p.ShopkeeperID).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrProductNotFound
	}
	return err
}

// ApplyPredictedDemand writes each prediction's demand onto the product whose
// SKU equals its product id, in one transaction. It returns the SKUs that
// matched a product. Any failure rolls back every write in the batch.
func (r *ProductRepository) ApplyPredictedDemand(ctx context.Context, shopkeeperID uuid.UUID, predictions []models.Prediction) ([]string, error) {
	const q = `
        UPDATE products SET predicted_demand = $1, updated_at = NOW()
        WHERE shopkeeper_id = $2 AND sku = $3`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	matched := []string{}
	for _, pred := range predictions {
		res, err := tx.ExecContext(ctx, q, pred.PredictedDemand, shopkeeperID, pred.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to update sku %s: %w", pred.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			matched = append(matched, pred.ProductID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return matched, nil
}
