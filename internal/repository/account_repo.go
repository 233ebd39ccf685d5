package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// AccountRepository handles data access for shopkeepers and dealers.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const shopkeeperColumns = `id, name, email, password_hash, shop_name, location_name, latitude, longitude, domain, connected_dealer_id, created_at, updated_at`
const dealerColumns = `id, name, email, password_hash, company_name, location_name, latitude, longitude, phone, created_at, updated_at`

// CreateShopkeeper inserts a shopkeeper. A duplicate email yields utils.ErrEmailTaken.
func (r *AccountRepository) CreateShopkeeper(ctx context.Context, s *models.Shopkeeper) error {
	const q = `
        INSERT INTO shopkeepers (id, name, email, password_hash, shop_name, location_name, latitude, longitude, domain)
        VALUES (:id, :name, :email, :password_hash, :shop_name, :location_name, :latitude, :longitude, :domain)
        RETURNING created_at, updated_at`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return r.insert(ctx, q, s, &s.CreatedAt, &s.UpdatedAt)
}

// CreateDealer inserts a dealer. A duplicate email yields utils.ErrEmailTaken.
func (r *AccountRepository) CreateDealer(ctx context.Context, d *models.Dealer) error {
	const q = `
        INSERT INTO dealers (id, name, email, password_hash, company_name, location_name, latitude, longitude, phone)
        VALUES (:id, :name, :email, :password_hash, :company_name, :location_name, :latitude, :longitude, :phone)
        RETURNING created_at, updated_at`
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.insert(ctx, q, d, &d.CreatedAt, &d.UpdatedAt)
}

func (r *AccountRepository) insert(ctx context.Context, q string, arg interface{}, dest ...interface{}) error {
	rows, err := r.db.NamedQueryContext(ctx, q, arg)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrEmailTaken
		}
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(dest...)
	}
	return rows.Err()
}

// GetShopkeeperByID returns a shopkeeper or utils.ErrAccountNotFound.
func (r *AccountRepository) GetShopkeeperByID(ctx context.Context, id uuid.UUID) (*models.Shopkeeper, error) {
	var s models.Shopkeeper
	err := r.db.GetContext(ctx, &s, `SELECT `+shopkeeperColumns+` FROM shopkeepers WHERE id = $1`, id)
	return notFound(&s, err)
}

// GetShopkeeperByEmail returns a shopkeeper or utils.ErrAccountNotFound.
func (r *AccountRepository) GetShopkeeperByEmail(ctx context.Context, email string) (*models.Shopkeeper, error) {
	var s models.Shopkeeper
	err := r.db.GetContext(ctx, &s, `SELECT `+shopkeeperColumns+` FROM shopkeepers WHERE LOWER(email) = LOWER($1)`, email)
	return notFound(&s, err)
}

// GetDealerByID returns a dealer or utils.ErrDealerNotFound.
func (r *AccountRepository) GetDealerByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var d models.Dealer
	err := r.db.GetContext(ctx, &d, `SELECT `+dealerColumns+` FROM dealers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrDealerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDealerByEmail returns a dealer or utils.ErrAccountNotFound.
func (r *AccountRepository) GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error) {
	var d models.Dealer
	err := r.db.GetContext(ctx, &d, `SELECT `+dealerColumns+` FROM dealers WHERE LOWER(email) = LOWER($1)`, email)
	return notFound(&d, err)
}

// ListDealers returns every dealer.
func (r *AccountRepository) ListDealers(ctx context.Context) ([]models.Dealer, error) {
	dealers := []models.Dealer{}
	if err := r.db.SelectContext(ctx, &dealers, `SELECT `+dealerColumns+` FROM dealers ORDER BY company_name`); err != nil {
		return nil, err
	}
	return dealers, nil
}

// SetConnectedDealer links a shopkeeper to a dealer.
func (r *AccountRepository) SetConnectedDealer(ctx context.Context, shopkeeperID, dealerID uuid.UUID) error {
	const q = `UPDATE shopkeepers SET connected_dealer_id = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, dealerID, shopkeeperID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrAccountNotFound
	}
	return nil
}

// ListShopkeepersByDealer returns the shopkeepers connected to a dealer.
func (r *AccountRepository) ListShopkeepersByDealer(ctx context.Context, dealerID uuid.UUID) ([]models.Shopkeeper, error) {
	shops := []models.Shopkeeper{}
	err := r.db.SelectContext(ctx, &shops, `SELECT `+shopkeeperColumns+` FROM shopkeepers WHERE connected_dealer_id = $1 ORDER BY shop_name`, dealerID)
	if err != nil {
		return nil, err
	}
	return shops, nil
}

func notFound[T any](v *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
