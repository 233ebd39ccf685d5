package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which side of the marketplace an account belongs to.
type Role string

const (
	RoleShopkeeper Role = "shopkeeper"
	RoleDealer     Role = "dealer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleShopkeeper || r == RoleDealer
}

// LoginPath is the front-end route an anonymous visitor is sent to.
func (r Role) LoginPath() string {
	return "/" + string(r) + "/login"
}

// Shopkeeper is a retail account that uploads sales data and manages stock.
type Shopkeeper struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	ShopName          string     `db:"shop_name" json:"shopName"`
	LocationName      string     `db:"location_name" json:"locationName"`
	Latitude          float64    `db:"latitude" json:"latitude"`
	Longitude         float64    `db:"longitude" json:"longitude"`
	Domain            string     `db:"domain" json:"domain"`
	ConnectedDealerID *uuid.UUID `db:"connected_dealer_id" json:"connectedDealerId,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// Dealer is a supplier account that shopkeepers connect to.
type Dealer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CompanyName  string    `db:"company_name" json:"companyName"`
	LocationName string    `db:"location_name" json:"locationName"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	Phone        string    `db:"phone" json:"phone"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NearbyDealer is a dealer annotated with its distance from a shopkeeper.
type NearbyDealer struct {
	Dealer
	DistanceKm float64 `json:"distance"`
}

// SignupRequest carries the fields of both signup forms; role-specific
// fields are ignored for the other role.
type SignupRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Email           string  `json:"email" validate:"required,email,max=255"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
	LocationName    string  `json:"locationName" validate:"required,min=5,max=255"`
	Latitude        float64 `json:"latitude" validate:"latitude"`
	Longitude       float64 `json:"longitude" validate:"longitude"`

	ShopName string `json:"shopName"`
	Domain   string `json:"domain"`

	CompanyName string `json:"companyName"`
	Phone       string `json:"phone"`
}

// LoginRequest is the payload of both login forms.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
