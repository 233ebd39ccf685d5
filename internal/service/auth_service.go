package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// AccountStore is the persistence signup and login need.
type AccountStore interface {
	CreateShopkeeper(ctx context.Context, s *models.Shopkeeper) error
	CreateDealer(ctx context.Context, d *models.Dealer) error
	GetShopkeeperByID(ctx context.Context, id uuid.UUID) (*models.Shopkeeper, error)
	GetShopkeeperByEmail(ctx context.Context, email string) (*models.Shopkeeper, error)
	GetDealerByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
	Account interface{}    `json:"account"`
}

// AuthService handles shopkeeper and dealer accounts.
type AuthService struct {
	store      AccountStore
	validate   *validator.Validate
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(store AccountStore) *AuthService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AuthService{store: store, validate: v, bcryptCost: bcrypt.DefaultCost}
}

// Signup validates the form for role, stores the account and signs it in.
func (s *AuthService) Signup(ctx context.Context, role models.Role, req *models.SignupRequest) (*AuthResult, error) {
	if !role.Valid() {
		return nil, utils.ErrInvalidRole
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.LocationName = strings.TrimSpace(req.LocationName)

	if err := s.validateSignup(role, req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var (
		id      uuid.UUID
		account interface{}
	)
	switch role {
	case models.RoleShopkeeper:
		sk := &models.Shopkeeper{
			ID:           uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			ShopName:     strings.TrimSpace(req.ShopName),
			LocationName: req.LocationName,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			Domain:       strings.TrimSpace(req.Domain),
		}
		if err := s.store.CreateShopkeeper(ctx, sk); err != nil {
			return nil, err
		}
		id, account = sk.ID, sk
	case models.RoleDealer:
		d := &models.Dealer{
			ID:           uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			CompanyName:  strings.TrimSpace(req.CompanyName),
			LocationName: req.LocationName,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			Phone:        strings.TrimSpace(req.Phone),
		}
		if err := s.store.CreateDealer(ctx, d); err != nil {
			return nil, err
		}
		id, account = d.ID, d
	}

	log.Info().Str("role", string(role)).Str("account_id", id.String()).Msg("account created")
	return s.issue(id, role, req.Name, account)
}

func (s *AuthService) validateSignup(role models.Role, req *models.SignupRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	switch role {
	case models.RoleShopkeeper:
		if err := s.validate.Var(strings.TrimSpace(req.ShopName), "required,min=2,max=150"); err != nil {
			return &utils.ValidationError{Field: "shopName", Message: "must be at least 2 characters"}
		}
		if err := s.validate.Var(strings.TrimSpace(req.Domain), "required"); err != nil {
			return &utils.ValidationError{Field: "domain", Message: "is required"}
		}
	case models.RoleDealer:
		if err := s.validate.Var(strings.TrimSpace(req.CompanyName), "required,min=2,max=150"); err != nil {
			return &utils.ValidationError{Field: "companyName", Message: "must be at least 2 characters"}
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must be at least " + fe.Param() + " characters"
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "email":
		msg = "must be a valid email address"
	case "eqfield":
		msg = "passwords do not match"
	case "latitude", "longitude":
		msg = "must be a valid coordinate"
	}
	return &utils.ValidationError{Field: fe.Field(), Message: msg}
}

// Login verifies credentials for role and issues a token.
func (s *AuthService) Login(ctx context.Context, role models.Role, email, password string) (*AuthResult, error) {
	if !role.Valid() {
		return nil, utils.ErrInvalidRole
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		id      uuid.UUID
		name    string
		hash    string
		account interface{}
	)
	switch role {
	case models.RoleShopkeeper:
		sk, err := s.store.GetShopkeeperByEmail(ctx, email)
		if err != nil {
			return nil, s.loginLookupError(err, role, email)
		}
		id, name, hash, account = sk.ID, sk.Name, sk.PasswordHash, sk
	case models.RoleDealer:
		d, err := s.store.GetDealerByEmail(ctx, email)
		if err != nil {
			return nil, s.loginLookupError(err, role, email)
		}
		id, name, hash, account = d.ID, d.Name, d.PasswordHash, d
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		log.Warn().Str("role", string(role)).Str("email", email).Msg("password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	log.Info().Str("role", string(role)).Str("account_id", id.String()).Msg("login successful")
	return s.issue(id, role, name, account)
}

func (s *AuthService) loginLookupError(err error, role models.Role, email string) error {
	if errors.Is(err, utils.ErrAccountNotFound) {
		log.Warn().Str("role", string(role)).Str("email", email).Msg("login for unknown account")
		return utils.ErrInvalidCredentials
	}
	return err
}

// Profile returns the account behind an authenticated session.
func (s *AuthService) Profile(ctx context.Context, session models.Session) (interface{}, error) {
	switch {
	case session.HasRole(models.RoleShopkeeper):
		return s.store.GetShopkeeperByID(ctx, session.AccountID)
	case session.HasRole(models.RoleDealer):
		return s.store.GetDealerByID(ctx, session.AccountID)
	default:
		return nil, utils.ErrInvalidToken
	}
}

func (s *AuthService) issue(id uuid.UUID, role models.Role, name string, account interface{}) (*AuthResult, error) {
	token, err := utils.GenerateJWT(id, role, name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		Session: models.Session{
			Kind:      models.SessionAuthenticated,
			AccountID: id,
			Role:      role,
			Name:      name,
		},
		Account: account,
	}, nil
}
