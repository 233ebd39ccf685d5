package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// memAccountStore is an in-memory account store shared by the auth and dealer tests.
type memAccountStore struct {
	mu          sync.Mutex
	shopkeepers map[uuid.UUID]*models.Shopkeeper
	dealers     map[uuid.UUID]*models.Dealer
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{
		shopkeepers: make(map[uuid.UUID]*models.Shopkeeper),
		dealers:     make(map[uuid.UUID]*models.Dealer),
	}
}

func (s *memAccountStore) emailTaken(email string) bool {
	for _, sk := range s.shopkeepers {
		if strings.EqualFold(sk.Email, email) {
			return true
		}
	}
	for _, d := range s.dealers {
		if strings.EqualFold(d.Email, email) {
			return true
		}
	}
	return false
}

func (s *memAccountStore) CreateShopkeeper(ctx context.Context, sk *models.Shopkeeper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(sk.Email) {
		return utils.ErrEmailTaken
	}
	if sk.ID == uuid.Nil {
		sk.ID = uuid.New()
	}
	cp := *sk
	s.shopkeepers[sk.ID] = &cp
	return nil
}

func (s *memAccountStore) CreateDealer(ctx context.Context, d *models.Dealer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(d.Email) {
		return utils.ErrEmailTaken
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	s.dealers[d.ID] = &cp
	return nil
}

func (s *memAccountStore) GetShopkeeperByID(ctx context.Context, id uuid.UUID) (*models.Shopkeeper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.shopkeepers[id]
	if !ok {
		return nil, utils.ErrAccountNotFound
	}
	cp := *sk
	return &cp, nil
}

func (s *memAccountStore) GetShopkeeperByEmail(ctx context.Context, email string) (*models.Shopkeeper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sk := range s.shopkeepers {
		if strings.EqualFold(sk.Email, email) {
			cp := *sk
			return &cp, nil
		}
	}
	return nil, utils.ErrAccountNotFound
}

func (s *memAccountStore) GetDealerByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dealers[id]
	if !ok {
		return nil, utils.ErrDealerNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *memAccountStore) GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dealers {
		if strings.EqualFold(d.Email, email) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, utils.ErrAccountNotFound
}

func (s *memAccountStore) ListDealers(ctx context.Context) ([]models.Dealer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Dealer{}
	for _, d := range s.dealers {
		out = append(out, *d)
	}
	return out, nil
}

func (s *memAccountStore) SetConnectedDealer(ctx context.Context, shopkeeperID, dealerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.shopkeepers[shopkeeperID]
	if !ok {
		return utils.ErrAccountNotFound
	}
	id := dealerID
	sk.ConnectedDealerID = &id
	return nil
}

func (s *memAccountStore) ListShopkeepersByDealer(ctx context.Context, dealerID uuid.UUID) ([]models.Shopkeeper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Shopkeeper{}
	for _, sk := range s.shopkeepers {
		if sk.ConnectedDealerID != nil && *sk.ConnectedDealerID == dealerID {
			out = append(out, *sk)
		}
	}
	return out, nil
}
