package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

type Service struct {
	repo *StoreRepository
}

func NewService(repo *StoreRepository) *Service {
	return &Service{repo: repo}
}

func validateStore(s *domain.Store) error {
	fields := map[string]string{}
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		fields["name"] = "name is required"
	}
	if s.Latitude != nil && s.Latitude.Abs().GreaterThan(maxLatitude) {
		fields["latitude"] = "latitude must be between -90 and 90"
	}
	if s.Longitude != nil && s.Longitude.Abs().GreaterThan(maxLongitude) {
		fields["longitude"] = "longitude must be between -180 and 180"
	}
	return domain.Invalid(fields)
}

func (s *Service) Create(ctx context.Context, st *domain.Store) (*domain.Store, error) {
	if err := validateStore(st); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return st, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	if st == nil {
		return nil, domain.NotFound("store not found")
	}
	return st, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Store, error) {
	return s.repo.List(ctx)
}
