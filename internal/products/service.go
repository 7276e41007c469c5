package products

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type Service struct {
	repo *ProductRepository
}

func NewService(repo *ProductRepository) *Service {
	return &Service{repo: repo}
}

type ProductInput struct {
	Name      *string          `json:"name"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Colour    *string          `json:"colour"`
	Brand     *string          `json:"brand"`
	Size      *string          `json:"size"`
	Rating    *int             `json:"rating"`
}

// apply copies the present fields onto p and reports field problems.
func (in ProductInput) apply(p *domain.Product, creating bool) error {
	fields := map[string]string{}

	switch {
	case in.Name != nil && strings.TrimSpace(*in.Name) != "":
		p.Name = strings.TrimSpace(*in.Name)
	case in.Name != nil || creating:
		fields["name"] = "name is required"
	}

	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			fields["unit_price"] = "unit price must not be negative"
		} else {
			p.UnitPrice = in.UnitPrice.Round(2)
		}
	}
	if in.Colour != nil {
		p.Colour = strings.TrimSpace(*in.Colour)
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Size != nil {
		p.Size = strings.TrimSpace(*in.Size)
	}
	if in.Rating != nil {
		switch {
		case *in.Rating < 0:
			fields["rating"] = "rating must not be negative"
		case *in.Rating > math.MaxInt32:
			fields["rating"] = fmt.Sprintf("rating must be at most %d", math.MaxInt32)
		default:
			rating := *in.Rating
			p.Rating = &rating
		}
	}

	return domain.Invalid(fields)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := &domain.Product{UnitPrice: decimal.Zero}
	if err := in.apply(p, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.BadRequest("product %q already exists", p.Name)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("product not found")
	}
	return p, nil
}

// Update never touches order lines: their unit price was frozen when the
// order was placed.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p, false); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.BadRequest("product %q already exists", p.Name)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("product not found")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) ByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	return s.repo.ListByBrand(ctx, brand)
}

func (s *Service) ByColour(ctx context.Context, colour string) ([]domain.Product, error) {
	return s.repo.ListByColour(ctx, colour)
}

func (s *Service) ByPriceRange(ctx context.Context, minRaw, maxRaw string) ([]domain.Product, error) {
	min, errMin := decimal.NewFromString(minRaw)
	max, errMax := decimal.NewFromString(maxRaw)
	if errMin != nil || errMax != nil {
		return nil, domain.BadRequest("min and max must be decimal numbers")
	}
	if min.IsNegative() || max.IsNegative() || min.GreaterThan(max) {
		return nil, domain.BadRequest("invalid price range")
	}
	return s.repo.ListByPriceBetween(ctx, min, max)
}
