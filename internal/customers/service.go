package customers

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type Service struct {
	repo *CustomerRepository
}

func NewService(repo *CustomerRepository) *Service {
	return &Service{repo: repo}
}

type CustomerInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// normalizeEmail lower-cases addresses so uniqueness and lookups ignore case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateCreate(in CustomerInput) error {
	fields := map[string]string{}
	switch {
	case in.Email == nil || strings.TrimSpace(*in.Email) == "":
		fields["email"] = "email is required"
	case !validEmail(strings.TrimSpace(*in.Email)):
		fields["email"] = "invalid email format"
	}
	if in.FullName == nil || strings.TrimSpace(*in.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	return domain.Invalid(fields)
}

func (s *Service) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	c := &domain.Customer{
		Email:    normalizeEmail(*in.Email),
		FullName: strings.TrimSpace(*in.FullName),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.BadRequest("customer with email %s already exists", c.Email)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return nil, domain.NotFound("customer not found")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

// Update applies only the fields present in the input.
func (s *Service) Update(ctx context.Context, id int64, in CustomerInput) (*domain.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !validEmail(email) {
			return nil, domain.Invalid(map[string]string{"email": "invalid email format"})
		}
		c.Email = email
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, domain.Invalid(map[string]string{"full_name": "full name must not be blank"})
		}
		c.FullName = name
	}

	ok, err := s.repo.Update(ctx, c)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.BadRequest("customer with email %s already exists", c.Email)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("customer not found")
	}
	return c, nil
}

func (s *Service) ByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	if c == nil {
		return nil, domain.NotFound("customer with the provided email not found")
	}
	return c, nil
}

func (s *Service) ByName(ctx context.Context, fragment string) ([]domain.Customer, error) {
	out, err := s.repo.SearchByName(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no customer matches the provided name")
	}
	return out, nil
}
