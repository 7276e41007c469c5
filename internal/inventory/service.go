package inventory

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type Service struct {
	repo *InventoryRepository
}

func NewService(repo *InventoryRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Inventory, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ByStore(ctx context.Context, storeID int64) ([]domain.Inventory, error) {
	items, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list inventory by store: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.NotFound("inventory records for store %d not found", storeID)
	}
	return items, nil
}

func (s *Service) ByProductAndStore(ctx context.Context, productID, storeID int64) (*domain.Inventory, error) {
	inv, err := s.repo.GetStock(ctx, storeID, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("inventory record for product %d in store %d not found", productID, storeID)
	}
	return inv, nil
}

type StockInput struct {
	StoreID   int64 `json:"store_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (s *Service) SetStock(ctx context.Context, in StockInput) (*domain.Inventory, error) {
	fields := map[string]string{}
	if in.StoreID <= 0 {
		fields["store_id"] = "store_id is required"
	}
	if in.ProductID <= 0 {
		fields["product_id"] = "product_id is required"
	}
	switch {
	case in.Quantity < 0:
		fields["quantity"] = "quantity must not be negative"
	case in.Quantity > domain.MaxQuantity:
		fields["quantity"] = fmt.Sprintf("quantity must be at most %d", domain.MaxQuantity)
	}
	if err := domain.Invalid(fields); err != nil {
		return nil, err
	}

	inv := &domain.Inventory{StoreID: in.StoreID, ProductID: in.ProductID, Quantity: in.Quantity}
	if err := s.repo.SetStock(ctx, inv); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, domain.NotFound("store or product not found")
		}
		return nil, fmt.Errorf("set stock: %w", err)
	}
	return inv, nil
}
