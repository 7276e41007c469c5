package shipments

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type Service struct {
	db   *sql.DB
	repo *ShipmentRepository
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:   db,
		repo: NewShipmentRepository(db),
	}
}

type ShipmentInput struct {
	StoreID         int64  `json:"store_id"`
	CustomerID      int64  `json:"customer_id"`
	DeliveryAddress string `json:"delivery_address"`
	Status          string `json:"status"`
}

// toShipment validates in and defaults a missing status to PENDING.
func (in ShipmentInput) toShipment() (*domain.Shipment, error) {
	fields := map[string]string{}
	if in.StoreID <= 0 {
		fields["store_id"] = "store_id is required"
	}
	if in.CustomerID <= 0 {
		fields["customer_id"] = "customer_id is required"
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		fields["delivery_address"] = "delivery_address is required"
	}

	status := domain.ShipmentStatusPending
	if in.Status != "" {
		st, err := domain.ParseShipmentStatus(in.Status)
		if err != nil {
			fields["status"] = "unknown shipment status"
		}
		status = st
	}

	if err := domain.Invalid(fields); err != nil {
		return nil, err
	}

	return &domain.Shipment{
		StoreID:         in.StoreID,
		CustomerID:      in.CustomerID,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		Status:          status,
	}, nil
}

func (s *Service) Create(ctx context.Context, in ShipmentInput) (*domain.Shipment, error) {
	shipment, err := in.toShipment()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, domain.NotFound("store or customer not found")
		}
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return shipment, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Shipment, error) {
	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.NotFound("shipment not found")
	}
	return shipment, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Shipment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ByCustomer(ctx context.Context, customerID int64) ([]domain.Shipment, error) {
	out, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list shipments by customer: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no shipments for customer %d", customerID)
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Shipment, error) {
	st, err := domain.ParseShipmentStatus(status)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, fmt.Errorf("update shipment status: %w", err)
	}
	if !ok {
		return nil, domain.NotFound("shipment not found")
	}
	return s.Get(ctx, id)
}

type AssignInput struct {
	OrderID     int64   `json:"order_id"`
	LineItemIDs []int64 `json:"line_item_ids"`
}

type Assignment struct {
	ShipmentID  int64   `json:"shipment_id"`
	OrderID     int64   `json:"order_id"`
	LineItemIDs []int64 `json:"line_item_ids"`
}

func (in AssignInput) normalize() ([]int64, error) {
	fields := map[string]string{}
	if in.OrderID <= 0 {
		fields["order_id"] = "order_id is required"
	}
	if len(in.LineItemIDs) == 0 {
		fields["line_item_ids"] = "at least one line item is required"
	}
	for _, id := range in.LineItemIDs {
		if id <= 0 {
			fields["line_item_ids"] = "line item ids must be positive"
			break
		}
	}
	if err := domain.Invalid(fields); err != nil {
		return nil, err
	}

	ids := slices.Clone(in.LineItemIDs)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// AssignItems attaches order lines to a shipment going to the same customer
// from the same store. Either every requested line is assigned or none is.
func (s *Service) AssignItems(ctx context.Context, shipmentID int64, in AssignInput) (*Assignment, error) {
	lineIDs, err := in.normalize()
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := NewShipmentRepository(tx)

		shipment, err := repo.GetByID(ctx, shipmentID)
		if err != nil {
			return fmt.Errorf("get shipment: %w", err)
		}
		if shipment == nil {
			return domain.NotFound("shipment not found")
		}

		customerID, storeID, ok, err := repo.OrderParties(ctx, in.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if !ok {
			return domain.NotFound("order not found")
		}
		if customerID != shipment.CustomerID || storeID != shipment.StoreID {
			return domain.BadRequest("order %d is not for the shipment's customer and store", in.OrderID)
		}

		n, err := repo.AssignItems(ctx, shipment.ID, in.OrderID, lineIDs)
		if err != nil {
			return fmt.Errorf("assign order items: %w", err)
		}
		if n != int64(len(lineIDs)) {
			return domain.NotFound("order %d does not have all of line items %v", in.OrderID, lineIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Assignment{ShipmentID: shipmentID, OrderID: in.OrderID, LineItemIDs: lineIDs}, nil
}
