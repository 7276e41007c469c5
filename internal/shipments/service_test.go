package shipments

import (
	"slices"
	"testing"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

func TestShipmentInput(t *testing.T) {
	tests := []struct {
		name       string
		in         ShipmentInput
		wantStatus domain.ShipmentStatus
		wantFields []string
	}{
		{"defaults to pending", ShipmentInput{StoreID: 1, CustomerID: 2, DeliveryAddress: "1 Main St"}, domain.ShipmentStatusPending, nil},
		{"explicit status", ShipmentInput{StoreID: 1, CustomerID: 2, DeliveryAddress: "1 Main St", Status: "shipped"}, domain.ShipmentStatusShipped, nil},
		{"unknown status", ShipmentInput{StoreID: 1, CustomerID: 2, DeliveryAddress: "1 Main St", Status: "lost"}, "", []string{"status"}},
		{"missing everything", ShipmentInput{DeliveryAddress: "  "}, "", []string{"store_id", "customer_id", "delivery_address"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.in.toShipment()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.Status != tt.wantStatus {
					t.Errorf("expected status %s, got %s", tt.wantStatus, s.Status)
				}
				return
			}

			de, ok := err.(*domain.Error)
			if !ok || de.Kind != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(de.Fields) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %v", tt.wantFields, de.Fields)
			}
			for _, f := range tt.wantFields {
				if _, ok := de.Fields[f]; !ok {
					t.Errorf("expected field %s in %v", f, de.Fields)
				}
			}
		})
	}
}

func TestAssignInputNormalize(t *testing.T) {
	ids, err := AssignInput{OrderID: 3, LineItemIDs: []int64{3, 1, 3, 2}}.normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal([]int64{1, 2, 3}, ids) {
		t.Errorf("expected sorted unique ids [1 2 3], got %v", ids)
	}

	invalid := map[string]AssignInput{
		"no line items":     {OrderID: 3},
		"non-positive line": {OrderID: 3, LineItemIDs: []int64{1, 0}},
		"missing order":     {LineItemIDs: []int64{1}},
	}
	for name, in := range invalid {
		if _, err := in.normalize(); !domain.IsBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", name, err)
		}
	}
}
