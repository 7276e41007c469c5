package stores

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

func TestValidateStore(t *testing.T) {
	lat := decimal.RequireFromString("91.5")
	lng := decimal.RequireFromString("-122.4194")

	st := &domain.Store{Name: "  Downtown  ", Longitude: &lng}
	if err := validateStore(st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Name != "Downtown" {
		t.Errorf("expected trimmed name, got %q", st.Name)
	}

	err := validateStore(&domain.Store{Latitude: &lat})
	de, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Fields["name"] == "" || de.Fields["latitude"] == "" {
		t.Errorf("expected name and latitude errors, got %v", de.Fields)
	}
}
