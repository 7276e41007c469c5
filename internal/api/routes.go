package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-orders/internal/customers"
	"github.com/joao-fontenele/storefront-orders/internal/inventory"
	"github.com/joao-fontenele/storefront-orders/internal/orders"
	"github.com/joao-fontenele/storefront-orders/internal/products"
	"github.com/joao-fontenele/storefront-orders/internal/reports"
	"github.com/joao-fontenele/storefront-orders/internal/shipments"
	"github.com/joao-fontenele/storefront-orders/internal/stores"
	"github.com/joao-fontenele/storefront-orders/internal/telemetry"
)

type Handlers struct {
	Customers *customers.Handler
	Products  *products.Handler
	Stores    *stores.Handler
	Inventory *inventory.Handler
	Orders    *orders.Handler
	Reports   *reports.Handler
	Shipments *shipments.Handler
	Health    *HealthHandler
}

// NewHandlers wires every feature package against db. The workflow is built
// by the caller so it can carry the event publisher and metrics.
func NewHandlers(db *sql.DB, workflow *orders.Workflow, logger *slog.Logger) *Handlers {
	return &Handlers{
		Customers: customers.NewHandler(customers.NewService(customers.NewCustomerRepository(db)), logger),
		Products:  products.NewHandler(products.NewService(products.NewProductRepository(db)), logger),
		Stores:    stores.NewHandler(stores.NewService(stores.NewStoreRepository(db)), logger),
		Inventory: inventory.NewHandler(inventory.NewService(inventory.NewInventoryRepository(db)), logger),
		Orders:    orders.NewHandler(workflow, logger),
		Reports: reports.NewHandler(
			reports.NewService(reports.NewReportRepository(db), orders.NewOrderRepository(db)),
			logger,
		),
		Shipments: shipments.NewHandler(shipments.NewService(db), logger),
		Health:    NewHealthHandler(db, logger),
	}
}

// NewRouter registers the public API under /api/v1 plus the operational
// endpoints. metrics may be nil.
func NewRouter(h *Handlers, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(fn))
	}

	route("POST /api/v1/orders", h.Orders.HandleCreate)
	route("GET /api/v1/orders/{id}", h.Orders.HandleGet)
	route("GET /api/v1/orders/details/{id}", h.Orders.HandleDetails)
	route("POST /api/v1/orders/{id}/cancel", h.Orders.HandleCancel)
	route("PATCH /api/v1/orders/{id}/status", h.Orders.HandleUpdateStatus)
	route("GET /api/v1/orders/status", h.Reports.HandleOrderStatusCounts)
	route("GET /api/v1/orders/status/{status}", h.Reports.HandleOrdersByStatus)
	route("GET /api/v1/orders/customer/{id}", h.Reports.HandleOrdersByCustomer)
	route("GET /api/v1/orders/store/{name}", h.Reports.HandleOrdersByStore)
	route("GET /api/v1/orders/date/{start}/{end}", h.Reports.HandleOrdersInDateRange)

	route("GET /api/v1/customers", h.Customers.HandleList)
	route("POST /api/v1/customers", h.Customers.HandleCreate)
	route("GET /api/v1/customers/{id}", h.Customers.HandleGet)
	route("PUT /api/v1/customers/{id}", h.Customers.HandleUpdate)
	route("GET /api/v1/customers/email/{email}", h.Customers.HandleByEmail)
	route("GET /api/v1/customers/name/{name}", h.Customers.HandleByName)
	route("GET /api/v1/customers/shipment/status", h.Reports.HandleShipmentStatusCustomerCounts)
	route("GET /api/v1/customers/shipments/{status}", h.Reports.HandleCustomersByShipmentStatus)
	route("GET /api/v1/customers/orders/completed", h.Reports.HandleCustomersWithCompletedOrders)
	route("GET /api/v1/customers/orders/quantity/{min}/{max}", h.Reports.HandleCustomersByQuantity)

	route("GET /api/v1/products", h.Products.HandleList)
	route("POST /api/v1/products", h.Products.HandleCreate)
	route("GET /api/v1/products/{id}", h.Products.HandleGet)
	route("PUT /api/v1/products/{id}", h.Products.HandleUpdate)
	route("GET /api/v1/products/brand/{brand}", h.Products.HandleByBrand)
	route("GET /api/v1/products/colour/{colour}", h.Products.HandleByColour)
	route("GET /api/v1/products/unitprice", h.Products.HandleByPrice)

	route("GET /api/v1/stores", h.Stores.HandleList)
	route("POST /api/v1/stores", h.Stores.HandleCreate)
	route("GET /api/v1/stores/{id}", h.Stores.HandleGet)

	route("GET /api/v1/inventory", h.Inventory.HandleListStock)
	route("POST /api/v1/inventory", h.Inventory.HandleSetStock)
	route("GET /api/v1/inventory/product/{productId}/store/{storeId}", h.Inventory.HandleGetStock)

	route("GET /api/v1/shipments", h.Shipments.HandleList)
	route("POST /api/v1/shipments", h.Shipments.HandleCreate)
	route("GET /api/v1/shipments/sold", h.Reports.HandleTotalSoldByShipmentStatus)
	route("GET /api/v1/shipments/{id}", h.Shipments.HandleGet)
	route("PATCH /api/v1/shipments/{id}/status", h.Shipments.HandleUpdateStatus)
	route("POST /api/v1/shipments/{id}/items", h.Shipments.HandleAssignItems)

	mux.HandleFunc("GET /healthz", h.Health.HandleHealth)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return mux
}
