package orders

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/storefront-orders/internal/customers"
	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/inventory"
	"github.com/joao-fontenele/storefront-orders/internal/products"
	"github.com/joao-fontenele/storefront-orders/internal/stores"
)

// Queries are the reads and writes the workflow performs inside a single
// transaction.
type Queries interface {
	Customer(ctx context.Context, id int64) (*domain.Customer, error)
	Store(ctx context.Context, id int64) (*domain.Store, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, storeID, productID int64, quantity int) error
	InsertOrder(ctx context.Context, order *domain.Order) error
	LockOrder(ctx context.Context, id int64) (*domain.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// Persistence runs transactional work and serves the read-only order views.
type Persistence interface {
	InTx(ctx context.Context, fn func(q Queries) error) error
	Order(ctx context.Context, id int64) (*domain.Order, error)
	Details(ctx context.Context, id int64) (*domain.OrderDetails, error)
}

type PostgresPersistence struct {
	db     *sql.DB
	orders *OrderRepository
}

func NewPostgresPersistence(db *sql.DB) *PostgresPersistence {
	return &PostgresPersistence{db: db, orders: NewOrderRepository(db)}
}

func (p *PostgresPersistence) InTx(ctx context.Context, fn func(q Queries) error) error {
	return database.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		return fn(&txQueries{
			customers: customers.NewCustomerRepository(tx),
			stores:    stores.NewStoreRepository(tx),
			products:  products.NewProductRepository(tx),
			inventory: inventory.NewInventoryRepository(tx),
			orders:    NewOrderRepository(tx),
		})
	})
}

func (p *PostgresPersistence) Order(ctx context.Context, id int64) (*domain.Order, error) {
	return p.orders.GetByID(ctx, id)
}

func (p *PostgresPersistence) Details(ctx context.Context, id int64) (*domain.OrderDetails, error) {
	return p.orders.Details(ctx, id)
}

type txQueries struct {
	customers *customers.CustomerRepository
	stores    *stores.StoreRepository
	products  *products.ProductRepository
	inventory *inventory.InventoryRepository
	orders    *OrderRepository
}

func (q *txQueries) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	return q.customers.GetByID(ctx, id)
}

func (q *txQueries) Store(ctx context.Context, id int64) (*domain.Store, error) {
	return q.stores.GetByID(ctx, id)
}

func (q *txQueries) Product(ctx context.Context, id int64) (*domain.Product, error) {
	return q.products.GetByID(ctx, id)
}

func (q *txQueries) DecrementStock(ctx context.Context, storeID, productID int64, quantity int) error {
	return q.inventory.Decrement(ctx, storeID, productID, quantity)
}

func (q *txQueries) InsertOrder(ctx context.Context, order *domain.Order) error {
	return q.orders.Insert(ctx, order)
}

func (q *txQueries) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return q.orders.GetForUpdate(ctx, id)
}

func (q *txQueries) SetOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	ok, err := q.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("order not found")
	}
	return nil
}
