package orders

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type stockKey struct {
	storeID, productID int64
}

// memoryStore serialises transactions behind one mutex and only publishes a
// transaction's writes when fn returns nil.
type memoryStore struct {
	mu        sync.Mutex
	customers map[int64]domain.Customer
	stores    map[int64]domain.Store
	products  map[int64]domain.Product
	stock     map[stockKey]int
	orders    map[int64]domain.Order
	shipments map[int64]domain.ShipmentStatus
	nextID    int64
	insertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers: map[int64]domain.Customer{},
		stores:    map[int64]domain.Store{},
		products:  map[int64]domain.Product{},
		stock:     map[stockKey]int{},
		orders:    map[int64]domain.Order{},
		shipments: map[int64]domain.ShipmentStatus{},
		nextID:    100,
	}
}

func (m *memoryStore) addCustomer(id int64, email string) {
	m.customers[id] = domain.Customer{ID: id, Email: email, FullName: "Customer " + email}
}

func (m *memoryStore) addStore(id int64, name string) {
	m.stores[id] = domain.Store{ID: id, Name: name}
}

func (m *memoryStore) addProduct(id int64, name, price string) {
	m.products[id] = domain.Product{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price)}
}

func (m *memoryStore) setStock(storeID, productID int64, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[stockKey{storeID, productID}] = qty
}

func (m *memoryStore) stockOf(storeID, productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[stockKey{storeID, productID}]
}

func (m *memoryStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memoryStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		m:      m,
		stock:  make(map[stockKey]int, len(m.stock)),
		orders: make(map[int64]domain.Order, len(m.orders)),
		nextID: m.nextID,
	}
	for k, v := range m.stock {
		tx.stock[k] = v
	}
	for k, v := range m.orders {
		tx.orders[k] = cloneOrder(v)
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.stock = tx.stock
	m.orders = tx.orders
	m.nextID = tx.nextID
	return nil
}

func (m *memoryStore) Order(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *memoryStore) Details(ctx context.Context, id int64) (*domain.OrderDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}

	d := &domain.OrderDetails{
		OrderID:     o.ID,
		OrderStatus: o.Status,
		StoreName:   m.stores[o.StoreID].Name,
		Items:       []domain.LineItemDetail{},
	}
	for _, item := range o.Items {
		line := domain.LineItemDetail{
			LineItemID:  item.LineItemID,
			ProductID:   item.ProductID,
			ProductName: m.products[item.ProductID].Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
		if item.ShipmentID != nil {
			if st, ok := m.shipments[*item.ShipmentID]; ok {
				line.ShipmentStatus = &st
			}
		}
		d.Items = append(d.Items, line)
	}
	return d, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

type memoryTx struct {
	m      *memoryStore
	stock  map[stockKey]int
	orders map[int64]domain.Order
	nextID int64
}

func (tx *memoryTx) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, ok := tx.m.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (tx *memoryTx) Store(ctx context.Context, id int64) (*domain.Store, error) {
	s, ok := tx.m.stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (tx *memoryTx) Product(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := tx.m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (tx *memoryTx) DecrementStock(ctx context.Context, storeID, productID int64, quantity int) error {
	key := stockKey{storeID, productID}
	available, ok := tx.stock[key]
	if !ok {
		return domain.ErrStockNotAvailable
	}
	if available < quantity {
		return domain.ErrInsufficientStock
	}
	tx.stock[key] = available - quantity
	return nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if tx.m.insertErr != nil {
		return tx.m.insertErr
	}
	tx.nextID++
	order.ID = tx.nextID
	tx.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (tx *memoryTx) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := tx.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (tx *memoryTx) SetOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	o, ok := tx.orders[id]
	if !ok {
		return domain.NotFound("order not found")
	}
	o.Status = status
	tx.orders[id] = o
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	keys   []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	e, ok := event.(domain.OrderEvent)
	if !ok {
		return errors.New("unexpected event type")
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) published() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}
