//go:build integration

package test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/storefront-orders/internal/api"
	"github.com/joao-fontenele/storefront-orders/internal/customers"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/inventory"
	"github.com/joao-fontenele/storefront-orders/internal/mail"
	"github.com/joao-fontenele/storefront-orders/internal/messaging"
	"github.com/joao-fontenele/storefront-orders/internal/notifier"
	"github.com/joao-fontenele/storefront-orders/internal/orders"
	"github.com/joao-fontenele/storefront-orders/internal/products"
	"github.com/joao-fontenele/storefront-orders/internal/reports"
	"github.com/joao-fontenele/storefront-orders/internal/shipments"
	"github.com/joao-fontenele/storefront-orders/internal/stores"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type catalog struct {
	t  *testing.T
	db *sql.DB
}

func (c catalog) customer(email, name string) int64 {
	c.t.Helper()
	cust := &domain.Customer{Email: email, FullName: name}
	require.NoError(c.t, customers.NewCustomerRepository(c.db).Create(context.Background(), cust))
	return cust.ID
}

func (c catalog) store(name string) int64 {
	c.t.Helper()
	st := &domain.Store{Name: name, WebAddress: "https://" + strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".example"}
	require.NoError(c.t, stores.NewStoreRepository(c.db).Create(context.Background(), st))
	return st.ID
}

func (c catalog) product(name, price string) int64 {
	c.t.Helper()
	p := &domain.Product{Name: name, UnitPrice: decimal.RequireFromString(price)}
	require.NoError(c.t, products.NewProductRepository(c.db).Create(context.Background(), p))
	return p.ID
}

func (c catalog) stock(storeID, productID int64, quantity int) {
	c.t.Helper()
	inv := &domain.Inventory{StoreID: storeID, ProductID: productID, Quantity: quantity}
	require.NoError(c.t, inventory.NewInventoryRepository(c.db).SetStock(context.Background(), inv))
}

func (c catalog) quantityOnHand(storeID, productID int64) int {
	c.t.Helper()
	inv, err := inventory.NewInventoryRepository(c.db).GetStock(context.Background(), storeID, productID)
	require.NoError(c.t, err)
	require.NotNil(c.t, inv)
	return inv.Quantity
}

func (c catalog) orderCount() int {
	c.t.Helper()
	var n int
	require.NoError(c.t, c.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	return n
}

func (c catalog) placedOrder(customerID, storeID int64, status domain.OrderStatus, at time.Time, items ...domain.OrderItem) int64 {
	c.t.Helper()
	for i := range items {
		items[i].LineItemID = i + 1
	}
	order := &domain.Order{CustomerID: customerID, StoreID: storeID, Status: status, CreatedAt: at, Items: items}
	require.NoError(c.t, orders.NewOrderRepository(c.db).Insert(context.Background(), order))
	return order.ID
}

func (c catalog) shipment(customerID, storeID int64, status domain.ShipmentStatus) int64 {
	c.t.Helper()
	s := &domain.Shipment{CustomerID: customerID, StoreID: storeID, DeliveryAddress: "1 Main St", Status: status}
	require.NoError(c.t, shipments.NewShipmentRepository(c.db).Create(context.Background(), s))
	return s.ID
}

func setupCatalog(t *testing.T) catalog {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	return catalog{t: t, db: OpenDB(t, StartPostgres(ctx, t))}
}

func call(t *testing.T, server *httptest.Server, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	c := setupCatalog(t)

	alice := c.customer("alice@example.com", "Alice Smith")
	store := c.store("Downtown")
	tee := c.product("Tee", "19.99")
	mug := c.product("Mug", "7.50")
	c.stock(store, tee, 5)
	c.stock(store, mug, 10)

	logger := quietLogger()
	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(c.db), logger)
	server := httptest.NewServer(api.NewRouter(api.NewHandlers(c.db, workflow, logger), nil))
	defer server.Close()

	var created domain.Order
	status := call(t, server, http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"customer_id":%d,"store_id":%d,"items":[{"product_id":%d,"quantity":2},{"product_id":%d,"quantity":4}]}`,
			alice, store, tee, mug), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.OrderStatusPending, created.Status)
	require.Len(t, created.Items, 2)
	assert.Equal(t, 1, created.Items[0].LineItemID)
	assert.Equal(t, 2, created.Items[1].LineItemID)
	assert.Equal(t, 3, c.quantityOnHand(store, tee))
	assert.Equal(t, 6, c.quantityOnHand(store, mug))

	id := strconv.FormatInt(created.ID, 10)

	var details domain.OrderDetails
	status = call(t, server, http.MethodGet, "/api/v1/orders/details/"+id, "", &details)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Downtown", details.StoreName)
	assert.Nil(t, details.ShipmentStatus)
	assert.True(t, decimal.RequireFromString("69.98").Equal(details.TotalAmount), "total %s", details.TotalAmount)

	var counts map[string]int64
	status = call(t, server, http.MethodGet, "/api/v1/orders/status", "", &counts)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), counts["PENDING"])
	assert.Equal(t, int64(0), counts["COMPLETE"])

	var cancelled domain.Order
	status = call(t, server, http.MethodPost, "/api/v1/orders/"+id+"/cancel", "", &cancelled)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	var failure map[string]any
	status = call(t, server, http.MethodPatch, "/api/v1/orders/"+id+"/status", `{"status":"COMPLETE"}`, &failure)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, server, http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"customer_id":%d,"store_id":%d,"items":[{"product_id":%d,"quantity":4}]}`, alice, store, tee), &failure)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "insufficient stock", failure["message"])
	assert.Equal(t, 3, c.quantityOnHand(store, tee))

	failure = nil
	status = call(t, server, http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"customer_id":%d,"store_id":%d,"items":[{"product_id":%d,"quantity":3000000000}]}`, alice, store, tee), &failure)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, failure["validationErrors"], "items[0].quantity")
	assert.Equal(t, 3, c.quantityOnHand(store, tee))

	status = call(t, server, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCustomerEmailAndNameLookups(t *testing.T) {
	c := setupCatalog(t)
	svc := customers.NewService(customers.NewCustomerRepository(c.db))
	ctx := context.Background()
	str := func(s string) *string { return &s }

	ana, err := svc.Create(ctx, customers.CustomerInput{Email: str("Ana.Lima@Example.COM"), FullName: str("Ana Lima")})
	require.NoError(t, err)
	assert.Equal(t, "ana.lima@example.com", ana.Email)

	_, err = svc.Create(ctx, customers.CustomerInput{Email: str("ana.lima@example.com"), FullName: str("Other Ana")})
	assert.True(t, domain.IsBadRequest(err), "got %v", err)

	err = customers.NewCustomerRepository(c.db).Create(ctx, &domain.Customer{Email: "ANA.LIMA@example.com", FullName: "Raw Insert"})
	assert.Error(t, err, "unique index must ignore case")

	found, err := svc.ByEmail(ctx, "ANA.LIMA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, found.ID)

	_, err = svc.Create(ctx, customers.CustomerInput{Email: str("pct@example.com"), FullName: str("100% Cotton")})
	require.NoError(t, err)

	matches, err := svc.ByName(ctx, "%")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "100% Cotton", matches[0].FullName)

	_, err = svc.ByName(ctx, "_")
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	matches, err = svc.ByName(ctx, "lim")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, ana.ID, matches[0].ID)
}

func TestSequentialOrdersDrainStock(t *testing.T) {
	c := setupCatalog(t)

	customer := c.customer("bob@example.com", "Bob Jones")
	store := c.store("Harbour")
	product := c.product("Cap", "12.00")
	c.stock(store, product, 5)

	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(c.db), quietLogger())
	req := orders.CreateOrderRequest{
		CustomerID: customer,
		StoreID:    store,
		Items:      []domain.OrderLine{{ProductID: product, Quantity: 3}},
	}

	_, err := workflow.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, c.quantityOnHand(store, product))

	_, err = workflow.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, c.quantityOnHand(store, product))
	assert.Equal(t, 1, c.orderCount())
}

func TestFailedLineRollsBackWholeOrder(t *testing.T) {
	c := setupCatalog(t)

	customer := c.customer("carol@example.com", "Carol White")
	store := c.store("Uptown")
	first := c.product("Scarf", "30.00")
	second := c.product("Gloves", "15.00")
	unstocked := c.product("Boots", "99.00")
	c.stock(store, first, 10)
	c.stock(store, second, 1)

	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(c.db), quietLogger())

	_, err := workflow.CreateOrder(context.Background(), orders.CreateOrderRequest{
		CustomerID: customer,
		StoreID:    store,
		Items: []domain.OrderLine{
			{ProductID: first, Quantity: 4},
			{ProductID: second, Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = workflow.CreateOrder(context.Background(), orders.CreateOrderRequest{
		CustomerID: customer,
		StoreID:    store,
		Items: []domain.OrderLine{
			{ProductID: first, Quantity: 4},
			{ProductID: unstocked, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrStockNotAvailable)

	assert.Equal(t, 10, c.quantityOnHand(store, first))
	assert.Equal(t, 1, c.quantityOnHand(store, second))
	assert.Zero(t, c.orderCount())
}

func TestConcurrentOrdersNeverOverdrawStock(t *testing.T) {
	c := setupCatalog(t)

	store := c.store("Airport")
	product := c.product("Umbrella", "25.00")
	const stock, attempts = 10, 40
	c.stock(store, product, stock)

	customerIDs := make([]int64, 4)
	for i := range customerIDs {
		customerIDs[i] = c.customer(fmt.Sprintf("buyer%d@example.com", i), fmt.Sprintf("Buyer %d", i))
	}

	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(c.db), quietLogger())

	var placed, rejected atomic.Int64
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		customer := customerIDs[i%len(customerIDs)]
		g.Go(func() error {
			_, err := workflow.CreateOrder(context.Background(), orders.CreateOrderRequest{
				CustomerID: customer,
				StoreID:    store,
				Items:      []domain.OrderLine{{ProductID: product, Quantity: 1}},
			})
			switch {
			case err == nil:
				placed.Add(1)
			case domain.IsBadRequest(err):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(stock), placed.Load())
	assert.Equal(t, int64(attempts-stock), rejected.Load())
	assert.Zero(t, c.quantityOnHand(store, product))
	assert.Equal(t, stock, c.orderCount())
}

func TestReportsAgainstPostgres(t *testing.T) {
	c := setupCatalog(t)

	a := c.customer("a@example.com", "Customer A")
	b := c.customer("b@example.com", "Customer B")
	x := c.customer("x@example.com", "Customer X")
	store := c.store("Riverside")
	product := c.product("Lamp", "10.00")
	price := decimal.RequireFromString("10.00")

	day := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}

	first := c.placedOrder(a, store, domain.OrderStatusComplete, day("2025-01-01T00:00:00Z"),
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 10},
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 5})
	second := c.placedOrder(a, store, domain.OrderStatusPending, day("2025-01-02T23:59:59.500Z"),
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 10})
	c.placedOrder(b, store, domain.OrderStatusPending, day("2025-01-03T00:00:01Z"),
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 60})

	svc := reports.NewService(reports.NewReportRepository(c.db), orders.NewOrderRepository(c.db))
	ctx := context.Background()

	t.Run("customers by ordered quantity", func(t *testing.T) {
		got, err := svc.CustomersByOrderQuantityBetween(ctx, 10, 50)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a, got[0].ID)
		assert.Equal(t, int64(25), got[0].TotalQuantity)
	})

	t.Run("orders in date range", func(t *testing.T) {
		got, err := svc.OrdersInDateRange(ctx, "2025-01-01", "2025-01-02")
		require.NoError(t, err)
		ids := make([]int64, 0, len(got))
		for _, o := range got {
			ids = append(ids, o.ID)
		}
		assert.ElementsMatch(t, []int64{first, second}, ids)
	})

	t.Run("status counts", func(t *testing.T) {
		got, err := svc.CountOrdersByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got[domain.OrderStatusComplete])
		assert.Equal(t, int64(2), got[domain.OrderStatusPending])
		assert.Equal(t, int64(0), got[domain.OrderStatusCancelled])
	})

	t.Run("customers with completed orders", func(t *testing.T) {
		got, err := svc.CustomersWithCompletedOrders(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a@example.com", got[0].Email)
	})

	t.Run("shipment customer counts are distinct", func(t *testing.T) {
		c.shipment(x, store, domain.ShipmentStatusPending)
		c.shipment(x, store, domain.ShipmentStatusPending)
		c.shipment(b, store, domain.ShipmentStatusPending)

		got, err := svc.ShipmentStatusWiseCustomerCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got[domain.ShipmentStatusPending])
		assert.Equal(t, int64(0), got[domain.ShipmentStatusDelivered])
	})
}

func TestShipmentAssignmentFeedsSoldTotals(t *testing.T) {
	c := setupCatalog(t)

	customer := c.customer("dave@example.com", "Dave Brown")
	other := c.customer("erin@example.com", "Erin Green")
	store := c.store("Old Town")
	product := c.product("Kettle", "40.00")
	price := decimal.RequireFromString("40.00")

	orderID := c.placedOrder(customer, store, domain.OrderStatusPending, time.Now().UTC(),
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 2},
		domain.OrderItem{ProductID: product, UnitPrice: price, Quantity: 1})

	svc := shipments.NewService(c.db)
	ctx := context.Background()

	shipment, err := svc.Create(ctx, shipments.ShipmentInput{StoreID: store, CustomerID: customer, DeliveryAddress: "2 High St"})
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentStatusPending, shipment.Status)

	_, err = svc.AssignItems(ctx, shipment.ID, shipments.AssignInput{OrderID: orderID, LineItemIDs: []int64{1, 7}})
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	foreign, err := svc.Create(ctx, shipments.ShipmentInput{StoreID: store, CustomerID: other, DeliveryAddress: "3 Low St"})
	require.NoError(t, err)
	_, err = svc.AssignItems(ctx, foreign.ID, shipments.AssignInput{OrderID: orderID, LineItemIDs: []int64{1}})
	assert.True(t, domain.IsBadRequest(err), "got %v", err)

	assigned, err := svc.AssignItems(ctx, shipment.ID, shipments.AssignInput{OrderID: orderID, LineItemIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, assigned.LineItemIDs)

	_, err = svc.UpdateStatus(ctx, shipment.ID, "shipped")
	require.NoError(t, err)

	totals, err := reports.NewReportRepository(c.db).TotalSoldByShipmentStatus(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, domain.ShipmentStatusShipped, totals[0].Status)
	assert.True(t, decimal.RequireFromString("80.00").Equal(totals[0].TotalSold), "total %s", totals[0].TotalSold)

	details, err := orders.NewOrderRepository(c.db).Details(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, details.Items, 2)
	require.NotNil(t, details.Items[0].ShipmentStatus)
	assert.Equal(t, domain.ShipmentStatusShipped, *details.Items[0].ShipmentStatus)
	assert.Nil(t, details.Items[1].ShipmentStatus)
}

type mailbox struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *mailbox) handler(w http.ResponseWriter, r *http.Request) {
	var msg mail.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (m *mailbox) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg.Subject)
	}
	return out
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer func() { _ = ctrl.Close() }()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

func TestOrderEventsNotifyCustomer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c := setupCatalog(t)
	brokers := StartKafka(ctx, t)

	const topic = "order.events"
	createTopic(t, brokers[0], topic)

	customer := c.customer("frank@example.com", "Frank Black")
	store := c.store("Station")
	product := c.product("Bottle", "8.25")
	c.stock(store, product, 3)

	producer := messaging.NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	logger := quietLogger()
	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(c.db), logger, orders.WithPublisher(producer))

	order, err := workflow.CreateOrder(ctx, orders.CreateOrderRequest{
		CustomerID: customer,
		StoreID:    store,
		Items:      []domain.OrderLine{{ProductID: product, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = workflow.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	box := &mailbox{}
	mailServer := httptest.NewServer(http.HandlerFunc(box.handler))
	defer mailServer.Close()

	handler := notifier.NewHandler(mail.NewClient(mailServer.URL, mailServer.Client()), logger)
	consumer := messaging.NewConsumer(brokers, topic, "order-notifier-test", messaging.WithStartOffset(kafkago.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Consume(consumeCtx, handler.Handle) }()

	want := []string{
		fmt.Sprintf("Order Confirmation: #%d", order.ID),
		fmt.Sprintf("Order Cancelled: #%d", order.ID),
	}
	require.Eventually(t, func() bool {
		return len(box.subjects()) == len(want)
	}, time.Minute, 250*time.Millisecond)
	assert.Equal(t, want, box.subjects())
}
