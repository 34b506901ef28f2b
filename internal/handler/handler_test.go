package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/notification"
	"github.com/weddify/marketplace/internal/domain/order"
	"github.com/weddify/marketplace/internal/domain/user"
)

// --- Mock implementations ---

type mockCartRepo struct {
	cart   cart.Cart
	lines  map[int64]*cart.Line
	nextID int64
}

func newMockCartRepo(customerID uuid.UUID) *mockCartRepo {
	return &mockCartRepo{
		cart:   cart.Cart{ID: 1, CustomerID: customerID},
		lines:  make(map[int64]*cart.Line),
		nextID: 1,
	}
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, _ uuid.UUID) (*cart.Cart, error) {
	c := m.cart
	return &c, nil
}

func (m *mockCartRepo) Lines(_ context.Context, cartID int64) ([]cart.Line, error) {
	var lines []cart.Line
	for _, l := range m.lines {
		if l.CartID == cartID {
			lines = append(lines, *l)
		}
	}
	return lines, nil
}

func (m *mockCartRepo) GetLine(_ context.Context, cartID, lineID int64) (*cart.Line, error) {
	l, ok := m.lines[lineID]
	if !ok || l.CartID != cartID {
		return nil, cart.ErrLineNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockCartRepo) FindLineByReference(_ context.Context, cartID int64, ref catalog.Reference) (*cart.Line, error) {
	for _, l := range m.lines {
		if l.CartID == cartID && l.Reference == ref {
			cp := *l
			return &cp, nil
		}
	}
	return nil, cart.ErrLineNotFound
}

func (m *mockCartRepo) InsertLine(_ context.Context, line cart.Line) (*cart.Line, error) {
	line.ID = m.nextID
	m.nextID++
	line.AddedAt = time.Now()
	m.lines[line.ID] = &line
	cp := line
	return &cp, nil
}

func (m *mockCartRepo) UpdateLine(_ context.Context, line cart.Line) error {
	m.lines[line.ID] = &line
	return nil
}

func (m *mockCartRepo) DeleteLine(_ context.Context, cartID, lineID int64) (bool, error) {
	l, ok := m.lines[lineID]
	if !ok || l.CartID != cartID {
		return false, nil
	}
	delete(m.lines, lineID)
	return true, nil
}

func (m *mockCartRepo) ClearLines(_ context.Context, cartID int64) error {
	for id, l := range m.lines {
		if l.CartID == cartID {
			delete(m.lines, id)
		}
	}
	return nil
}

type mockCatalogRepo struct {
	entities map[catalog.Reference]*catalog.Entity
}

func (m *mockCatalogRepo) Resolve(_ context.Context, ref catalog.Reference) (*catalog.Entity, error) {
	e, ok := m.entities[ref]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return e, nil
}

func (m *mockCatalogRepo) List(_ context.Context, category catalog.Category) ([]catalog.Entity, error) {
	var list []catalog.Entity
	for _, e := range m.entities {
		if e.Category == category {
			list = append(list, *e)
		}
	}
	return list, nil
}

type mockOrderRepo struct {
	lastRecord *order.FulfillmentRecord
	orders     map[int64]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, rec *order.FulfillmentRecord) error {
	m.lastRecord = rec
	rec.Order.ID = 11
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]order.Order, error) {
	var list []order.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			list = append(list, *o)
		}
	}
	return list, nil
}

func (m *mockOrderRepo) ListByVendorEmail(_ context.Context, email string) ([]order.Order, error) {
	var list []order.Order
	for _, o := range m.orders {
		if len(o.VendorLines(email)) > 0 {
			list = append(list, *o)
		}
	}
	return list, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ int64, _ *order.Status, _ *order.PaymentStatus) error {
	return nil
}

type mockNotificationRepo struct {
	byID map[int64]*notification.VendorNotification
}

func (m *mockNotificationRepo) GetOrCreate(_ context.Context, orderID int64, vendorID uuid.UUID) (*notification.VendorNotification, error) {
	n := &notification.VendorNotification{ID: int64(len(m.byID) + 1), OrderID: orderID, VendorID: vendorID}
	m.byID[n.ID] = n
	return n, nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id int64) (*notification.VendorNotification, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	return n, nil
}

func (m *mockNotificationRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]notification.VendorNotification, error) {
	var list []notification.VendorNotification
	for _, n := range m.byID {
		if n.VendorID == vendorID {
			list = append(list, *n)
		}
	}
	return list, nil
}

func (m *mockNotificationRepo) MarkEmailSent(_ context.Context, id int64, at time.Time) error {
	if n, ok := m.byID[id]; ok {
		n.EmailSent = true
		n.EmailSentAt = &at
	}
	return nil
}

func (m *mockNotificationRepo) MarkViewed(_ context.Context, id int64, at time.Time) (*notification.VendorNotification, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	if !n.Viewed {
		n.Viewed = true
		n.ViewedAt = &at
	}
	cp := *n
	return &cp, nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*user.User
	keys  map[string]*user.APIKey
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) FindByHash(_ context.Context, hash string) (*user.APIKey, error) {
	k, ok := m.keys[hash]
	if !ok {
		return nil, user.ErrNotFound
	}
	return k, nil
}

// --- Test fixture ---

const testPepper = "test-pepper"

type fixture struct {
	handler   http.Handler
	cartRepo  *mockCartRepo
	orderRepo *mockOrderRepo
	customer  *user.User
	apiKey    string
}

func hashAPIKey(key string) string {
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

func newFixture(t *testing.T, entities ...catalog.Entity) *fixture {
	t.Helper()

	customer := &user.User{
		ID:    uuid.New(),
		Name:  "Priya Sharma",
		Email: "priya@example.com",
		Role:  user.RoleCustomer,
	}
	apiKey := "customer-key"

	users := &mockUserRepo{
		users: map[uuid.UUID]*user.User{customer.ID: customer},
		keys: map[string]*user.APIKey{
			hashAPIKey(apiKey): {ID: uuid.New(), KeyHash: hashAPIKey(apiKey), UserID: customer.ID},
		},
	}

	byRef := make(map[catalog.Reference]*catalog.Entity, len(entities))
	for i := range entities {
		byRef[catalog.Reference{Category: entities[i].Category, ID: entities[i].ID}] = &entities[i]
	}
	catalogRepo := &mockCatalogRepo{entities: byRef}

	cartRepo := newMockCartRepo(customer.ID)
	orderRepo := &mockOrderRepo{orders: make(map[int64]*order.Order)}
	notificationRepo := &mockNotificationRepo{byID: make(map[int64]*notification.VendorNotification)}

	cartService := cart.NewService(cartRepo, catalogRepo)
	dispatcher := notification.NewDispatcher(notificationRepo, notification.LogSender{})
	orderService := order.NewService(cartRepo, catalogRepo, orderRepo, order.NewNumberGenerator(), dispatcher)
	auth := NewAuthenticator(users, users, []byte(testPepper))

	h := NewHandler(catalogRepo, cartService, orderService, dispatcher, auth)
	return &fixture{
		handler:   h.Routes(),
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		customer:  customer,
		apiKey:    apiKey,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(apiKeyHeader, f.apiKey)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func fixedVenue() catalog.Entity {
	return catalog.Entity{
		Category: catalog.CategoryVenue,
		ID:       1,
		Name:     "Grand Palace",
		Location: "Mumbai",
		Rating:   4.7,
		Price:    catalog.Fixed(decimal.RequireFromString("50000")),
	}
}

// --- Tests ---

func TestAuth_MissingKey(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindUnauthorized, body.ErrorKind)
}

func TestAuth_InvalidKey(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(apiKeyHeader, "wrong-key")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListServices_Public(t *testing.T) {
	f := newFixture(t, fixedVenue())

	// No API key on purpose: catalog browsing is open.
	req := httptest.NewRequest(http.MethodGet, "/services/venue", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	services := decodeBody[[]serviceBody](t, rec)
	require.Len(t, services, 1)
	assert.Equal(t, "Grand Palace", services[0].Name)
	require.NotNil(t, services[0].Price)
}

func TestListServices_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/services/spaceship", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindInvalidCategory, body.ErrorKind)
}

func TestAddCartItem(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category":   "venue",
		"id": 1,
		"quantity":   2,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decodeBody[cartLineBody](t, rec)
	assert.Equal(t, "venue", line.Category)
	assert.Equal(t, int64(1), line.ServiceID)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddCartItem_DefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category":   "venue",
		"id": 1,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	line := decodeBody[cartLineBody](t, rec)
	assert.Equal(t, 1, line.Quantity)
}

func TestAddCartItem_MergesQuantity(t *testing.T) {
	f := newFixture(t)

	item := map[string]any{"category": "venue", "id": 1, "quantity": 2}
	f.do(t, http.MethodPost, "/cart/items", item)
	rec := f.do(t, http.MethodPost, "/cart/items", item)

	require.Equal(t, http.StatusCreated, rec.Code)
	line := decodeBody[cartLineBody](t, rec)
	assert.Equal(t, 4, line.Quantity)
}

func TestAddCartItem_InvalidCategory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category":   "spaceship",
		"id": 1,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindInvalidCategory, body.ErrorKind)
}

func TestAddCartItem_InvalidQuantity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category":   "venue",
		"id": 1,
		"quantity":   0,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindInvalidQuantity, body.ErrorKind)
}

func TestGetCart_Total(t *testing.T) {
	f := newFixture(t, fixedVenue())

	f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category": "venue", "id": 1, "quantity": 2,
	})

	rec := f.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeBody[cartBody](t, rec)
	require.Len(t, c.Lines, 1)
	assert.True(t, c.Total.Equal(decimal.RequireFromString("100000")), "got %s", c.Total)
}

func TestUpdateCartItem(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category": "venue", "id": 1, "quantity": 1,
	})
	line := decodeBody[cartLineBody](t, rec)

	rec = f.do(t, http.MethodPatch, "/cart/items/1", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[cartLineBody](t, rec)
	assert.Equal(t, line.ID, updated.ID)
	assert.Equal(t, 5, updated.Quantity)
}

func TestRemoveCartItem_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/cart/items/404", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindNotFound, body.ErrorKind)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, fixedVenue())

	f.do(t, http.MethodPost, "/cart/items", map[string]any{
		"category": "venue", "id": 1, "quantity": 1,
		"service_date": "2026-11-20",
	})

	rec := f.do(t, http.MethodPost, "/cart/checkout", map[string]any{
		"event_date":           "2026-11-20",
		"special_instructions": "decorate in gold",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decodeBody[orderBody](t, rec)
	assert.Regexp(t, `^ORD\d{14}$`, o.OrderNumber)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("50000")))
	assert.Equal(t, "pending", o.OrderStatus)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Grand Palace", o.Items[0].ServiceName)
	require.NotNil(t, o.EventDate)
	assert.Equal(t, "2026-11-20", *o.EventDate)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/checkout", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindEmptyCart, body.ErrorKind)
}

func TestUpdateOrderStatus_InvalidLabel(t *testing.T) {
	f := newFixture(t)
	f.orderRepo.orders[1] = &order.Order{ID: 1, CustomerID: f.customer.ID}

	rec := f.do(t, http.MethodPatch, "/orders/1/status", map[string]any{
		"order_status": "shipped",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, kindInvalidStatus, body.ErrorKind)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	f.orderRepo.orders[1] = &order.Order{ID: 1, CustomerID: f.customer.ID}

	rec := f.do(t, http.MethodPatch, "/orders/1/status", map[string]any{
		"order_status":   "confirmed",
		"payment_status": "paid",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	o := decodeBody[orderBody](t, rec)
	assert.Equal(t, "confirmed", o.OrderStatus)
	assert.Equal(t, "paid", o.PaymentStatus)
}

func TestGetOrder_StrangersSee404(t *testing.T) {
	f := newFixture(t)
	f.orderRepo.orders[1] = &order.Order{ID: 1, CustomerID: uuid.New()}

	rec := f.do(t, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
