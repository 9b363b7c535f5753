package checkout

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
)

type products map[string]model.Product

func (p products) Get(id string) (model.Product, bool) {
	v, ok := p[id]
	return v, ok
}

type fakeCart struct {
	items   []model.CartItem
	cleared bool
}

func (c *fakeCart) Items() []model.CartItem { return c.items }
func (c *fakeCart) ClearCart(context.Context) {
	c.items = nil
	c.cleared = true
}

var testProducts = products{
	"1": {ID: "1", Brand: "Glow", Name: "Serum", Price: 19.99, Ingredients: []string{"Water"}},
	"2": {ID: "2", Brand: "Dew", Name: "Cream", Price: 45, Ingredients: []string{"Water"}},
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "orders.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		Shipping: ShippingDetails{
			Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
			Address: "1 Analytical Way", City: "London", ZipCode: "N1 9GU", Country: "United Kingdom",
		},
		Payment: PaymentDetails{CardNumber: "4242 4242 4242 4242", CardName: "Ada Lovelace", Expiry: "12/30", CVV: "123"},
	}
}

func TestNewQuote(t *testing.T) {
	items := []model.CartItem{
		{ProductID: "1", Quantity: 3},
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "2", Quantity: 1},
	}

	q := NewQuote(items, testProducts)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, 4, q.ItemCount)
	assertDecimal(t, "59.97", q.Lines[0].LineTotal)
	assertDecimal(t, "104.97", q.Subtotal)
	assertDecimal(t, "0", q.Shipping)
	assertDecimal(t, "8.40", q.Tax)
	assertDecimal(t, "113.37", q.Total)
}

func TestNewQuoteEmpty(t *testing.T) {
	q := NewQuote(nil, testProducts)

	assert.True(t, q.Empty())
	assert.NotNil(t, q.Lines)
	assertDecimal(t, "0", q.Total)
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))
	svc := NewService(repo, testProducts)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	cart := &fakeCart{items: []model.CartItem{{ProductID: "1", Quantity: 2}, {ProductID: "2", Quantity: 1}}}

	order, err := svc.PlaceOrder(ctx, "session-1", cart, validRequest())

	require.NoError(t, err)
	assert.True(t, cart.cleared)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "SK-"))
	assert.Equal(t, "4242", order.CardLast4)
	assertDecimal(t, "84.98", order.Subtotal)
	assertDecimal(t, "6.80", order.Tax)
	assertDecimal(t, "91.78", order.Total)

	stored, err := repo.FindByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, "London", stored.Shipping.City)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "1", stored.Items[0].ProductID)
	assertDecimal(t, "39.98", stored.Items[0].LineTotal)
	assertDecimal(t, "91.78", stored.Total)

	list, err := repo.ListBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PlaceOrderRequest)
		items     []model.CartItem
		wantMsg   string
		wantField string
	}{
		{
			name:      "missing city",
			mutate:    func(r *PlaceOrderRequest) { r.Shipping.City = " " },
			items:     []model.CartItem{{ProductID: "1", Quantity: 1}},
			wantMsg:   ShippingIncompleteMessage,
			wantField: "city",
		},
		{
			// shipping is checked before payment
			name: "missing email and cvv",
			mutate: func(r *PlaceOrderRequest) {
				r.Shipping.Email = ""
				r.Payment.CVV = ""
			},
			items:     []model.CartItem{{ProductID: "1", Quantity: 1}},
			wantMsg:   ShippingIncompleteMessage,
			wantField: "email",
		},
		{
			name:      "missing expiry",
			mutate:    func(r *PlaceOrderRequest) { r.Payment.Expiry = "" },
			items:     []model.CartItem{{ProductID: "1", Quantity: 1}},
			wantMsg:   PaymentIncompleteMessage,
			wantField: "expiry",
		},
		{
			name:    "empty cart",
			mutate:  func(*PlaceOrderRequest) {},
			items:   nil,
			wantMsg: EmptyCartMessage,
		},
		{
			name:    "only unknown products",
			mutate:  func(*PlaceOrderRequest) {},
			items:   []model.CartItem{{ProductID: "ghost", Quantity: 1}},
			wantMsg: EmptyCartMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewGormOrderRepository(newTestDB(t)), testProducts)
			cart := &fakeCart{items: tt.items}
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.PlaceOrder(context.Background(), "s", cart, req)

			var appErr *errx.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errx.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			if tt.wantField != "" {
				require.NotEmpty(t, appErr.Details)
				assert.Equal(t, tt.wantField, appErr.Details[0].Field)
			}
			assert.False(t, cart.cleared)
		})
	}
}

func TestFindByNumberMissing(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	_, err := repo.FindByNumber(context.Background(), "SK-NOPE")

	assert.True(t, errx.HasCode(err, errx.CodeNotFound))
}

func TestOrderNumber(t *testing.T) {
	ts := time.UnixMilli(1714564800123)

	got := OrderNumber(ts)

	require.True(t, strings.HasPrefix(got, "SK-"))
	rest := strings.TrimPrefix(got, "SK-")
	assert.Equal(t, strings.ToUpper(rest), rest)
	ms, err := strconv.ParseInt(strings.ToLower(rest), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, ts.UnixMilli(), ms)
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "4242", last4("4242-4242-4242-4242"))
	assert.Equal(t, "12", last4("12"))
	assert.Equal(t, "", last4("card"))
}
