package checkout

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

const (
	ShippingIncompleteMessage = "Please fill in all shipping details"
	PaymentIncompleteMessage  = "Please fill in all payment details"
	EmptyCartMessage          = "Your cart is empty"
	orderNumberPrefix         = "SK-"
)

type ShippingDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

type PaymentDetails struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

type PlaceOrderRequest struct {
	Shipping ShippingDetails `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
}

// Cart is the part of a shopper's cart checkout needs.
type Cart interface {
	Items() []model.CartItem
	ClearCart(ctx context.Context)
}

// Service prices carts and places simulated orders. No payment is ever charged.
type Service struct {
	orders   OrderRepository
	products ProductLookup
	now      func() time.Time
}

func NewService(orders OrderRepository, products ProductLookup) *Service {
	return &Service{orders: orders, products: products, now: time.Now}
}

func (s *Service) Quote(cart Cart) Quote {
	return NewQuote(cart.Items(), s.products)
}

// PlaceOrder validates the form, records the order and empties the cart. The cart is left
// untouched when anything fails.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, cart Cart, req PlaceOrderRequest) (*Order, error) {
	if missing := missingShipping(req.Shipping); len(missing) > 0 {
		return nil, incomplete(ShippingIncompleteMessage, missing)
	}
	if missing := missingPayment(req.Payment); len(missing) > 0 {
		return nil, incomplete(PaymentIncompleteMessage, missing)
	}

	quote := s.Quote(cart)
	if quote.Empty() {
		return nil, errx.New(nil, http.StatusBadRequest, errx.CodeValidation, EmptyCartMessage)
	}

	now := s.now().UTC()
	order := &Order{
		ID:          uuid.NewString(),
		OrderNumber: OrderNumber(now),
		SessionID:   sessionID,
		Email:       strings.TrimSpace(req.Shipping.Email),
		FirstName:   strings.TrimSpace(req.Shipping.FirstName),
		LastName:    strings.TrimSpace(req.Shipping.LastName),
		Shipping: Address{
			Address: strings.TrimSpace(req.Shipping.Address),
			City:    strings.TrimSpace(req.Shipping.City),
			State:   strings.TrimSpace(req.Shipping.State),
			ZipCode: strings.TrimSpace(req.Shipping.ZipCode),
			Country: strings.TrimSpace(req.Shipping.Country),
		},
		CardLast4:     last4(req.Payment.CardNumber),
		PaymentStatus: PaymentStatusSimulated,
		Subtotal:      quote.Subtotal,
		ShippingCost:  quote.Shipping,
		Tax:           quote.Tax,
		Total:         quote.Total,
		CreatedAt:     now,
	}
	for _, l := range quote.Lines {
		order.Items = append(order.Items, OrderItem{
			OrderID:   order.ID,
			ProductID: l.Product.ID,
			Brand:     l.Product.Brand,
			Name:      l.Product.Name,
			UnitPrice: decimal.NewFromFloat(l.Product.Price).Round(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, errx.Internal(err)
	}
	cart.ClearCart(ctx)

	logx.Info().
		Str("order_number", order.OrderNumber).
		Int("items", quote.ItemCount).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")
	return order, nil
}

// Orders lists the orders a session has placed, newest first.
func (s *Service) Orders(ctx context.Context, sessionID string) ([]Order, error) {
	orders, err := s.orders.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errx.Internal(err)
	}
	return orders, nil
}

// OrderNumber formats t as SK- followed by the upper-case base36 millisecond timestamp.
func OrderNumber(t time.Time) string {
	return orderNumberPrefix + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}

func missingShipping(d ShippingDetails) []string {
	return blank(map[string]string{
		"email":     d.Email,
		"firstName": d.FirstName,
		"lastName":  d.LastName,
		"address":   d.Address,
		"city":      d.City,
		"zipCode":   d.ZipCode,
	}, "email", "firstName", "lastName", "address", "city", "zipCode")
}

func missingPayment(d PaymentDetails) []string {
	return blank(map[string]string{
		"cardNumber": d.CardNumber,
		"cardName":   d.CardName,
		"expiry":     d.Expiry,
		"cvv":        d.CVV,
	}, "cardNumber", "cardName", "expiry", "cvv")
}

// blank returns the names, in order, whose values are empty after trimming.
func blank(values map[string]string, order ...string) []string {
	var out []string
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			out = append(out, name)
		}
	}
	return out
}

func incomplete(message string, fields []string) error {
	details := make([]errx.FieldError, len(fields))
	for i, f := range fields {
		details[i] = errx.FieldError{Field: f, Rule: "required", Message: f + " is required"}
	}
	appErr := errx.New(nil, http.StatusBadRequest, errx.CodeValidation, message)
	appErr.Details = details
	return appErr
}

func last4(card string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, card)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
