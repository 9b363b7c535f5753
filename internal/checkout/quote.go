package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/skintellect/storefront/internal/model"
)

// TaxRate is applied to the subtotal. Shipping is always free.
var TaxRate = decimal.RequireFromString("0.08")

// ProductLookup resolves cart product ids.
type ProductLookup interface {
	Get(id string) (model.Product, bool)
}

type Line struct {
	Product   model.Product   `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Quote prices a cart. Amounts are rounded to cents.
type Quote struct {
	Lines     []Line          `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// NewQuote prices items against products. Ids the catalog does not know are skipped.
func NewQuote(items []model.CartItem, products ProductLookup) Quote {
	q := Quote{Lines: []Line{}, Subtotal: decimal.Zero, Shipping: decimal.Zero}
	for _, it := range items {
		p, ok := products.Get(it.ProductID)
		if !ok || it.Quantity < 1 {
			continue
		}
		lineTotal := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		q.Lines = append(q.Lines, Line{Product: p, Quantity: it.Quantity, LineTotal: lineTotal})
		q.ItemCount += it.Quantity
		q.Subtotal = q.Subtotal.Add(lineTotal)
	}
	q.Tax = q.Subtotal.Mul(TaxRate).Round(2)
	q.Total = q.Subtotal.Add(q.Shipping).Add(q.Tax)
	return q
}

// Empty reports whether no line could be priced.
func (q Quote) Empty() bool {
	return len(q.Lines) == 0
}
