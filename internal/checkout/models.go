package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	// simulated payments always succeed
	PaymentStatusSimulated PaymentStatus = "simulated"
)

// Order is a placed order. Card data is never stored beyond the last four digits.
type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber   string          `gorm:"index;not null" json:"orderNumber"`
	SessionID     string          `gorm:"index;not null" json:"-"`
	Email         string          `gorm:"not null" json:"email"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Shipping      Address         `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	CardLast4     string          `gorm:"type:varchar(4)" json:"cardLast4"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);default:'simulated'" json:"paymentStatus"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
	ShippingCost  decimal.Decimal `gorm:"type:numeric(12,2)" json:"shipping"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Address is embedded in Order.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   string          `gorm:"index;type:varchar(36)" json:"-"`
	ProductID string          `json:"productId"`
	Brand     string          `json:"brand"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2)" json:"lineTotal"`
}
