package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Order is an immutable snapshot of a cart at checkout time. Items are copied,
// not referenced, so later price changes never alter historical orders. At
// most one order exists per Stripe session id (unique index).
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TaxPercentage   float64     `gorm:"not null;default:14" json:"tax_percentage"`
	ShippingPrice   float64     `gorm:"not null;default:0" json:"shipping_price"`
	TotalPrice      float64     `gorm:"not null" json:"total_price"`
	ShippingAddress Address     `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string      `gorm:"type:varchar(10);not null;default:'cash'" json:"payment_method"`
	StripeSessionID string      `gorm:"uniqueIndex:idx_orders_stripe_session,where:stripe_session_id <> ''" json:"stripe_session_id,omitempty"`
	IsPaid          bool        `gorm:"not null;default:false" json:"is_paid"`
	PaidAt          *time.Time  `json:"paid_at,omitempty"`
	IsDelivered     bool        `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Color     string    `json:"color"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

type Address struct {
	Details    string `json:"details"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// OrderItemsFromCart freezes a cart's line items into order line items.
func OrderItemsFromCart(cart *Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, OrderItem{
			ProductID: ci.ProductID,
			Color:     ci.Color,
			Price:     ci.Price,
			Quantity:  ci.Quantity,
		})
	}
	return items
}
