package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user shopping cart. One cart per user, created lazily on
// first add-to-cart and deleted the moment its contents become an order.
type Cart struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Items              []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Total              float64    `json:"total"`
	TotalAfterDiscount float64    `json:"total_after_discount,omitempty"`
	DiscountApplied    bool       `gorm:"not null;default:false" json:"discount_applied"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Color     string    `json:"color"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
}

// Recalculate recomputes the cart total from its items and drops any applied
// discount. Runs on every cart mutation.
func (c *Cart) Recalculate() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = total
	c.TotalAfterDiscount = 0
	c.DiscountApplied = false
	return total
}

// CheckoutTotal is the subtotal the order price is derived from: the
// discounted total when a coupon is applied, the plain total otherwise.
func (c *Cart) CheckoutTotal() float64 {
	if c.DiscountApplied {
		return c.TotalAfterDiscount
	}
	return c.Total
}
