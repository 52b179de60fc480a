package models

import (
	"time"

	"github.com/google/uuid"
)

// Product carries the inventory counters mutated by checkout: Quantity is the
// available stock and Sold the cumulative units sold. Quantity never goes
// negative; the conditional decrement in the product repository enforces it.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	Sold        int       `gorm:"not null;default:0" json:"sold"`
	Colors      string    `json:"colors"` // comma-separated variant list
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
