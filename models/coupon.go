package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Discount  float64   `gorm:"not null" json:"discount"` // percentage, 1..100
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
