package models

import (
	"time"

	"github.com/google/uuid"
)

// Defaults used when no pricing settings row exists yet.
const (
	DefaultTaxPercentage = 14.0
	DefaultShippingPrice = 0.0
)

// PricingSettings is a single global record; admins may adjust it, the
// checkout workflow only reads it.
type PricingSettings struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaxPercentage float64   `gorm:"not null;default:14" json:"tax_percentage"`
	ShippingPrice float64   `gorm:"not null;default:0" json:"shipping_price"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultPricingSettings returns the fallback applied when the table is empty.
func DefaultPricingSettings() *PricingSettings {
	return &PricingSettings{
		TaxPercentage: DefaultTaxPercentage,
		ShippingPrice: DefaultShippingPrice,
	}
}
