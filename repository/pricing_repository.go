package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ecommerce-api/models"
)

// PricingRepository reads and updates the global pricing settings record.
type PricingRepository interface {
	// Get returns the settings row, or the defaults when none exists.
	Get(ctx context.Context) (*models.PricingSettings, error)
	Update(ctx context.Context, taxPercentage, shippingPrice float64) (*models.PricingSettings, error)
}

// GormPricingRepository implements PricingRepository using GORM
type GormPricingRepository struct {
	db *gorm.DB
}

func NewGormPricingRepository(db *gorm.DB) PricingRepository {
	return &GormPricingRepository{db: db}
}

func (r *GormPricingRepository) Get(ctx context.Context) (*models.PricingSettings, error) {
	var settings models.PricingSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPricingSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *GormPricingRepository) Update(ctx context.Context, taxPercentage, shippingPrice float64) (*models.PricingSettings, error) {
	var settings models.PricingSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.PricingSettings{TaxPercentage: taxPercentage, ShippingPrice: shippingPrice}
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}

	settings.TaxPercentage = taxPercentage
	settings.ShippingPrice = shippingPrice
	if err := r.db.WithContext(ctx).Save(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}
