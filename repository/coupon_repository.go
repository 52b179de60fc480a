package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ecommerce-api/models"
)

// CouponRepository defines the interface for coupon data access
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	// FindActive resolves a coupon by name only when it is active and not
	// yet expired.
	FindActive(ctx context.Context, name string, now time.Time) (*models.Coupon, error)
	FindAll(ctx context.Context) ([]models.Coupon, error)
	Deactivate(ctx context.Context, name string) error
}

// GormCouponRepository implements CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) CouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *GormCouponRepository) FindActive(ctx context.Context, name string, now time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("name = ? AND active = ? AND expires_at > ?", name, true, now).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *GormCouponRepository) FindAll(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *GormCouponRepository) Deactivate(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("name = ?", name).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
