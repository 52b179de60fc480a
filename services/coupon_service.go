package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ecommerce-api/apperrors"
	"ecommerce-api/models"
	"ecommerce-api/repository"
)

// CouponService covers the admin side of coupons; applying one to a cart
// lives in CartService.
type CouponService struct {
	store repository.Store
}

func NewCouponService(store repository.Store) *CouponService {
	return &CouponService{store: store}
}

func (s *CouponService) Create(ctx context.Context, name string, discount float64, expiresAt time.Time) (*models.Coupon, error) {
	if discount < 1 || discount > 100 {
		return nil, apperrors.BadRequest("Discount must be between 1 and 100")
	}
	if !expiresAt.After(time.Now()) {
		return nil, apperrors.BadRequest("Expire date must be in the future")
	}

	coupon := &models.Coupon{
		Name:      name,
		Discount:  discount,
		ExpiresAt: expiresAt,
		Active:    true,
	}
	if err := s.store.Coupons().Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.store.Coupons().FindAll(ctx)
}

func (s *CouponService) Deactivate(ctx context.Context, name string) error {
	err := s.store.Coupons().Deactivate(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Coupon not found")
	}
	return err
}
