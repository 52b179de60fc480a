package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository behind one handle. Transaction hands the
// callback a Store bound to the open transaction; all reads and writes made
// through that Store commit or roll back together. Once a transaction has
// started, nothing inside the callback may touch the outer Store.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Coupons() CouponRepository
	Pricing() PricingRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store on a gorm connection or transaction handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository       { return NewGormUserRepository(s.db) }
func (s *GormStore) Products() ProductRepository { return NewGormProductRepository(s.db) }
func (s *GormStore) Carts() CartRepository       { return NewGormCartRepository(s.db) }
func (s *GormStore) Orders() OrderRepository     { return NewGormOrderRepository(s.db) }
func (s *GormStore) Coupons() CouponRepository   { return NewGormCouponRepository(s.db) }
func (s *GormStore) Pricing() PricingRepository  { return NewGormPricingRepository(s.db) }

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
