package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecommerce-api/apperrors"
	"ecommerce-api/models"
	"ecommerce-api/repository"
)

// CartService owns the per-user shopping cart. Every mutation recomputes the
// cart total and drops any applied discount, so the subtotal invariant holds
// at all times.
type CartService struct {
	store repository.Store
	cache *CartCache
	log   *zap.Logger
}

func NewCartService(store repository.Store, cache *CartCache, log *zap.Logger) *CartService {
	return &CartService{store: store, cache: cache, log: log}
}

// AddProduct adds one unit of the product+color variant to the user's cart,
// creating the cart lazily on first use. An existing line for the same
// product and color gets its quantity bumped instead.
func (s *CartService) AddProduct(ctx context.Context, userID, productID uuid.UUID, color string) (*models.Cart, error) {
	product, err := s.store.Products().FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}

	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &models.Cart{
			UserID: userID,
			Items: []models.CartItem{{
				ProductID: productID,
				Color:     color,
				Price:     product.Price,
				Quantity:  1,
			}},
		}
		cart.Recalculate()
		if err := s.store.Carts().Create(ctx, cart); err != nil {
			return nil, err
		}
		return s.refreshCache(ctx, cart), nil
	}
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].Color == color {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Color:     color,
			Price:     product.Price,
			Quantity:  1,
		})
	}

	cart.Recalculate()
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.refreshCache(ctx, cart), nil
}

// GetCart returns the user's cart, served from cache when possible.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if cached, err := s.cache.Get(ctx, userID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Warn("cart cache read failed", zap.Error(err))
	}

	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Cart not found for this user")
	}
	if err != nil {
		return nil, err
	}
	return s.refreshCache(ctx, cart), nil
}

// UpdateItemQuantity sets the quantity of a cart line item.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.BadRequest("Quantity must be at least 1")
	}

	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Cart not found for this user")
	}
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NotFound(fmt.Sprintf("No cart item found with id: %s", itemID))
	}

	cart.Recalculate()
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.refreshCache(ctx, cart), nil
}

// RemoveItem deletes one line item from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Cart not found for this user")
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Carts().RemoveItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("No cart item found with id: %s", itemID))
		}
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	cart.Recalculate()
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.refreshCache(ctx, cart), nil
}

// ClearCart deletes the user's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Cart not found for this user")
	}
	if err != nil {
		return err
	}

	if err := s.store.Carts().Delete(ctx, cart.ID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidation failed", zap.Error(err))
	}
	return nil
}

// ApplyCoupon applies an active, unexpired coupon to the user's cart and
// stores the discounted total alongside the plain one.
func (s *CartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, couponName string) (*models.Cart, error) {
	cart, err := s.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Cart not found for this user")
	}
	if err != nil {
		return nil, err
	}

	coupon, err := s.store.Coupons().FindActive(ctx, couponName, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Invalid, expired, or inactive coupon")
	}
	if err != nil {
		return nil, err
	}

	discountAmount := cart.Total * coupon.Discount / 100
	cart.TotalAfterDiscount = cart.Total - discountAmount
	cart.DiscountApplied = true

	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.refreshCache(ctx, cart), nil
}

func (s *CartService) refreshCache(ctx context.Context, cart *models.Cart) *models.Cart {
	if err := s.cache.Set(ctx, cart); err != nil {
		s.log.Warn("cart cache write failed", zap.Error(err))
	}
	return cart
}
