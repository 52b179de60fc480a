package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecommerce-api/apperrors"
	"ecommerce-api/models"
	"ecommerce-api/repository"
)

// OrderService serves order queries and the admin status updates. Order
// creation lives in CheckoutService; this service never mutates line items
// or totals.
type OrderService struct {
	store repository.Store
}

func NewOrderService(store repository.Store) *OrderService {
	return &OrderService{store: store}
}

// GetUserOrders retrieves the logged-in user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.store.Orders().FindByUserID(ctx, userID)
}

// GetUserOrderByID retrieves one order scoped to the user. A foreign order
// is indistinguishable from a missing one.
func (s *OrderService) GetUserOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByIDAndUserID(ctx, orderID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found or you don't have access to it")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetAllOrders retrieves paginated orders across all users (admin only).
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return s.store.Orders().FindAll(ctx, page, limit)
}

// MarkPaid flips the order's paid flag and timestamps it.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.updateStatus(ctx, orderID, func(order *models.Order, now time.Time) {
		order.IsPaid = true
		order.PaidAt = &now
	})
}

// MarkDelivered flips the order's delivered flag and timestamps it.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.updateStatus(ctx, orderID, func(order *models.Order, now time.Time) {
		order.IsDelivered = true
		order.DeliveredAt = &now
	})
}

func (s *OrderService) updateStatus(ctx context.Context, orderID uuid.UUID, apply func(*models.Order, time.Time)) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("No order found for this id: %s", orderID))
	}
	if err != nil {
		return nil, err
	}

	apply(order, time.Now())

	if err := s.store.Orders().Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
