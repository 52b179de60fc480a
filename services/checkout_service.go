package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecommerce-api/apperrors"
	"ecommerce-api/kafka"
	"ecommerce-api/models"
	"ecommerce-api/repository"
)

// CheckoutService coordinates order creation. Both the cash path and the
// card (webhook) path run the same sequence inside a single transaction:
// load pricing, load cart, compute total, persist the order snapshot,
// decrement stock, delete the cart. Any failure aborts the transaction, so
// an order never exists without its stock reserved and vice versa.
type CheckoutService struct {
	store    repository.Store
	gateway  PaymentGateway
	cache    *CartCache
	producer kafka.ProducerAPI
	currency string
	log      *zap.Logger
}

func NewCheckoutService(store repository.Store, gateway PaymentGateway, cache *CartCache, producer kafka.ProducerAPI, currency string, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		gateway:  gateway,
		cache:    cache,
		producer: producer,
		currency: currency,
		log:      log,
	}
}

// CreateCashOrder creates an order from the user's cart, paid on delivery.
// The cart must belong to the requesting user.
func (s *CheckoutService) CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, addr models.Address) (*models.Order, error) {
	var order *models.Order

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		settings, err := tx.Pricing().Get(ctx)
		if err != nil {
			return err
		}

		cart, err := tx.Carts().FindByID(ctx, cartID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(fmt.Sprintf("There is no cart with this id: %s", cartID))
		}
		if err != nil {
			return err
		}

		if cart.UserID != userID {
			return apperrors.Forbidden("You are not allowed to access this cart")
		}

		order = &models.Order{
			UserID:          userID,
			Items:           models.OrderItemsFromCart(cart),
			TaxPercentage:   settings.TaxPercentage,
			ShippingPrice:   settings.ShippingPrice,
			ShippingAddress: addr,
			PaymentMethod:   models.PaymentMethodCash,
		}
		_, order.TotalPrice = OrderTotal(cart.CheckoutTotal(), settings.TaxPercentage, settings.ShippingPrice)

		return s.finalize(ctx, tx, order, cart)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order)
	return order, nil
}

// CreateCardOrder creates an order from a completed Stripe checkout session;
// it is invoked from the webhook handler. Redelivered events return the
// already-created order without touching stock again. The user id comes from
// the session metadata set at session creation, not from a request.
func (s *CheckoutService) CreateCardOrder(ctx context.Context, sess CompletedSession) (*models.Order, error) {
	cartID, err := uuid.Parse(sess.CartID)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid cart reference in checkout session")
	}
	userID, err := uuid.Parse(sess.UserID)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid user reference in checkout session")
	}

	var order *models.Order
	var replayed bool

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Orders().FindByStripeSession(ctx, sess.SessionID)
		if err == nil {
			order = existing
			replayed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		settings, err := tx.Pricing().Get(ctx)
		if err != nil {
			return err
		}

		cart, err := tx.Carts().FindByID(ctx, cartID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(fmt.Sprintf("There is no cart with this id: %s", cartID))
		}
		if err != nil {
			return err
		}

		now := time.Now()
		order = &models.Order{
			UserID:          userID,
			Items:           models.OrderItemsFromCart(cart),
			TaxPercentage:   settings.TaxPercentage,
			ShippingPrice:   settings.ShippingPrice,
			PaymentMethod:   models.PaymentMethodCard,
			StripeSessionID: sess.SessionID,
			IsPaid:          true,
			PaidAt:          &now,
		}
		_, order.TotalPrice = OrderTotal(cart.CheckoutTotal(), settings.TaxPercentage, settings.ShippingPrice)

		return s.finalize(ctx, tx, order, cart)
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		s.afterCommit(ctx, order)
	}
	return order, nil
}

// finalize runs the tail of the transaction: persist the order, reconcile
// stock, dispose of the cart. Caller is inside tx.
func (s *CheckoutService) finalize(ctx context.Context, tx repository.Store, order *models.Order, cart *models.Cart) error {
	if err := tx.Orders().Create(ctx, order); err != nil {
		return err
	}

	applied, err := tx.Products().DecrementStock(ctx, order.Items)
	if err != nil {
		return err
	}
	if applied != int64(len(order.Items)) {
		// at least one product sold out concurrently; abort everything
		return apperrors.ErrOutOfStock
	}

	return tx.Carts().Delete(ctx, cart.ID)
}

// GetCheckoutSession creates a Stripe-hosted checkout session for the user's
// cart. No order exists until the gateway confirms payment via webhook.
func (s *CheckoutService) GetCheckoutSession(ctx context.Context, userID, cartID uuid.UUID) (*CheckoutSessionRef, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	settings, err := s.store.Pricing().Get(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.Carts().FindByID(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("There is no cart with this id: %s", cartID))
	}
	if err != nil {
		return nil, err
	}

	if cart.UserID != user.ID {
		return nil, apperrors.Forbidden("You are not allowed to access this cart")
	}

	_, total := OrderTotal(cart.CheckoutTotal(), settings.TaxPercentage, settings.ShippingPrice)

	ref, err := s.gateway.CreateCheckoutSession(CheckoutSessionParams{
		Amount:        int64(math.Round(total * 100)),
		Currency:      s.currency,
		CustomerEmail: user.Email,
		CartID:        cartID.String(),
		UserID:        user.ID.String(),
		Description:   fmt.Sprintf("Order for user %s", user.Name),
	})
	if err != nil {
		return nil, apperrors.GatewayError(err)
	}
	return ref, nil
}

// afterCommit runs the post-commit side effects: drop the cached cart and
// publish the order event. Both are best-effort and never fail the request.
func (s *CheckoutService) afterCommit(ctx context.Context, order *models.Order) {
	if err := s.cache.Invalidate(ctx, order.UserID); err != nil {
		s.log.Warn("cart cache invalidation failed",
			zap.String("user_id", order.UserID.String()),
			zap.Error(err),
		)
	}

	if s.producer == nil {
		return
	}
	evt := kafka.OrderEvent{
		Type:          "order_created",
		OrderID:       order.ID.String(),
		UserID:        order.UserID.String(),
		TotalPrice:    order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.producer.PublishOrderEvent(ctx, evt); err != nil {
		s.log.Warn("order event publish failed",
			zap.String("order_id", evt.OrderID),
			zap.Error(err),
		)
	}
}
