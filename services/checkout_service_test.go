package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecommerce-api/apperrors"
	"ecommerce-api/models"
)

type fakeGateway struct {
	lastParams CheckoutSessionParams
	err        error
}

func (g *fakeGateway) CreateCheckoutSession(p CheckoutSessionParams) (*CheckoutSessionRef, error) {
	g.lastParams = p
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSessionRef{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func newCheckoutFixture(store *memStore) *CheckoutService {
	return NewCheckoutService(store, &fakeGateway{}, nil, nil, "egp", zap.NewNop())
}

func seedProduct(t *testing.T, store *memStore, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Title: "test product", Price: price, Quantity: stock}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func seedCart(t *testing.T, store *memStore, userID uuid.UUID, items ...models.CartItem) *models.Cart {
	t.Helper()
	cart := &models.Cart{UserID: userID, Items: items}
	cart.Recalculate()
	require.NoError(t, store.Carts().Create(context.Background(), cart))
	return cart
}

func TestCreateCashOrder_Success(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	product := seedProduct(t, store, 250, 5)
	cart := seedCart(t, store, userID, models.CartItem{
		ProductID: product.ID, Price: 250, Quantity: 4,
	})

	addr := models.Address{Details: "12 Tahrir St", City: "Cairo", Phone: "0100000000"}
	order, err := svc.CreateCashOrder(context.Background(), userID, cart.ID, addr)
	require.NoError(t, err)

	// subtotal 1000, default tax 14%, default shipping 0
	assert.Equal(t, 1140.0, order.TotalPrice)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.False(t, order.IsPaid)
	assert.Nil(t, order.PaidAt)
	assert.Equal(t, addr, order.ShippingAddress)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 4, order.Items[0].Quantity)

	// stock reconciled
	got, err := store.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, 4, got.Sold)

	// cart disposed
	_, err = store.Carts().FindByID(context.Background(), cart.ID)
	assert.Error(t, err)
}

func TestCreateCashOrder_UsesConfiguredPricing(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	_, err := store.Pricing().Update(context.Background(), 10, 50)
	require.NoError(t, err)

	product := seedProduct(t, store, 100, 10)
	cart := seedCart(t, store, userID, models.CartItem{
		ProductID: product.ID, Price: 100, Quantity: 2,
	})

	order, err := svc.CreateCashOrder(context.Background(), userID, cart.ID, models.Address{})
	require.NoError(t, err)

	// 200 + 20 tax + 50 shipping
	assert.Equal(t, 270.0, order.TotalPrice)
	assert.Equal(t, 10.0, order.TaxPercentage)
	assert.Equal(t, 50.0, order.ShippingPrice)
}

func TestCreateCashOrder_DiscountedSubtotal(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	product := seedProduct(t, store, 500, 5)
	cart := seedCart(t, store, userID, models.CartItem{
		ProductID: product.ID, Price: 500, Quantity: 2,
	})

	// a 20% coupon was applied: 1000 -> 800
	cart.TotalAfterDiscount = 800
	cart.DiscountApplied = true
	require.NoError(t, store.Carts().Save(context.Background(), cart))

	order, err := svc.CreateCashOrder(context.Background(), userID, cart.ID, models.Address{})
	require.NoError(t, err)

	// 800 + 112 tax + 0 shipping
	assert.Equal(t, 912.0, order.TotalPrice)
}

func TestCreateCashOrder_CartNotFound(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)

	_, err := svc.CreateCashOrder(context.Background(), uuid.New(), uuid.New(), models.Address{})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}

func TestCreateCashOrder_ForeignCart(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)

	owner := uuid.New()
	product := seedProduct(t, store, 100, 5)
	cart := seedCart(t, store, owner, models.CartItem{
		ProductID: product.ID, Price: 100, Quantity: 1,
	})

	_, err := svc.CreateCashOrder(context.Background(), uuid.New(), cart.ID, models.Address{})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusOf(err))

	// nothing committed
	got, err := store.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	_, err = store.Carts().FindByID(context.Background(), cart.ID)
	assert.NoError(t, err)
}

func TestCreateCashOrder_OutOfStockRollsBack(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	// product A has stock 1 but the cart wants 2; product B is fine
	productA := seedProduct(t, store, 100, 1)
	productB := seedProduct(t, store, 50, 10)
	cart := seedCart(t, store, userID,
		models.CartItem{ProductID: productA.ID, Price: 100, Quantity: 2},
		models.CartItem{ProductID: productB.ID, Price: 50, Quantity: 1},
	)

	_, err := svc.CreateCashOrder(context.Background(), userID, cart.ID, models.Address{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	assert.Equal(t, 400, apperrors.StatusOf(err))

	// every product's counters unchanged, including B whose decrement applied
	// before the abort
	gotA, err := store.Products().FindByID(context.Background(), productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotA.Quantity)
	assert.Equal(t, 0, gotA.Sold)

	gotB, err := store.Products().FindByID(context.Background(), productB.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, gotB.Quantity)
	assert.Equal(t, 0, gotB.Sold)

	// cart survives, no order exists
	_, err = store.Carts().FindByID(context.Background(), cart.ID)
	assert.NoError(t, err)
	orders, _, err := store.Orders().FindAll(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateCardOrder_Success(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	product := seedProduct(t, store, 300, 3)
	cart := seedCart(t, store, userID, models.CartItem{
		ProductID: product.ID, Price: 300, Quantity: 1,
	})

	order, err := svc.CreateCardOrder(context.Background(), CompletedSession{
		SessionID: "sess_123",
		CartID:    cart.ID.String(),
		UserID:    userID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, "sess_123", order.StripeSessionID)
	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, 342.0, order.TotalPrice) // 300 + 14% tax
}

func TestCreateCardOrder_IdempotentOnRedelivery(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)
	userID := uuid.New()

	product := seedProduct(t, store, 100, 5)
	cart := seedCart(t, store, userID, models.CartItem{
		ProductID: product.ID, Price: 100, Quantity: 2,
	})

	sess := CompletedSession{
		SessionID: "sess_123",
		CartID:    cart.ID.String(),
		UserID:    userID.String(),
	}

	first, err := svc.CreateCardOrder(context.Background(), sess)
	require.NoError(t, err)

	// the gateway redelivers the same event
	second, err := svc.CreateCardOrder(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// exactly one order for the session, stock decremented once
	orders, _, err := store.Orders().FindAll(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	got, err := store.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 2, got.Sold)
}

func TestCreateCardOrder_InvalidMetadata(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)

	_, err := svc.CreateCardOrder(context.Background(), CompletedSession{
		SessionID: "sess_456",
		CartID:    "not-a-uuid",
		UserID:    uuid.New().String(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestConcurrentOrders_NeverOversell(t *testing.T) {
	store := newMemStore()
	svc := newCheckoutFixture(store)

	const stock = 3
	const attempts = 10
	product := seedProduct(t, store, 100, stock)

	carts := make([]*models.Cart, attempts)
	users := make([]uuid.UUID, attempts)
	for i := 0; i < attempts; i++ {
		users[i] = uuid.New()
		carts[i] = seedCart(t, store, users[i], models.CartItem{
			ProductID: product.ID, Price: 100, Quantity: 1,
		})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	outOfStock := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateCashOrder(context.Background(), users[i], carts[i].ID, models.Address{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperrors.StatusOf(err) == 400:
				outOfStock++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, attempts-stock, outOfStock)

	got, err := store.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, stock, got.Sold)
}

func TestGetCheckoutSession(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{}
	svc := NewCheckoutService(store, gateway, nil, nil, "egp", zap.NewNop())

	user := &models.User{Name: "Aya", Email: "aya@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), user))

	product := seedProduct(t, store, 500, 5)
	cart := seedCart(t, store, user.ID, models.CartItem{
		ProductID: product.ID, Price: 500, Quantity: 2,
	})

	ref, err := svc.GetCheckoutSession(context.Background(), user.ID, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", ref.ID)

	// amount is the full order total in minor units: 1000 + 14% = 1140.00
	assert.Equal(t, int64(114000), gateway.lastParams.Amount)
	assert.Equal(t, "egp", gateway.lastParams.Currency)
	assert.Equal(t, cart.ID.String(), gateway.lastParams.CartID)
	assert.Equal(t, user.ID.String(), gateway.lastParams.UserID)
	assert.Equal(t, "aya@example.com", gateway.lastParams.CustomerEmail)

	// no order was created
	orders, _, err := store.Orders().FindAll(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetCheckoutSession_GatewayError(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{err: errors.New("stripe unavailable")}
	svc := NewCheckoutService(store, gateway, nil, nil, "egp", zap.NewNop())

	user := &models.User{Name: "Aya", Email: "aya@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), user))

	product := seedProduct(t, store, 100, 5)
	cart := seedCart(t, store, user.ID, models.CartItem{
		ProductID: product.ID, Price: 100, Quantity: 1,
	})

	_, err := svc.GetCheckoutSession(context.Background(), user.ID, cart.ID)
	require.Error(t, err)
	assert.Equal(t, 502, apperrors.StatusOf(err))
}
