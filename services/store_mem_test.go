package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecommerce-api/models"
	"ecommerce-api/repository"
)

// memStore is an in-memory repository.Store for tests. Transaction snapshots
// the state and restores it when the callback fails, mirroring the rollback
// the gorm store gets from Postgres; a single mutex serializes transactions
// the way the database serializes conflicting writes.
type memState struct {
	products map[uuid.UUID]*models.Product
	carts    map[uuid.UUID]*models.Cart
	orders   map[uuid.UUID]*models.Order
	coupons  map[string]*models.Coupon
	users    map[uuid.UUID]*models.User
	pricing  *models.PricingSettings
}

func newMemState() *memState {
	return &memState{
		products: make(map[uuid.UUID]*models.Product),
		carts:    make(map[uuid.UUID]*models.Cart),
		orders:   make(map[uuid.UUID]*models.Order),
		coupons:  make(map[string]*models.Coupon),
		users:    make(map[uuid.UUID]*models.User),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, cart := range s.carts {
		cp := *cart
		cp.Items = append([]models.CartItem(nil), cart.Items...)
		c.carts[id] = &cp
	}
	for id, o := range s.orders {
		cp := *o
		cp.Items = append([]models.OrderItem(nil), o.Items...)
		c.orders[id] = &cp
	}
	for name, cpn := range s.coupons {
		cp := *cpn
		c.coupons[name] = &cp
	}
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	if s.pricing != nil {
		cp := *s.pricing
		c.pricing = &cp
	}
	return c
}

type memStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

func newMemStore() *memStore {
	return &memStore{mu: &sync.Mutex{}, state: newMemState()}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) Transaction(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &memStore{mu: s.mu, state: s.state, inTx: true}
	if err := fn(tx); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

func (s *memStore) Users() repository.UserRepository       { return memUserRepo{s} }
func (s *memStore) Products() repository.ProductRepository { return memProductRepo{s} }
func (s *memStore) Carts() repository.CartRepository       { return memCartRepo{s} }
func (s *memStore) Orders() repository.OrderRepository     { return memOrderRepo{s} }
func (s *memStore) Coupons() repository.CouponRepository   { return memCouponRepo{s} }
func (s *memStore) Pricing() repository.PricingRepository  { return memPricingRepo{s} }

// --- products ---

type memProductRepo struct{ s *memStore }

func (r memProductRepo) Create(_ context.Context, product *models.Product) error {
	defer r.s.lock()()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	r.s.state.products[product.ID] = &cp
	return nil
}

func (r memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.state.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memProductRepo) FindAll(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	defer r.s.lock()()
	var out []models.Product
	for _, p := range r.s.state.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r memProductRepo) DecrementStock(_ context.Context, items []models.OrderItem) (int64, error) {
	defer r.s.lock()()
	var applied int64
	for _, item := range items {
		p, ok := r.s.state.products[item.ProductID]
		if !ok || p.Quantity < item.Quantity {
			continue
		}
		p.Quantity -= item.Quantity
		p.Sold += item.Quantity
		applied++
	}
	return applied, nil
}

// --- carts ---

type memCartRepo struct{ s *memStore }

func (r memCartRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	defer r.s.lock()()
	cart, ok := r.s.state.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r memCartRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	defer r.s.lock()()
	for _, cart := range r.s.state.carts {
		if cart.UserID == userID {
			cp := *cart
			cp.Items = append([]models.CartItem(nil), cart.Items...)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCartRepo) Create(_ context.Context, cart *models.Cart) error {
	defer r.s.lock()()
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	for i := range cart.Items {
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
		cart.Items[i].CartID = cart.ID
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	r.s.state.carts[cart.ID] = &cp
	return nil
}

func (r memCartRepo) Save(_ context.Context, cart *models.Cart) error {
	defer r.s.lock()()
	for i := range cart.Items {
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
		cart.Items[i].CartID = cart.ID
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	r.s.state.carts[cart.ID] = &cp
	return nil
}

func (r memCartRepo) RemoveItem(_ context.Context, cartID, itemID uuid.UUID) error {
	defer r.s.lock()()
	cart, ok := r.s.state.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, item := range cart.Items {
		if item.ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memCartRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	delete(r.s.state.carts, id)
	return nil
}

// --- orders ---

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Create(_ context.Context, order *models.Order) error {
	defer r.s.lock()()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	r.s.state.orders[order.ID] = &cp
	return nil
}

func (r memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.state.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r memOrderRepo) FindByIDAndUserID(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.state.orders[id]
	if !ok || o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.state.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r memOrderRepo) FindAll(_ context.Context, _, _ int) ([]models.Order, int64, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.state.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r memOrderRepo) FindByStripeSession(_ context.Context, sessionID string) (*models.Order, error) {
	defer r.s.lock()()
	for _, o := range r.s.state.orders {
		if o.StripeSessionID != "" && o.StripeSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memOrderRepo) Save(_ context.Context, order *models.Order) error {
	defer r.s.lock()()
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	r.s.state.orders[order.ID] = &cp
	return nil
}

// --- coupons ---

type memCouponRepo struct{ s *memStore }

func (r memCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	defer r.s.lock()()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	cp := *coupon
	r.s.state.coupons[coupon.Name] = &cp
	return nil
}

func (r memCouponRepo) FindActive(_ context.Context, name string, now time.Time) (*models.Coupon, error) {
	defer r.s.lock()()
	c, ok := r.s.state.coupons[name]
	if !ok || !c.Active || !c.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCouponRepo) FindAll(_ context.Context) ([]models.Coupon, error) {
	defer r.s.lock()()
	var out []models.Coupon
	for _, c := range r.s.state.coupons {
		out = append(out, *c)
	}
	return out, nil
}

func (r memCouponRepo) Deactivate(_ context.Context, name string) error {
	defer r.s.lock()()
	c, ok := r.s.state.coupons[name]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Active = false
	return nil
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *models.User) error {
	defer r.s.lock()()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.state.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.state.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

// --- pricing ---

type memPricingRepo struct{ s *memStore }

func (r memPricingRepo) Get(_ context.Context) (*models.PricingSettings, error) {
	defer r.s.lock()()
	if r.s.state.pricing == nil {
		return models.DefaultPricingSettings(), nil
	}
	cp := *r.s.state.pricing
	return &cp, nil
}

func (r memPricingRepo) Update(_ context.Context, taxPercentage, shippingPrice float64) (*models.PricingSettings, error) {
	defer r.s.lock()()
	r.s.state.pricing = &models.PricingSettings{
		TaxPercentage: taxPercentage,
		ShippingPrice: shippingPrice,
	}
	cp := *r.s.state.pricing
	return &cp, nil
}
