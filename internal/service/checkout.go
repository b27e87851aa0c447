package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/cache"
	"github.com/mescude1/skinly-ecomm/internal/events"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/pricing"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// CheckoutRequest is what the buyer submits to place an order.
type CheckoutRequest struct {
	ShippingAddressID string
	PaymentMethod     model.PaymentMethodType
	CouponCode        string
	IdempotencyKey    string
}

// CheckoutPreview is shown before the order is placed.
type CheckoutPreview struct {
	Items     []model.CartItem        `json:"items"`
	Totals    pricing.Totals          `json:"totals"`
	Addresses []model.ShippingAddress `json:"shipping_addresses"`
}

// CheckoutService turns carts into orders and manages the buyer's orders afterwards.
type CheckoutService interface {
	// Preview prices the cart, applying couponCode when it is redeemable.
	Preview(ctx context.Context, userID, couponCode string) (*CheckoutPreview, error)

	// PlaceOrder validates the request and writes the order in one transaction.
	// Stock is decremented conditionally; if any line cannot be served nothing is written.
	PlaceOrder(ctx context.Context, userID string, req CheckoutRequest) (*model.Order, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)

	// GetOrder returns an order with its items. Orders of other users yield ErrNotFound.
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)

	// CancelOrder cancels a pending order and puts its stock back.
	CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
}

type checkoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	coupons   repository.CouponRepository
	idem      cache.IdempotencyStore
	feed      cache.FeedCache
	publisher events.Publisher
	rules     pricing.Rules
	now       func() time.Time
}

// CheckoutDeps groups the collaborators of the checkout service.
type CheckoutDeps struct {
	Carts     repository.CartRepository
	Orders    repository.OrderRepository
	Addresses repository.AddressRepository
	Coupons   repository.CouponRepository
	Idem      cache.IdempotencyStore
	Feed      cache.FeedCache
	Publisher events.Publisher
	Rules     pricing.Rules
}

func NewCheckoutService(d CheckoutDeps) CheckoutService {
	return &checkoutService{
		carts:     d.Carts,
		orders:    d.Orders,
		addresses: d.Addresses,
		coupons:   d.Coupons,
		idem:      d.Idem,
		feed:      d.Feed,
		publisher: d.Publisher,
		rules:     d.Rules,
		now:       time.Now,
	}
}

func (s *checkoutService) loadCart(ctx context.Context, userID string) (string, []model.CartItem, error) {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("load cart: %w", err)
	}
	items, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return "", nil, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return "", nil, ErrCartEmpty
	}
	return cartID, items, nil
}

// couponDiscount resolves a coupon code against the cart subtotal.
func (s *checkoutService) couponDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, decimal.Zero, nil
	}
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, decimal.Zero, ErrCouponInvalid
		}
		return nil, decimal.Zero, fmt.Errorf("load coupon: %w", err)
	}
	discount := pricing.CouponDiscount(c, subtotal, s.now())
	if !discount.IsPositive() {
		return nil, decimal.Zero, ErrCouponInvalid
	}
	return c, discount, nil
}

func (s *checkoutService) Preview(ctx context.Context, userID, couponCode string) (*CheckoutPreview, error) {
	_, items, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, discount, err := s.couponDiscount(ctx, couponCode, pricing.Subtotal(items))
	if err != nil {
		return nil, err
	}
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	return &CheckoutPreview{
		Items:     items,
		Totals:    s.rules.Compute(items, discount),
		Addresses: addresses,
	}, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, userID string, req CheckoutRequest) (*model.Order, error) {
	cartID, items, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.ShippingAddressID) == "" {
		return nil, ErrShippingAddressRequired
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	addr, err := s.addresses.FindByID(ctx, userID, req.ShippingAddressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidShippingAddress
		}
		return nil, fmt.Errorf("load shipping address: %w", err)
	}

	for _, it := range items {
		if it.Quantity > it.Product.StockQuantity {
			return nil, fmt.Errorf("%s: %w", it.Product.Name, ErrInsufficientStock)
		}
	}

	coupon, discount, err := s.couponDiscount(ctx, req.CouponCode, pricing.Subtotal(items))
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		claimed, err := s.idem.Claim(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			return nil, ErrDuplicateRequest
		}
	}

	totals := s.rules.Compute(items, discount)
	in := repository.NewOrder{
		UserID:          userID,
		CartID:          cartID,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		ShippingAddress: addr.OneLine(),
		PhoneNumber:     addr.Phone,
		PaymentMethod:   req.PaymentMethod,
		Items:           make([]model.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		in.Items = append(in.Items, model.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			Price:       it.Product.Price,
		})
	}
	if coupon != nil {
		in.Coupon = &model.CouponUse{CouponID: coupon.ID, DiscountAmount: totals.Discount}
	}

	order, err := s.orders.PlaceOrder(ctx, in)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		switch {
		case errors.Is(err, repository.ErrStockConflict):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		case errors.Is(err, repository.ErrCouponUnavailable):
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("total", order.TotalPrice.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order_placed")

	s.afterStockChange(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *checkoutService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("idempotency_release_failed")
	}
}

// afterStockChange publishes the order event and drops the cached feed. Neither failure is fatal.
func (s *checkoutService) afterStockChange(ctx context.Context, eventType string, order *model.Order) {
	log := logging.Ctx(ctx)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order, s.now())); err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("order_event_publish_failed")
		}
	}
	if s.feed != nil {
		if err := s.feed.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("feed_cache_invalidate_failed")
		}
	}
}

func (s *checkoutService) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID, 0)
}

func (s *checkoutService) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *checkoutService) CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderNotCancelable
	}

	if err := s.orders.Cancel(ctx, userID, orderID); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrOrderNotCancelable
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	order.Status = model.OrderStatusCanceled

	logging.Ctx(ctx).Info().Str("order_id", order.ID).Str("user_id", userID).Msg("order_canceled")
	s.afterStockChange(ctx, events.OrderCanceled, order)
	return order, nil
}
