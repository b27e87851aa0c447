package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/model"
)

type CartRepository interface {
	// GetOrCreate returns the id of the user's cart, creating it on first use.
	GetOrCreate(ctx context.Context, userID string) (string, error)
	Items(ctx context.Context, cartID string) ([]model.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID string) (*model.CartItem, error)
	// QuantityOf returns the quantity of productID already in the cart, 0 if absent.
	QuantityOf(ctx context.Context, cartID, productID string) (int, error)
	// AddItem inserts the product or increments the existing line, returning the resulting line.
	AddItem(ctx context.Context, cartID, productID string, qty int) (*model.CartItem, error)
	SetQuantity(ctx context.Context, cartID, itemID string, qty int) error
	// RemoveItem reports whether a row was deleted.
	RemoveItem(ctx context.Context, cartID, itemID string) (bool, error)
}

// NewOrder is everything PlaceOrder writes in one transaction.
type NewOrder struct {
	UserID          string
	CartID          string
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   model.PaymentMethodType
	Items           []model.OrderItem
	Coupon          *model.CouponUse
}

type OrderRepository interface {
	// PlaceOrder creates the order, its items and payment, decrements stock, redeems the
	// coupon and empties the cart atomically. A failed decrement aborts with ErrStockConflict.
	PlaceOrder(ctx context.Context, o NewOrder) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Order, error)
	// FindByID loads an order owned by userID with its items and payment.
	FindByID(ctx context.Context, userID, id string) (*model.Order, error)
	// Cancel moves a PENDING order to CANCELED and restocks its items.
	// ErrStateConflict means the order was no longer pending.
	Cancel(ctx context.Context, userID, id string) error
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	// ListAvailable returns coupons assigned to the user that are unused and active.
	ListAvailable(ctx context.Context, userID string) ([]model.AvailableCoupon, error)
}

type ReviewRepository interface {
	// Upsert writes the user's review of a product, reporting whether it was newly created.
	Upsert(ctx context.Context, r *model.Review) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Review, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.Review, error)
}

type NewsletterRepository interface {
	FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error)
	CreateSubscriber(ctx context.Context, s *model.NewsletterSubscriber) (*model.NewsletterSubscriber, error)
	SetActive(ctx context.Context, email string, active bool) (bool, error)
	ActiveSubscribers(ctx context.Context) ([]model.NewsletterSubscriber, error)
	// CreateCampaign stores the campaign and its featured products.
	CreateCampaign(ctx context.Context, c *model.NewsletterCampaign) (*model.NewsletterCampaign, error)
	SetRecipients(ctx context.Context, campaignID string, n int) error
}
