package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a product line in a user's cart, joined with its product.
type CartItem struct {
	ID        string  `json:"id"`
	CartID    string  `json:"cart_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// LineTotal is price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Status          OrderStatus       `json:"status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Discount        decimal.Decimal   `json:"discount"`
	Shipping        decimal.Decimal   `json:"shipping"`
	Tax             decimal.Decimal   `json:"tax"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	ShippingAddress string            `json:"shipping_address"`
	PhoneNumber     string            `json:"phone_number"`
	PaymentMethod   PaymentMethodType `json:"payment_method"`
	Items           []OrderItem       `json:"items,omitempty"`
	Payment         *Payment          `json:"payment,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Payment struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"order_id"`
	Amount        decimal.Decimal   `json:"amount"`
	PaymentMethod PaymentMethodType `json:"payment_method"`
	Status        PaymentStatus     `json:"status"`
	PaymentDate   time.Time         `json:"payment_date"`
}

// CouponUse records a coupon redemption performed as part of placing an order.
type CouponUse struct {
	CouponID       string
	DiscountAmount decimal.Decimal
}
