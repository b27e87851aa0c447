// Package pricing computes cart and order totals and coupon discounts.
// All arithmetic is exact decimal; amounts are rounded half-up to cents.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Rules are the storefront's shipping and tax settings.
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		ShippingFee:           decimal.RequireFromString("5.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// RulesFromConfig parses the configured amounts.
func RulesFromConfig(cfg config.StoreConfig) (Rules, error) {
	var (
		r   Rules
		err error
	)
	if r.FreeShippingThreshold, err = decimal.NewFromString(cfg.FreeShippingThreshold); err != nil {
		return Rules{}, fmt.Errorf("free shipping threshold: %w", err)
	}
	if r.ShippingFee, err = decimal.NewFromString(cfg.ShippingFee); err != nil {
		return Rules{}, fmt.Errorf("shipping fee: %w", err)
	}
	if r.TaxRate, err = decimal.NewFromString(cfg.TaxRate); err != nil {
		return Rules{}, fmt.Errorf("tax rate: %w", err)
	}
	if r.FreeShippingThreshold.IsNegative() || r.ShippingFee.IsNegative() || r.TaxRate.IsNegative() {
		return Rules{}, fmt.Errorf("pricing rules must not be negative")
	}
	return r, nil
}

// Totals is the price breakdown shown on the cart and stored on orders.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Shipping           decimal.Decimal `json:"shipping"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
	FreeShippingNeeded decimal.Decimal `json:"free_shipping_needed"`
}

// Subtotal sums price × quantity over the items.
func Subtotal(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Compute applies shipping and tax to the items. Shipping is decided on the
// subtotal before discount; tax is charged on the discounted subtotal.
func (r Rules) Compute(items []model.CartItem, discount decimal.Decimal) Totals {
	subtotal := Subtotal(items)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	shipping := r.ShippingFee
	if subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(r.TaxRate).Round(2)

	needed := r.FreeShippingThreshold.Sub(subtotal)
	if needed.IsNegative() {
		needed = decimal.Zero
	}

	return Totals{
		Subtotal:           subtotal,
		Discount:           discount,
		Shipping:           shipping,
		Tax:                tax,
		Total:              taxable.Add(shipping).Add(tax),
		FreeShippingNeeded: needed,
	}
}

// CouponDiscount returns what c takes off orderTotal at now. It is zero when the
// coupon cannot be redeemed or the order is below the coupon's minimum.
// Percentage discounts round half to even at the cent.
func CouponDiscount(c *model.Coupon, orderTotal decimal.Decimal, now time.Time) decimal.Decimal {
	if c == nil || !c.IsValidAt(now) {
		return decimal.Zero
	}
	if orderTotal.LessThan(c.MinimumOrderAmount) {
		return decimal.Zero
	}
	switch c.DiscountType {
	case model.DiscountPercentage:
		return orderTotal.Mul(c.DiscountValue).Div(hundred).RoundBank(2)
	case model.DiscountFixed:
		return decimal.Min(c.DiscountValue, orderTotal)
	default:
		return decimal.Zero
	}
}
