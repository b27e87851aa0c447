package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	DiscountType       DiscountType    `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	UsageLimit         *int            `json:"usage_limit,omitempty"`
	UsedCount          int             `json:"used_count"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidUntil         time.Time       `json:"valid_until"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// IsValidAt reports whether the coupon can be redeemed at now.
func (c Coupon) IsValidAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	return c.UsageLimit == nil || c.UsedCount < *c.UsageLimit
}

// AvailableCoupon is a coupon assigned to a user.
type AvailableCoupon struct {
	Coupon     Coupon    `json:"coupon"`
	AssignedAt time.Time `json:"assigned_at"`
	IsUsed     bool      `json:"is_used"`
}
