package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceRange bounds the prices a user is interested in.
type PriceRange struct {
	Min decimal.Decimal `json:"min_price"`
	Max decimal.Decimal `json:"max_price"`
}

// TasteProfile is the stored preference record used to filter catalog queries.
// Product and finish types are persisted as comma-joined strings.
type TasteProfile struct {
	UserID                string             `json:"user_id"`
	PreferredProductTypes []ProductType      `json:"preferred_product_types"`
	PreferredFinishTypes  []FinishType       `json:"preferred_finish_types"`
	PreferredColorIDs     []string           `json:"preferred_color_ids"`
	PriceRange            *PriceRange        `json:"price_range,omitempty"`
	BrandAffinities       map[string]float64 `json:"brand_affinities,omitempty"`
}

// HasProductType reports whether t is already preferred.
func (p *TasteProfile) HasProductType(t ProductType) bool { return contains(p.PreferredProductTypes, t) }

// HasFinishType reports whether f is already preferred.
func (p *TasteProfile) HasFinishType(f FinishType) bool { return contains(p.PreferredFinishTypes, f) }

// HasColor reports whether the color id is already preferred.
func (p *TasteProfile) HasColor(id string) bool { return contains(p.PreferredColorIDs, id) }

// SplitList parses a comma-joined column into its non-empty parts.
func SplitList[T ~string](s string) []T {
	out := make([]T, 0)
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, T(v))
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList[T ~string](items []T) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if v := strings.TrimSpace(string(it)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ",")
}
