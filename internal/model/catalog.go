package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Color struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

// Product is a catalog item. Brand and Color are populated on reads that join them.
// SkinTypeCompatibility nil means the product suits every skin type.
type Product struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	BrandID               string          `json:"brand_id"`
	BrandName             string          `json:"brand_name"`
	ProductType           ProductType     `json:"product_type"`
	FinishType            FinishType      `json:"finish_type"`
	ColorID               string          `json:"color_id"`
	ColorName             string          `json:"color_name"`
	Price                 decimal.Decimal `json:"price"`
	SkinTypeCompatibility *SkinType       `json:"skin_type_compatibility,omitempty"`
	StockQuantity         int             `json:"stock_quantity"`
	Rating                float64         `json:"rating"`
	ImageKey              string          `json:"-"`
	ImageURL              string          `json:"image_url,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.StockQuantity > 0 }
