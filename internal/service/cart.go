package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/pricing"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

// CartView is the cart page: lines, totals and suggestions.
type CartView struct {
	Items           []model.CartItem `json:"items"`
	Totals          pricing.Totals   `json:"totals"`
	Recommendations []model.Product  `json:"recommendations"`
}

// CartService manages the signed-in user's cart. Items are always scoped to the caller's cart.
type CartService interface {
	View(ctx context.Context, userID string) (*CartView, error)

	// Add puts qty units of a product in the cart, merging with an existing line.
	// It refuses when the resulting quantity would exceed the stock.
	Add(ctx context.Context, userID, productID string, qty int) (*model.CartItem, error)

	// Update sets a line's quantity. A quantity of zero or less removes the line.
	Update(ctx context.Context, userID, itemID string, qty int) error

	Remove(ctx context.Context, userID, itemID string) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	recs     RecommendationService
	rules    pricing.Rules
	images   imageURLs
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, recs RecommendationService, rules pricing.Rules, store storage.Storage) CartService {
	return &cartService{carts: carts, products: products, recs: recs, rules: rules, images: imageURLs{store: store}}
}

func (s *cartService) View(ctx context.Context, userID string) (*CartView, error) {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	s.images.fillCart(ctx, items)

	recs, err := s.recs.ForCart(ctx, userID, items)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("cart_recommendations_failed")
		recs = []model.Product{}
	}

	return &CartView{
		Items:           items,
		Totals:          s.rules.Compute(items, decimal.Zero),
		Recommendations: recs,
	}, nil
}

func (s *cartService) Add(ctx context.Context, userID, productID string, qty int) (*model.CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	inCart, err := s.carts.QuantityOf(ctx, cartID, productID)
	if err != nil {
		return nil, fmt.Errorf("load cart quantity: %w", err)
	}
	if qty > product.StockQuantity-inCart {
		return nil, ErrInsufficientStock
	}

	item, err := s.carts.AddItem(ctx, cartID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	item.Product = *product
	s.images.fillOne(ctx, &item.Product)
	return item, nil
}

func (s *cartService) Update(ctx context.Context, userID, itemID string, qty int) error {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	item, err := s.carts.FindItem(ctx, cartID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load cart item: %w", err)
	}

	if qty <= 0 {
		if _, err := s.carts.RemoveItem(ctx, cartID, itemID); err != nil {
			return fmt.Errorf("remove cart item: %w", err)
		}
		return nil
	}
	if qty > item.Product.StockQuantity {
		return ErrInsufficientStock
	}
	if err := s.carts.SetQuantity(ctx, cartID, itemID, qty); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (s *cartService) Remove(ctx context.Context, userID, itemID string) error {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	ok, err := s.carts.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
