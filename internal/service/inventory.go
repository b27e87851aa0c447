package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mescude1/skinly-ecomm/internal/cache"
	"github.com/mescude1/skinly-ecomm/internal/events"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// DefaultLowStockThreshold is used when no threshold is configured.
const DefaultLowStockThreshold = 10

// InventoryService reads and writes stock levels.
type InventoryService interface {
	// UpdateStock overwrites the stock of a product. Unknown products yield ErrNotFound.
	UpdateStock(ctx context.Context, productID string, qty int) error

	// CheckAvailability reports whether at least one unit is in stock.
	CheckAvailability(ctx context.Context, productID string) (bool, error)

	// ReduceStock removes qty units only when that many are available; otherwise ErrInsufficientStock.
	ReduceStock(ctx context.Context, productID string, qty int) error

	// ReleaseStock puts qty units back.
	ReleaseStock(ctx context.Context, productID string, qty int) error

	// LowStock lists products at or below threshold; a non-positive threshold uses the default.
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)

	// HandleOrderEvent reacts to a consumed order event.
	HandleOrderEvent(ctx context.Context, e events.OrderEvent) error
}

type inventoryService struct {
	products  repository.ProductRepository
	feed      cache.FeedCache
	threshold int
}

func NewInventoryService(products repository.ProductRepository, feed cache.FeedCache, threshold int) InventoryService {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &inventoryService{products: products, feed: feed, threshold: threshold}
}

func (s *inventoryService) UpdateStock(ctx context.Context, productID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	ok, err := s.products.SetStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *inventoryService) CheckAvailability(ctx context.Context, productID string) (bool, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return p.InStock(), nil
}

func (s *inventoryService) ReduceStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	ok, err := s.products.DecrementStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !ok {
		return ErrInsufficientStock
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *inventoryService) ReleaseStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.products.IncrementStock(ctx, productID, qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("increment stock: %w", err)
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *inventoryService) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	return s.products.LowStock(ctx, threshold)
}

// HandleOrderEvent drops the cached feed and warns about every ordered product
// whose stock is now at or below the threshold.
func (s *inventoryService) HandleOrderEvent(ctx context.Context, e events.OrderEvent) error {
	log := logging.Ctx(ctx).With().Str("component", "inventory").Str("order_id", e.OrderID).Str("event", e.Type).Logger()

	s.invalidateFeed(ctx)

	for _, it := range e.Items {
		p, err := s.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Str("product_id", it.ProductID).Msg("event_product_missing")
			continue
		}
		if err != nil {
			return fmt.Errorf("load product %s: %w", it.ProductID, err)
		}
		if p.StockQuantity <= s.threshold {
			log.Warn().
				Str("product_id", p.ID).
				Str("product", p.Name).
				Int("stock", p.StockQuantity).
				Int("threshold", s.threshold).
				Msg("low_stock")
		}
	}
	return nil
}

func (s *inventoryService) invalidateFeed(ctx context.Context) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Invalidate(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("feed_cache_invalidate_failed")
	}
}
