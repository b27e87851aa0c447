package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

const (
	WishlistAdded   = "added"
	WishlistRemoved = "removed"
)

type WishlistService interface {
	List(ctx context.Context, userID string) ([]model.Product, error)
	// Toggle adds the product when absent and removes it otherwise, returning WishlistAdded or WishlistRemoved.
	Toggle(ctx context.Context, userID, productID string) (string, error)
}

type wishlistService struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
	images   imageURLs
}

func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository, store storage.Storage) WishlistService {
	return &wishlistService{wishlist: wishlist, products: products, images: imageURLs{store: store}}
}

func (s *wishlistService) List(ctx context.Context, userID string) ([]model.Product, error) {
	products, err := s.wishlist.ListProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.images.fill(ctx, products)
	return products, nil
}

func (s *wishlistService) Toggle(ctx context.Context, userID, productID string) (string, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load product: %w", err)
	}

	removed, err := s.wishlist.Remove(ctx, userID, productID)
	if err != nil {
		return "", fmt.Errorf("remove wishlist item: %w", err)
	}
	if removed {
		return WishlistRemoved, nil
	}
	if err := s.wishlist.Add(ctx, userID, productID); err != nil {
		return "", fmt.Errorf("add wishlist item: %w", err)
	}
	return WishlistAdded, nil
}
