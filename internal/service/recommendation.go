package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

const (
	affinityStep    = 0.1
	maxAffinity     = 1.0
	cartSuggestions = 4
)

var positiveFeedback = map[string]bool{"like": true, "love": true, "positive": true}

// IsPositiveFeedback reports whether feedback counts as a like.
func IsPositiveFeedback(feedback string) bool {
	return positiveFeedback[strings.ToLower(strings.TrimSpace(feedback))]
}

// RecommendationService filters the catalog through a user's stored preferences.
// No scoring is involved: every preference the user has set narrows the result.
type RecommendationService interface {
	// Generate returns up to limit in-stock products matching all non-empty preferences.
	// Users without a taste profile get plain in-stock products.
	Generate(ctx context.Context, userID string, limit int) ([]model.Product, error)

	// UpdateFromFeedback folds a reaction to a product into the taste profile.
	// Negative feedback leaves the profile untouched.
	UpdateFromFeedback(ctx context.Context, userID, productID, feedback string) error

	// ForCart suggests in-stock products sharing a brand or type with the cart, best rated first.
	ForCart(ctx context.Context, userID string, items []model.CartItem) ([]model.Product, error)
}

type recommendationService struct {
	users    repository.UserRepository
	tastes   repository.TasteRepository
	products repository.ProductRepository
	images   imageURLs
}

func NewRecommendationService(users repository.UserRepository, tastes repository.TasteRepository, products repository.ProductRepository, store storage.Storage) RecommendationService {
	return &recommendationService{users: users, tastes: tastes, products: products, images: imageURLs{store: store}}
}

func (s *recommendationService) Generate(ctx context.Context, userID string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	f := repository.ProductFilter{InStockOnly: true}
	if userID != "" {
		if err := s.applyPreferences(ctx, userID, &f); err != nil {
			return nil, err
		}
	}

	products, err := s.products.Find(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("find recommendations: %w", err)
	}
	s.images.fill(ctx, products)
	return products, nil
}

func (s *recommendationService) applyPreferences(ctx context.Context, userID string, f *repository.ProductFilter) error {
	taste, err := s.tastes.Get(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load taste profile: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if user.SkinType != nil {
		f.SkinTypes = []model.SkinType{*user.SkinType}
	}

	f.ProductTypes = taste.PreferredProductTypes
	f.ColorIDs = taste.PreferredColorIDs
	f.FinishTypes = taste.PreferredFinishTypes
	if pr := taste.PriceRange; pr != nil {
		lo, hi := pr.Min, pr.Max
		f.MinPrice, f.MaxPrice = &lo, &hi
	}

	brands, err := s.tastes.PreferredBrands(ctx, userID)
	if err != nil {
		return fmt.Errorf("load preferred brands: %w", err)
	}
	f.BrandIDs = brands
	return nil
}

func (s *recommendationService) UpdateFromFeedback(ctx context.Context, userID, productID, feedback string) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load product: %w", err)
	}

	taste, err := s.tastes.Get(ctx, userID)
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		taste, created = &model.TasteProfile{UserID: userID}, true
	case err != nil:
		return fmt.Errorf("load taste profile: %w", err)
	}

	positive := IsPositiveFeedback(feedback)
	if positive {
		applyLike(taste, product)
	}
	if !positive && !created {
		return nil
	}
	if err := s.tastes.Save(ctx, taste); err != nil {
		return fmt.Errorf("save taste profile: %w", err)
	}
	return nil
}

// applyLike adds the product's color, type and finish when absent and raises its brand affinity.
func applyLike(taste *model.TasteProfile, p *model.Product) {
	if p.ColorID != "" && !taste.HasColor(p.ColorID) {
		taste.PreferredColorIDs = append(taste.PreferredColorIDs, p.ColorID)
	}
	if p.ProductType != "" && !taste.HasProductType(p.ProductType) {
		taste.PreferredProductTypes = append(taste.PreferredProductTypes, p.ProductType)
	}
	if p.FinishType != "" && !taste.HasFinishType(p.FinishType) {
		taste.PreferredFinishTypes = append(taste.PreferredFinishTypes, p.FinishType)
	}

	if p.BrandID == "" {
		return
	}
	if taste.BrandAffinities == nil {
		taste.BrandAffinities = make(map[string]float64)
	}
	score, ok := taste.BrandAffinities[p.BrandID]
	if !ok {
		taste.BrandAffinities[p.BrandID] = affinityStep
		return
	}
	// Round to one decimal so repeated steps land exactly on 1.0.
	taste.BrandAffinities[p.BrandID] = math.Min(maxAffinity, math.Round((score+affinityStep)*10)/10)
}

func (s *recommendationService) ForCart(ctx context.Context, userID string, items []model.CartItem) ([]model.Product, error) {
	if len(items) == 0 {
		return []model.Product{}, nil
	}

	f := repository.ProductFilter{InStockOnly: true, OrderBy: repository.OrderRatingDesc}
	seenBrand := map[string]bool{}
	seenType := map[model.ProductType]bool{}
	for _, it := range items {
		f.ExcludeIDs = append(f.ExcludeIDs, it.ProductID)
		if b := it.Product.BrandID; b != "" && !seenBrand[b] {
			seenBrand[b] = true
			f.SimilarBrandIDs = append(f.SimilarBrandIDs, b)
		}
		if t := it.Product.ProductType; t != "" && !seenType[t] {
			seenType[t] = true
			f.SimilarTypes = append(f.SimilarTypes, t)
		}
	}

	if userID != "" {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		if user != nil && user.SkinType != nil {
			f.SkinTypes = []model.SkinType{*user.SkinType}
		}
	}

	products, err := s.products.Find(ctx, f, cartSuggestions)
	if err != nil {
		return nil, fmt.Errorf("find cart suggestions: %w", err)
	}
	s.images.fill(ctx, products)
	return products, nil
}
