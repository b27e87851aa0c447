package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// ReviewResult reports the stored review and the product's refreshed rating.
type ReviewResult struct {
	Review        model.Review `json:"review"`
	Created       bool         `json:"created"`
	ProductRating float64      `json:"product_rating"`
}

// ReviewService writes product reviews. One review per user and product; writing again updates it.
type ReviewService interface {
	Add(ctx context.Context, userID, productID string, rating int, comment string) (*ReviewResult, error)
}

type reviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	recs     RecommendationService
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, recs RecommendationService) ReviewService {
	return &reviewService{reviews: reviews, products: products, recs: recs}
}

func (s *reviewService) Add(ctx context.Context, userID, productID string, rating int, comment string) (*ReviewResult, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	r := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	created, err := s.reviews.Upsert(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	avg, err := s.products.RefreshRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("refresh rating: %w", err)
	}

	feedback := "negative"
	if rating >= 4 {
		feedback = "positive"
	}
	if err := s.recs.UpdateFromFeedback(ctx, userID, productID, feedback); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("product_id", productID).Msg("taste_feedback_failed")
	}

	return &ReviewResult{Review: *r, Created: created, ProductRating: avg}, nil
}
