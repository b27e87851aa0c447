package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	repoMocks "github.com/mescude1/skinly-ecomm/internal/repository/mocks"
)

func TestReview_Add(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{ID: "p1", BrandID: "b1", ColorID: "c1", ProductType: model.ProductTypeBlush}

	newSvc := func() (ReviewService, *repoMocks.MockReviewRepository, *repoMocks.MockProductRepository, *repoMocks.MockTasteRepository) {
		reviews := new(repoMocks.MockReviewRepository)
		products := new(repoMocks.MockProductRepository)
		tastes := new(repoMocks.MockTasteRepository)
		recs := NewRecommendationService(new(repoMocks.MockUserRepository), tastes, products, nil)
		return NewReviewService(reviews, products, recs), reviews, products, tastes
	}

	t.Run("rating out of range", func(t *testing.T) {
		svc, _, _, _ := newSvc()
		_, err := svc.Add(ctx, "u1", "p1", 6, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
		_, err = svc.Add(ctx, "u1", "p1", 0, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("new positive review refreshes rating and feeds taste", func(t *testing.T) {
		svc, reviews, products, tastes := newSvc()
		products.On("FindByID", ctx, "p1").Return(product, nil)
		reviews.On("Upsert", ctx, mock.MatchedBy(func(r *model.Review) bool {
			return r.UserID == "u1" && r.Rating == 5 && r.Comment == "lovely"
		})).Return(true, nil)
		products.On("RefreshRating", ctx, "p1").Return(4.5, nil)
		tastes.On("Get", ctx, "u1").Return(&model.TasteProfile{UserID: "u1"}, nil)
		tastes.On("Save", ctx, mock.MatchedBy(func(p *model.TasteProfile) bool {
			return p.HasColor("c1") && p.BrandAffinities["b1"] == 0.1
		})).Return(nil)

		res, err := svc.Add(ctx, "u1", "p1", 5, " lovely ")
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, 4.5, res.ProductRating)
		tastes.AssertExpectations(t)
	})

	t.Run("updated low review does not change taste", func(t *testing.T) {
		svc, reviews, products, tastes := newSvc()
		products.On("FindByID", ctx, "p1").Return(product, nil)
		reviews.On("Upsert", ctx, mock.Anything).Return(false, nil)
		products.On("RefreshRating", ctx, "p1").Return(2.0, nil)
		tastes.On("Get", ctx, "u1").Return(&model.TasteProfile{UserID: "u1"}, nil)

		res, err := svc.Add(ctx, "u1", "p1", 2, "meh")
		require.NoError(t, err)
		assert.False(t, res.Created)
		tastes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("taste failure does not fail the review", func(t *testing.T) {
		svc, reviews, products, tastes := newSvc()
		products.On("FindByID", ctx, "p1").Return(product, nil)
		reviews.On("Upsert", ctx, mock.Anything).Return(true, nil)
		products.On("RefreshRating", ctx, "p1").Return(4.0, nil)
		tastes.On("Get", ctx, "u1").Return(nil, errors.New("db down"))

		_, err := svc.Add(ctx, "u1", "p1", 4, "")
		assert.NoError(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, products, _ := newSvc()
		products.On("FindByID", ctx, "x").Return(nil, sql.ErrNoRows)
		_, err := svc.Add(ctx, "u1", "x", 4, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
