package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	repoMocks "github.com/mescude1/skinly-ecomm/internal/repository/mocks"
)

type recDeps struct {
	users    *repoMocks.MockUserRepository
	tastes   *repoMocks.MockTasteRepository
	products *repoMocks.MockProductRepository
}

func newRecService() (RecommendationService, recDeps) {
	d := recDeps{
		users:    new(repoMocks.MockUserRepository),
		tastes:   new(repoMocks.MockTasteRepository),
		products: new(repoMocks.MockProductRepository),
	}
	return NewRecommendationService(d.users, d.tastes, d.products, nil), d
}

func skin(t model.SkinType) *model.SkinType { return &t }

func TestRecommendation_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("no taste profile falls back to in-stock products", func(t *testing.T) {
		svc, d := newRecService()
		d.tastes.On("Get", ctx, "u1").Return(nil, sql.ErrNoRows)
		d.products.On("Find", ctx, repository.ProductFilter{InStockOnly: true}, 6).
			Return([]model.Product{{ID: "p1"}}, nil)

		got, err := svc.Generate(ctx, "u1", 6)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, PlaceholderImage, got[0].ImageURL)
		d.products.AssertExpectations(t)
	})

	t.Run("only non-empty preferences are applied", func(t *testing.T) {
		svc, d := newRecService()
		d.tastes.On("Get", ctx, "u1").Return(&model.TasteProfile{
			UserID:               "u1",
			PreferredFinishTypes: []model.FinishType{model.FinishTypeMatte},
		}, nil)
		d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
		d.tastes.On("PreferredBrands", ctx, "u1").Return([]string{}, nil)
		d.products.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
			return f.InStockOnly &&
				len(f.FinishTypes) == 1 && f.FinishTypes[0] == model.FinishTypeMatte &&
				len(f.ProductTypes) == 0 && len(f.ColorIDs) == 0 && len(f.BrandIDs) == 0 &&
				len(f.SkinTypes) == 0 && f.MinPrice == nil && f.MaxPrice == nil
		}), 10).Return([]model.Product{}, nil)

		_, err := svc.Generate(ctx, "u1", 0)
		require.NoError(t, err)
		d.products.AssertExpectations(t)
	})

	t.Run("full pipeline", func(t *testing.T) {
		svc, d := newRecService()
		d.tastes.On("Get", ctx, "u1").Return(&model.TasteProfile{
			UserID:                "u1",
			PreferredProductTypes: []model.ProductType{model.ProductTypeLipstick},
			PreferredColorIDs:     []string{"c1"},
			PriceRange:            &model.PriceRange{Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(30)},
		}, nil)
		d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", SkinType: skin(model.SkinTypeDry)}, nil)
		d.tastes.On("PreferredBrands", ctx, "u1").Return([]string{"b1"}, nil)
		d.products.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
			return len(f.SkinTypes) == 1 && f.SkinTypes[0] == model.SkinTypeDry &&
				len(f.ProductTypes) == 1 && len(f.ColorIDs) == 1 &&
				f.MinPrice.Equal(decimal.NewFromInt(5)) && f.MaxPrice.Equal(decimal.NewFromInt(30)) &&
				len(f.BrandIDs) == 1 && f.BrandIDs[0] == "b1"
		}), 6).Return([]model.Product{{ID: "p9"}}, nil)

		got, err := svc.Generate(ctx, "u1", 6)
		require.NoError(t, err)
		assert.Equal(t, "p9", got[0].ID)
	})
}

func TestRecommendation_UpdateFromFeedback(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{
		ID:          "p1",
		BrandID:     "b1",
		ColorID:     "c1",
		ProductType: model.ProductTypeBlush,
		FinishType:  model.FinishTypeSatin,
	}

	t.Run("positive feedback creates profile with attributes", func(t *testing.T) {
		svc, d := newRecService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.tastes.On("Get", ctx, "u1").Return(nil, sql.ErrNoRows)
		d.tastes.On("Save", ctx, mock.MatchedBy(func(p *model.TasteProfile) bool {
			return p.UserID == "u1" &&
				assert.ObjectsAreEqual([]string{"c1"}, p.PreferredColorIDs) &&
				assert.ObjectsAreEqual([]model.ProductType{model.ProductTypeBlush}, p.PreferredProductTypes) &&
				assert.ObjectsAreEqual([]model.FinishType{model.FinishTypeSatin}, p.PreferredFinishTypes) &&
				p.BrandAffinities["b1"] == 0.1
		})).Return(nil)

		require.NoError(t, svc.UpdateFromFeedback(ctx, "u1", "p1", "LOVE"))
		d.tastes.AssertExpectations(t)
	})

	t.Run("attributes are added once and affinity is capped", func(t *testing.T) {
		svc, d := newRecService()
		taste := &model.TasteProfile{
			UserID:                "u1",
			PreferredColorIDs:     []string{"c1"},
			PreferredProductTypes: []model.ProductType{model.ProductTypeBlush},
			PreferredFinishTypes:  []model.FinishType{model.FinishTypeSatin},
			BrandAffinities:       map[string]float64{"b1": 0.95},
		}
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.tastes.On("Get", ctx, "u1").Return(taste, nil)
		d.tastes.On("Save", ctx, taste).Return(nil)

		require.NoError(t, svc.UpdateFromFeedback(ctx, "u1", "p1", "like"))
		assert.Len(t, taste.PreferredColorIDs, 1)
		assert.Len(t, taste.PreferredProductTypes, 1)
		assert.Len(t, taste.PreferredFinishTypes, 1)
		assert.Equal(t, 1.0, taste.BrandAffinities["b1"])
	})

	t.Run("affinity steps by a tenth", func(t *testing.T) {
		taste := &model.TasteProfile{BrandAffinities: map[string]float64{"b1": 0.1}}
		applyLike(taste, product)
		applyLike(taste, product)
		assert.Equal(t, 0.3, taste.BrandAffinities["b1"])
	})

	t.Run("negative feedback on existing profile changes nothing", func(t *testing.T) {
		svc, d := newRecService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.tastes.On("Get", ctx, "u1").Return(&model.TasteProfile{UserID: "u1"}, nil)

		require.NoError(t, svc.UpdateFromFeedback(ctx, "u1", "p1", "negative"))
		d.tastes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative feedback still creates a missing profile", func(t *testing.T) {
		svc, d := newRecService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.tastes.On("Get", ctx, "u1").Return(nil, sql.ErrNoRows)
		d.tastes.On("Save", ctx, mock.MatchedBy(func(p *model.TasteProfile) bool {
			return p.UserID == "u1" && len(p.PreferredColorIDs) == 0
		})).Return(nil)

		require.NoError(t, svc.UpdateFromFeedback(ctx, "u1", "p1", "meh"))
		d.tastes.AssertExpectations(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, d := newRecService()
		d.products.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
		assert.ErrorIs(t, svc.UpdateFromFeedback(ctx, "u1", "nope", "like"), ErrNotFound)
	})
}

func TestRecommendation_ForCart(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		svc, _ := newRecService()
		got, err := svc.ForCart(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("similar by brand or type excluding cart", func(t *testing.T) {
		svc, d := newRecService()
		items := []model.CartItem{
			{ProductID: "p1", Product: model.Product{ID: "p1", BrandID: "b1", ProductType: model.ProductTypeLipstick}},
			{ProductID: "p2", Product: model.Product{ID: "p2", BrandID: "b1", ProductType: model.ProductTypeBlush}},
		}
		d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", SkinType: skin(model.SkinTypeOily)}, nil)
		d.products.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
			return f.InStockOnly && f.OrderBy == repository.OrderRatingDesc &&
				assert.ObjectsAreEqual([]string{"p1", "p2"}, f.ExcludeIDs) &&
				assert.ObjectsAreEqual([]string{"b1"}, f.SimilarBrandIDs) &&
				len(f.SimilarTypes) == 2 &&
				assert.ObjectsAreEqual([]model.SkinType{model.SkinTypeOily}, f.SkinTypes)
		}), 4).Return([]model.Product{{ID: "p3"}}, nil)

		got, err := svc.ForCart(ctx, "u1", items)
		require.NoError(t, err)
		assert.Equal(t, "p3", got[0].ID)
	})
}

func TestIsPositiveFeedback(t *testing.T) {
	assert.True(t, IsPositiveFeedback("Like"))
	assert.True(t, IsPositiveFeedback(" positive "))
	assert.False(t, IsPositiveFeedback("negative"))
	assert.False(t, IsPositiveFeedback(""))
}
