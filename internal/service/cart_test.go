package service

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/pricing"
	repoMocks "github.com/mescude1/skinly-ecomm/internal/repository/mocks"
)

type cartDeps struct {
	carts    *repoMocks.MockCartRepository
	products *repoMocks.MockProductRepository
	users    *repoMocks.MockUserRepository
}

func newCartService() (CartService, cartDeps) {
	d := cartDeps{
		carts:    new(repoMocks.MockCartRepository),
		products: new(repoMocks.MockProductRepository),
		users:    new(repoMocks.MockUserRepository),
	}
	recs := NewRecommendationService(d.users, new(repoMocks.MockTasteRepository), d.products, nil)
	return NewCartService(d.carts, d.products, recs, pricing.DefaultRules(), nil), d
}

func TestCart_Add(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{ID: "p1", Name: "Rose Balm", StockQuantity: 5, Price: decimal.NewFromInt(10)}

	t.Run("adding twice increments the same line", func(t *testing.T) {
		svc, d := newCartService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("QuantityOf", ctx, "c1", "p1").Return(0, nil).Once()
		d.carts.On("QuantityOf", ctx, "c1", "p1").Return(2, nil).Once()
		d.carts.On("AddItem", ctx, "c1", "p1", 2).Return(&model.CartItem{ID: "i1", CartID: "c1", ProductID: "p1", Quantity: 2}, nil).Once()
		d.carts.On("AddItem", ctx, "c1", "p1", 2).Return(&model.CartItem{ID: "i1", CartID: "c1", ProductID: "p1", Quantity: 4}, nil).Once()

		first, err := svc.Add(ctx, "u1", "p1", 2)
		require.NoError(t, err)
		second, err := svc.Add(ctx, "u1", "p1", 2)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 4, second.Quantity)
		assert.Equal(t, "Rose Balm", second.Product.Name)
	})

	t.Run("cumulative quantity above stock is refused", func(t *testing.T) {
		svc, d := newCartService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("QuantityOf", ctx, "c1", "p1").Return(4, nil)

		_, err := svc.Add(ctx, "u1", "p1", 2)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		d.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("huge quantity cannot wrap past the stock check", func(t *testing.T) {
		svc, d := newCartService()
		d.products.On("FindByID", ctx, "p1").Return(product, nil)
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("QuantityOf", ctx, "c1", "p1").Return(4, nil)

		_, err := svc.Add(ctx, "u1", "p1", math.MaxInt)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		d.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		svc, _ := newCartService()
		_, err := svc.Add(ctx, "u1", "p1", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, d := newCartService()
		d.products.On("FindByID", ctx, "x").Return(nil, sql.ErrNoRows)
		_, err := svc.Add(ctx, "u1", "x", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCart_Update(t *testing.T) {
	ctx := context.Background()
	item := &model.CartItem{ID: "i1", CartID: "c1", ProductID: "p1", Quantity: 1, Product: model.Product{StockQuantity: 3}}

	t.Run("zero removes", func(t *testing.T) {
		svc, d := newCartService()
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("FindItem", ctx, "c1", "i1").Return(item, nil)
		d.carts.On("RemoveItem", ctx, "c1", "i1").Return(true, nil)
		require.NoError(t, svc.Update(ctx, "u1", "i1", 0))
		d.carts.AssertCalled(t, "RemoveItem", ctx, "c1", "i1")
	})

	t.Run("within stock sets quantity", func(t *testing.T) {
		svc, d := newCartService()
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("FindItem", ctx, "c1", "i1").Return(item, nil)
		d.carts.On("SetQuantity", ctx, "c1", "i1", 3).Return(nil)
		require.NoError(t, svc.Update(ctx, "u1", "i1", 3))
	})

	t.Run("above stock is refused", func(t *testing.T) {
		svc, d := newCartService()
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("FindItem", ctx, "c1", "i1").Return(item, nil)
		assert.ErrorIs(t, svc.Update(ctx, "u1", "i1", 4), ErrInsufficientStock)
	})

	t.Run("foreign item", func(t *testing.T) {
		svc, d := newCartService()
		d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
		d.carts.On("FindItem", ctx, "c1", "other").Return(nil, sql.ErrNoRows)
		assert.ErrorIs(t, svc.Update(ctx, "u1", "other", 1), ErrNotFound)
	})
}

func TestCart_Remove(t *testing.T) {
	ctx := context.Background()
	svc, d := newCartService()
	d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
	d.carts.On("RemoveItem", ctx, "c1", "i1").Return(true, nil)
	d.carts.On("RemoveItem", ctx, "c1", "i2").Return(false, nil)

	assert.NoError(t, svc.Remove(ctx, "u1", "i1"))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", "i2"), ErrNotFound)
}

func TestCart_View(t *testing.T) {
	ctx := context.Background()
	svc, d := newCartService()
	items := []model.CartItem{
		{ID: "i1", ProductID: "p1", Quantity: 2, Product: model.Product{ID: "p1", BrandID: "b1", ProductType: model.ProductTypeBlush, Price: decimal.RequireFromString("12.50")}},
	}
	d.carts.On("GetOrCreate", ctx, "u1").Return("c1", nil)
	d.carts.On("Items", ctx, "c1").Return(items, nil)
	d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
	d.products.On("Find", ctx, mock.Anything, 4).Return([]model.Product{{ID: "p2"}}, nil)

	view, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "25", view.Totals.Subtotal.String())
	assert.Equal(t, "5.99", view.Totals.Shipping.String())
	assert.Equal(t, "2", view.Totals.Tax.String())
	assert.Equal(t, "25", view.Totals.FreeShippingNeeded.String())
	assert.Equal(t, PlaceholderImage, view.Items[0].Product.ImageURL)
	assert.Len(t, view.Recommendations, 1)
}
