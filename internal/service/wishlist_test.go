package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	repoMocks "github.com/mescude1/skinly-ecomm/internal/repository/mocks"
)

func TestWishlist_Toggle(t *testing.T) {
	ctx := context.Background()
	wl := new(repoMocks.MockWishlistRepository)
	products := new(repoMocks.MockProductRepository)
	svc := NewWishlistService(wl, products, nil)

	products.On("FindByID", ctx, "p1").Return(&model.Product{ID: "p1"}, nil)
	products.On("FindByID", ctx, "x").Return(nil, sql.ErrNoRows)
	wl.On("Remove", ctx, "u1", "p1").Return(false, nil).Once()
	wl.On("Add", ctx, "u1", "p1").Return(nil).Once()
	wl.On("Remove", ctx, "u1", "p1").Return(true, nil).Once()

	action, err := svc.Toggle(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, WishlistAdded, action)

	action, err = svc.Toggle(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, WishlistRemoved, action)

	_, err = svc.Toggle(ctx, "u1", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	wl.AssertExpectations(t)
}

func TestWishlist_List(t *testing.T) {
	ctx := context.Background()
	wl := new(repoMocks.MockWishlistRepository)
	svc := NewWishlistService(wl, new(repoMocks.MockProductRepository), nil)
	wl.On("ListProducts", ctx, "u1").Return([]model.Product{{ID: "p1"}}, nil)

	got, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderImage, got[0].ImageURL)
}
