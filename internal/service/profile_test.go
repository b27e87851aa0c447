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

type profileDeps struct {
	users     *repoMocks.MockUserRepository
	tastes    *repoMocks.MockTasteRepository
	addresses *repoMocks.MockAddressRepository
	reviews   *repoMocks.MockReviewRepository
	orders    *repoMocks.MockOrderRepository
	coupons   *repoMocks.MockCouponRepository
}

func newProfileService() (ProfileService, profileDeps) {
	d := profileDeps{
		users:     new(repoMocks.MockUserRepository),
		tastes:    new(repoMocks.MockTasteRepository),
		addresses: new(repoMocks.MockAddressRepository),
		reviews:   new(repoMocks.MockReviewRepository),
		orders:    new(repoMocks.MockOrderRepository),
		coupons:   new(repoMocks.MockCouponRepository),
	}
	return NewProfileService(ProfileDeps{
		Users:     d.users,
		Tastes:    d.tastes,
		Addresses: d.addresses,
		Reviews:   d.reviews,
		Orders:    d.orders,
		Coupons:   d.coupons,
	}), d
}

func TestProfile_Get(t *testing.T) {
	ctx := context.Background()
	svc, d := newProfileService()
	d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", Username: "ana"}, nil)
	d.tastes.On("Get", ctx, "u1").Return(nil, sql.ErrNoRows)
	d.tastes.On("PreferredBrands", ctx, "u1").Return([]string{"b1"}, nil)
	d.addresses.On("ListByUser", ctx, "u1").Return([]model.ShippingAddress{}, nil)
	d.reviews.On("ListByUser", ctx, "u1", 10).Return([]model.Review{}, nil)
	d.orders.On("ListByUser", ctx, "u1", 10).Return([]model.Order{{ID: "o1"}}, nil)
	d.coupons.On("ListAvailable", ctx, "u1").Return([]model.AvailableCoupon{{Coupon: model.Coupon{Code: "WELCOME"}}}, nil)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", view.User.Username)
	assert.Nil(t, view.Taste)
	assert.Equal(t, []string{"b1"}, view.PreferredBrandIDs)
	assert.Len(t, view.Orders, 1)
	assert.Equal(t, "WELCOME", view.Coupons[0].Coupon.Code)
}

func TestProfile_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces taste and brands", func(t *testing.T) {
		svc, d := newProfileService()
		d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", SkinType: skin(model.SkinTypeDry)}, nil)
		d.users.On("UpdateProfile", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.FirstName == "Ana" && u.SkinTone != nil && *u.SkinTone == model.SkinToneTan && u.SkinType == nil
		})).Return(nil)
		existing := &model.TasteProfile{UserID: "u1", PreferredColorIDs: []string{"old"}, BrandAffinities: map[string]float64{"b1": 0.4}}
		d.tastes.On("Get", ctx, "u1").Return(existing, nil)
		d.tastes.On("Save", ctx, mock.MatchedBy(func(p *model.TasteProfile) bool {
			return assert.ObjectsAreEqual([]string{"c2"}, p.PreferredColorIDs) &&
				p.BrandAffinities["b1"] == 0.4 &&
				p.PriceRange != nil && p.PriceRange.Max.Equal(decimal.NewFromInt(40))
		})).Return(nil)
		d.tastes.On("SetPreferredBrands", ctx, "u1", []string{"b2"}).Return(nil)

		u, err := svc.Update(ctx, "u1", ProfileUpdate{
			FirstName:            " Ana ",
			Email:                "ana@example.com",
			SkinTone:             model.SkinToneTan,
			PreferredFinishTypes: []model.FinishType{model.FinishTypeDewy},
			PreferredColorIDs:    []string{"c2"},
			PriceRange:           &model.PriceRange{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(40)},
			PreferredBrandIDs:    []string{"b2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana", u.FirstName)
		d.tastes.AssertExpectations(t)
	})

	t.Run("inverted price range", func(t *testing.T) {
		svc, d := newProfileService()
		_, err := svc.Update(ctx, "u1", ProfileUpdate{PriceRange: &model.PriceRange{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(10)}})
		assert.ErrorIs(t, err, ErrInvalidPriceRange)
		d.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown skin type", func(t *testing.T) {
		svc, _ := newProfileService()
		_, err := svc.Update(ctx, "u1", ProfileUpdate{SkinType: "SCALY"})
		assert.ErrorIs(t, err, ErrInvalidChoice)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, d := newProfileService()
		d.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
		d.users.On("UpdateProfile", ctx, mock.Anything).Return(repository.ErrDuplicate)
		_, err := svc.Update(ctx, "u1", ProfileUpdate{Email: "taken@example.com"})
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestProfile_AddAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("missing required fields", func(t *testing.T) {
		svc, d := newProfileService()
		_, err := svc.AddAddress(ctx, "u1", model.ShippingAddress{Name: "Home", City: "Austin"})
		assert.ErrorIs(t, err, ErrAddressIncomplete)
		d.addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("defaults country", func(t *testing.T) {
		svc, d := newProfileService()
		d.addresses.On("Create", ctx, mock.MatchedBy(func(a *model.ShippingAddress) bool {
			return a.UserID == "u1" && a.Country == "USA" && a.IsDefault && a.Name == "Home"
		})).Return(&model.ShippingAddress{ID: "a1"}, nil)

		got, err := svc.AddAddress(ctx, "u1", model.ShippingAddress{
			UserID: "someone-else", Name: " Home ", FirstName: "Ana", LastName: "Diaz", AddressLine1: "1 Main St",
			City: "Austin", State: "TX", PostalCode: "73301", IsDefault: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "a1", got.ID)
	})
}
