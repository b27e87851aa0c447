package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

const (
	profileRecentItems = 10
	defaultCountry     = "USA"
)

// ProfileView is everything shown on the profile page.
type ProfileView struct {
	User              model.User              `json:"user"`
	Taste             *model.TasteProfile     `json:"taste_profile"`
	PreferredBrandIDs []string                `json:"preferred_brand_ids"`
	Addresses         []model.ShippingAddress `json:"shipping_addresses"`
	Reviews           []model.Review          `json:"reviews"`
	Orders            []model.Order           `json:"orders"`
	Coupons           []model.AvailableCoupon `json:"available_coupons"`
}

// ProfileUpdate replaces the editable profile fields and taste preferences.
// Empty skin tone or type clears them.
type ProfileUpdate struct {
	FirstName             string
	LastName              string
	Email                 string
	SkinTone              model.SkinTone
	SkinType              model.SkinType
	PreferredProductTypes []model.ProductType
	PreferredFinishTypes  []model.FinishType
	PreferredColorIDs     []string
	PriceRange            *model.PriceRange
	PreferredBrandIDs     []string
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*ProfileView, error)
	Update(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error)

	// AddAddress stores a shipping address. A default address replaces the previous default.
	AddAddress(ctx context.Context, userID string, a model.ShippingAddress) (*model.ShippingAddress, error)
	Addresses(ctx context.Context, userID string) ([]model.ShippingAddress, error)

	// Coupons lists the coupons assigned to the user that are still unused and active.
	Coupons(ctx context.Context, userID string) ([]model.AvailableCoupon, error)
}

type profileService struct {
	users     repository.UserRepository
	tastes    repository.TasteRepository
	addresses repository.AddressRepository
	reviews   repository.ReviewRepository
	orders    repository.OrderRepository
	coupons   repository.CouponRepository
}

// ProfileDeps groups the repositories the profile page reads.
type ProfileDeps struct {
	Users     repository.UserRepository
	Tastes    repository.TasteRepository
	Addresses repository.AddressRepository
	Reviews   repository.ReviewRepository
	Orders    repository.OrderRepository
	Coupons   repository.CouponRepository
}

func NewProfileService(d ProfileDeps) ProfileService {
	return &profileService{
		users:     d.Users,
		tastes:    d.Tastes,
		addresses: d.Addresses,
		reviews:   d.Reviews,
		orders:    d.Orders,
		coupons:   d.Coupons,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	view := &ProfileView{User: *user}

	taste, err := s.tastes.Get(ctx, userID)
	switch {
	case err == nil:
		view.Taste = taste
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load taste profile: %w", err)
	}

	if view.PreferredBrandIDs, err = s.tastes.PreferredBrands(ctx, userID); err != nil {
		return nil, fmt.Errorf("load preferred brands: %w", err)
	}
	if view.Addresses, err = s.addresses.ListByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	if view.Reviews, err = s.reviews.ListByUser(ctx, userID, profileRecentItems); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	if view.Orders, err = s.orders.ListByUser(ctx, userID, profileRecentItems); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if view.Coupons, err = s.coupons.ListAvailable(ctx, userID); err != nil {
		return nil, fmt.Errorf("load coupons: %w", err)
	}
	return view, nil
}

func (in ProfileUpdate) validate() error {
	if in.SkinTone != "" && !in.SkinTone.Valid() {
		return fmt.Errorf("skin tone %q: %w", in.SkinTone, ErrInvalidChoice)
	}
	if in.SkinType != "" && !in.SkinType.Valid() {
		return fmt.Errorf("skin type %q: %w", in.SkinType, ErrInvalidChoice)
	}
	for _, t := range in.PreferredProductTypes {
		if !t.Valid() {
			return fmt.Errorf("product type %q: %w", t, ErrInvalidChoice)
		}
	}
	for _, f := range in.PreferredFinishTypes {
		if !f.Valid() {
			return fmt.Errorf("finish type %q: %w", f, ErrInvalidChoice)
		}
	}
	if pr := in.PriceRange; pr != nil {
		if pr.Min.IsNegative() || pr.Max.IsNegative() || pr.Min.GreaterThan(pr.Max) {
			return ErrInvalidPriceRange
		}
	}
	return nil
}

func (s *profileService) Update(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.TrimSpace(in.Email)
	user.SkinTone, user.SkinType = nil, nil
	if in.SkinTone != "" {
		tone := in.SkinTone
		user.SkinTone = &tone
	}
	if in.SkinType != "" {
		st := in.SkinType
		user.SkinType = &st
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	taste, err := s.tastes.Get(ctx, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		taste = &model.TasteProfile{UserID: userID}
	case err != nil:
		return nil, fmt.Errorf("load taste profile: %w", err)
	}
	taste.PreferredProductTypes = in.PreferredProductTypes
	taste.PreferredFinishTypes = in.PreferredFinishTypes
	taste.PreferredColorIDs = in.PreferredColorIDs
	taste.PriceRange = in.PriceRange
	if err := s.tastes.Save(ctx, taste); err != nil {
		return nil, fmt.Errorf("save taste profile: %w", err)
	}

	if err := s.tastes.SetPreferredBrands(ctx, userID, in.PreferredBrandIDs); err != nil {
		return nil, fmt.Errorf("save preferred brands: %w", err)
	}
	return user, nil
}

func (s *profileService) AddAddress(ctx context.Context, userID string, a model.ShippingAddress) (*model.ShippingAddress, error) {
	for _, f := range []*string{&a.Name, &a.FirstName, &a.LastName, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone} {
		*f = strings.TrimSpace(*f)
	}
	if a.Name == "" || a.FirstName == "" || a.LastName == "" || a.AddressLine1 == "" ||
		a.City == "" || a.State == "" || a.PostalCode == "" {
		return nil, ErrAddressIncomplete
	}
	if a.Country == "" {
		a.Country = defaultCountry
	}
	a.UserID = userID
	a.ID = ""

	stored, err := s.addresses.Create(ctx, &a)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return stored, nil
}

func (s *profileService) Addresses(ctx context.Context, userID string) ([]model.ShippingAddress, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *profileService) Coupons(ctx context.Context, userID string) ([]model.AvailableCoupon, error) {
	return s.coupons.ListAvailable(ctx, userID)
}
