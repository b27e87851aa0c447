package repository

import (
	"context"

	"github.com/mescude1/skinly-ecomm/internal/model"
)

type UserRepository interface {
	// Create inserts the user; a taken username or email yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByLogin matches either the username or the email, case-insensitively for email.
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	// Exists reports whether the username or email is already registered.
	Exists(ctx context.Context, username, email string) (bool, error)
	// UpdateProfile writes the editable profile columns.
	UpdateProfile(ctx context.Context, u *model.User) error
}

// TasteRepository persists taste profiles and preferred brands.
type TasteRepository interface {
	// Get returns sql.ErrNoRows when the user has no profile yet.
	Get(ctx context.Context, userID string) (*model.TasteProfile, error)
	// Save upserts the profile, replacing its colors and brand affinities.
	Save(ctx context.Context, p *model.TasteProfile) error
	PreferredBrands(ctx context.Context, userID string) ([]string, error)
	SetPreferredBrands(ctx context.Context, userID string, brandIDs []string) error
}

type AddressRepository interface {
	// Create inserts the address; a default address clears the user's other defaults in the same transaction.
	Create(ctx context.Context, a *model.ShippingAddress) (*model.ShippingAddress, error)
	FindByID(ctx context.Context, userID, id string) (*model.ShippingAddress, error)
	// ListByUser returns the default address first, then newest first.
	ListByUser(ctx context.Context, userID string) ([]model.ShippingAddress, error)
}

type WishlistRepository interface {
	ListProducts(ctx context.Context, userID string) ([]model.Product, error)
	Add(ctx context.Context, userID, productID string) error
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, userID, productID string) (bool, error)
}
