package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

var userCols = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "skin_tone", "skin_type", "is_staff", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()
	u := &model.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash", FirstName: "Ana"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("ana", "ana@example.com", "hash", "Ana", "", false).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u1", "ana", "ana@example.com", "hash", "Ana", "", nil, "OILY", false, time.Now()))

		out, err := repo.Create(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "u1", out.ID)
		assert.Nil(t, out.SkinTone)
		require.NotNil(t, out.SkinType)
		assert.Equal(t, model.SkinTypeOily, *out.SkinType)
	})

	t.Run("duplicate", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Lookup(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`FROM users WHERE username = \$1 OR LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Ana@Example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "ana", "ana@example.com", "hash", "", "", "FAIR", nil, true, time.Now()))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("bob", "bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByLogin(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Equal(t, model.SkinToneFair, *u.SkinTone)

	exists, err := repo.Exists(ctx, "bob", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	tone := model.SkinToneTan

	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "Ana", "Lima", "ana@example.com", "TAN", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProfile(context.Background(), &model.User{
		ID: "u1", FirstName: "Ana", LastName: "Lima", Email: "ana@example.com", SkinTone: &tone,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTastePostgres_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTastePostgres(db)

	mock.ExpectQuery("SELECT preferred_product_types, preferred_finish_types, min_price, max_price FROM taste_profiles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"t", "f", "min", "max"}).AddRow("LIPSTICK,BLUSH", "", "5.00", "40.00"))
	mock.ExpectQuery("SELECT color_id FROM taste_profile_colors").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"color_id"}).AddRow("c1"))
	mock.ExpectQuery("SELECT brand_id, score FROM taste_brand_affinities").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"brand_id", "score"}).AddRow("b1", 0.3))

	p, err := repo.Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []model.ProductType{model.ProductTypeLipstick, model.ProductTypeBlush}, p.PreferredProductTypes)
	assert.Empty(t, p.PreferredFinishTypes)
	assert.Equal(t, []string{"c1"}, p.PreferredColorIDs)
	assert.Equal(t, 0.3, p.BrandAffinities["b1"])
	require.NotNil(t, p.PriceRange)
	assert.True(t, decimal.NewFromInt(40).Equal(p.PriceRange.Max))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTastePostgres_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTastePostgres(db)

	mock.ExpectQuery("FROM taste_profiles").WithArgs("u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTastePostgres_Save(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTastePostgres(db)

	p := &model.TasteProfile{
		UserID:                "u1",
		PreferredProductTypes: []model.ProductType{model.ProductTypeBlush},
		PreferredFinishTypes:  []model.FinishType{model.FinishTypeMatte, model.FinishTypeDewy},
		PreferredColorIDs:     []string{"c1"},
		BrandAffinities:       map[string]float64{"b2": 0.2, "b1": 1.0},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO taste_profiles").
		WithArgs("u1", "BLUSH", "MATTE,DEWY", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM taste_profile_colors").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO taste_profile_colors").WithArgs("u1", "c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM taste_brand_affinities").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO taste_brand_affinities").WithArgs("u1", "b1", 1.0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO taste_brand_affinities").WithArgs("u1", "b2", 0.2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTastePostgres_PreferredBrands(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTastePostgres(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_preferred_brands").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO user_preferred_brands").WithArgs("u1", "b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT brand_id FROM user_preferred_brands").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"brand_id"}).AddRow("b1"))

	require.NoError(t, repo.SetPreferredBrands(ctx, "u1", []string{"b1"}))
	ids, err := repo.PreferredBrands(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var addressCols = []string{"id", "user_id", "name", "first_name", "last_name", "address_line_1", "address_line_2",
	"city", "state", "postal_code", "country", "phone", "is_default", "created_at"}

func TestAddressPostgres_CreateDefault(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressPostgres(db)

	a := &model.ShippingAddress{
		UserID: "u1", Name: "Home", FirstName: "Ana", LastName: "Lima", AddressLine1: "1 Main St",
		City: "Austin", State: "TX", PostalCode: "78701", Country: "USA", IsDefault: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE shipping_addresses SET is_default = FALSE WHERE user_id = \$1 AND is_default`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO shipping_addresses").
		WillReturnRows(sqlmock.NewRows(addressCols).
			AddRow("a1", "u1", "Home", "Ana", "Lima", "1 Main St", "", "Austin", "TX", "78701", "USA", "", true, time.Now()))
	mock.ExpectCommit()

	out, err := repo.Create(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, "a1", out.ID)
	assert.True(t, out.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressPostgres_ListAndFind(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`ORDER BY is_default DESC, created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(addressCols).
			AddRow("a1", "u1", "Home", "Ana", "Lima", "1 Main St", "", "Austin", "TX", "78701", "USA", "", true, time.Now()).
			AddRow("a2", "u1", "Work", "Ana", "Lima", "9 Oak", "", "Austin", "TX", "78702", "USA", "", false, time.Now()))
	mock.ExpectQuery(`FROM shipping_addresses WHERE id = \$1 AND user_id = \$2`).
		WithArgs("a9", "u1").
		WillReturnError(sql.ErrNoRows)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = repo.FindByID(ctx, "u1", "a9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWishlistPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM wishlist_items").WithArgs("u1", "p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO wishlist_items").WithArgs("u1", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM wishlist_items w JOIN products p`).
		WithArgs("u1").
		WillReturnRows(addProductRow(sqlmock.NewRows(productCols), "p1", 3))

	removed, err := repo.Remove(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, removed)
	require.NoError(t, repo.Add(ctx, "u1", "p1"))

	items, err := repo.ListProducts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
