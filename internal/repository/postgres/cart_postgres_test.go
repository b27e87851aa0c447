package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartPostgres_GetOrCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartPostgres(db)

	mock.ExpectQuery(`INSERT INTO carts \(user_id\) VALUES \(\$1\) ON CONFLICT \(user_id\)`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart1"))

	id, err := repo.GetOrCreate(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "cart1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartPostgres_AddItemIncrements(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartPostgres(db)

	mock.ExpectQuery(`INSERT INTO cart_items (.+) ON CONFLICT \(cart_id, product_id\) DO UPDATE SET quantity = cart_items.quantity \+ EXCLUDED.quantity`).
		WithArgs("cart1", "p1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow("ci1", 3))

	it, err := repo.AddItem(context.Background(), "cart1", "p1", 2)

	require.NoError(t, err)
	assert.Equal(t, "ci1", it.ID)
	assert.Equal(t, 3, it.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartPostgres_Items(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartPostgres(db)

	cols := append([]string{"ci_id", "cart_id", "ci_product_id", "quantity"}, productCols...)
	rows := sqlmock.NewRows(cols).
		AddRow(append([]driver.Value{"ci1", "cart1", "p1", 2}, "p1", "Velvet Lip", "b1", "Glowy", "LIPSTICK", "MATTE", "c1", "Ruby",
			"12.50", nil, 8, 4.0, "", time.Now())...)
	mock.ExpectQuery(`FROM cart_items ci JOIN products p (.+) WHERE ci.cart_id = \$1`).
		WithArgs("cart1").
		WillReturnRows(rows)

	items, err := repo.Items(context.Background(), "cart1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Velvet Lip", items[0].Product.Name)
	assert.Equal(t, "25", items[0].LineTotal().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartPostgres_Mutations(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COALESCE\(\(SELECT quantity FROM cart_items`).
		WithArgs("cart1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"qty"}).AddRow(0))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs("ci9", "cart1", 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM cart_items WHERE id").
		WithArgs("ci1", "cart1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	qty, err := repo.QuantityOf(ctx, "cart1", "p1")
	require.NoError(t, err)
	assert.Zero(t, qty)

	err = repo.SetQuantity(ctx, "cart1", "ci9", 4)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	removed, err := repo.RemoveItem(ctx, "cart1", "ci1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
