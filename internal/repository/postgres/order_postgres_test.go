package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

var orderCols = []string{"id", "user_id", "status", "subtotal", "discount", "shipping", "tax", "total_price",
	"shipping_address", "phone_number", "payment_method", "created_at", "updated_at"}

func addOrderRow(rows *sqlmock.Rows, id, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "u1", status, "40.00", "0.00", "5.99", "3.20", "49.19",
		"1 Main St, Austin, TX 78701", "555-0100", "CREDIT_CARD", now, now)
}

func newOrder() repository.NewOrder {
	return repository.NewOrder{
		UserID:          "u1",
		CartID:          "cart1",
		Subtotal:        decimal.RequireFromString("40.00"),
		Discount:        decimal.Zero,
		Shipping:        decimal.RequireFromString("5.99"),
		Tax:             decimal.RequireFromString("3.20"),
		Total:           decimal.RequireFromString("49.19"),
		ShippingAddress: "1 Main St, Austin, TX 78701",
		PhoneNumber:     "555-0100",
		PaymentMethod:   model.PaymentCreditCard,
		Items: []model.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("20.00")},
		},
	}
}

func TestOrderPostgres_PlaceOrder(t *testing.T) {
	t.Run("commits every write", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)
		in := newOrder()
		in.Coupon = &model.CouponUse{CouponID: "cp1", DiscountAmount: decimal.NewFromInt(4)}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs("u1", "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				"1 Main St, Austin, TX 78701", "555-0100", "CREDIT_CARD").
			WillReturnRows(addOrderRow(sqlmock.NewRows(orderCols), "o1", "PENDING"))
		mock.ExpectExec("UPDATE products SET stock_quantity = stock_quantity -").WithArgs("p1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO order_items").WithArgs("o1", "p1", 2, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("oi1"))
		mock.ExpectExec("UPDATE products SET stock_quantity = stock_quantity -").WithArgs("p2", 1).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO order_items").WithArgs("o1", "p2", 1, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("oi2"))
		mock.ExpectQuery("INSERT INTO payments").WithArgs("o1", sqlmock.AnyArg(), "CREDIT_CARD", "PENDING").
			WillReturnRows(sqlmock.NewRows([]string{"id", "payment_date"}).AddRow("pay1", time.Now()))
		mock.ExpectExec(`UPDATE coupons SET used_count = used_count \+ 1`).WithArgs("cp1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_coupons").WithArgs("u1", "cp1", "o1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE user_coupons_available SET is_used = TRUE").WithArgs("u1", "cp1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_items WHERE cart_id").WithArgs("cart1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		o, err := repo.PlaceOrder(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
		assert.Len(t, o.Items, 2)
		assert.Equal(t, "oi2", o.Items[1].ID)
		require.NotNil(t, o.Payment)
		assert.Equal(t, model.PaymentStatusPending, o.Payment.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WillReturnRows(addOrderRow(sqlmock.NewRows(orderCols), "o1", "PENDING"))
		mock.ExpectExec("UPDATE products SET stock_quantity = stock_quantity -").WithArgs("p1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO order_items").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("oi1"))
		mock.ExpectExec("UPDATE products SET stock_quantity = stock_quantity -").WithArgs("p2", 1).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		o, err := repo.PlaceOrder(context.Background(), newOrder())

		assert.Nil(t, o)
		assert.ErrorIs(t, err, repository.ErrStockConflict)
		assert.ErrorContains(t, err, "product p2")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted coupon rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)
		in := newOrder()
		in.Items = in.Items[:1]
		in.Coupon = &model.CouponUse{CouponID: "cp1", DiscountAmount: decimal.NewFromInt(4)}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WillReturnRows(addOrderRow(sqlmock.NewRows(orderCols), "o1", "PENDING"))
		mock.ExpectExec("UPDATE products").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO order_items").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("oi1"))
		mock.ExpectQuery("INSERT INTO payments").WillReturnRows(sqlmock.NewRows([]string{"id", "payment_date"}).AddRow("pay1", time.Now()))
		mock.ExpectExec("UPDATE coupons").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.PlaceOrder(context.Background(), in)

		assert.ErrorIs(t, err, repository.ErrCouponUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderPostgres(db)

	mock.ExpectQuery(`FROM orders WHERE id = \$1 AND user_id = \$2`).
		WithArgs("o1", "u1").
		WillReturnRows(addOrderRow(sqlmock.NewRows(orderCols), "o1", "SHIPPED"))
	mock.ExpectQuery("FROM order_items oi JOIN products p").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "quantity", "price"}).
			AddRow("oi1", "o1", "p1", "Velvet Lip", 2, "10.00"))
	mock.ExpectQuery("FROM payments WHERE order_id").
		WithArgs("o1").
		WillReturnError(sql.ErrNoRows)

	o, err := repo.FindByID(context.Background(), "u1", "o1")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, o.Status)
	assert.Equal(t, "Velvet Lip", o.Items[0].ProductName)
	assert.Nil(t, o.Payment)
	assert.True(t, decimal.RequireFromString("49.19").Equal(o.TotalPrice))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderPostgres(db)

	mock.ExpectQuery(`FROM orders WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`).
		WithArgs("u1", 10).
		WillReturnRows(addOrderRow(addOrderRow(sqlmock.NewRows(orderCols), "o2", "PENDING"), "o1", "DELIVERED"))

	orders, err := repo.ListByUser(context.Background(), "u1", 10)

	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_Cancel(t *testing.T) {
	t.Run("pending order", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs("o1", "u1", "CANCELED", "PENDING").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products p SET stock_quantity = p.stock_quantity \+ oi.quantity`).
			WithArgs("o1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		assert.NoError(t, repo.Cancel(context.Background(), "u1", "o1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no longer pending", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Cancel(context.Background(), "u1", "o1")
		assert.ErrorIs(t, err, repository.ErrStateConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

var couponCols = []string{"id", "code", "name", "description", "discount_type", "discount_value", "minimum_order_amount",
	"usage_limit", "used_count", "valid_from", "valid_until", "is_active", "created_at"}

func TestCouponPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCouponPostgres(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`FROM coupons c WHERE UPPER\(c.code\) = UPPER\(\$1\)`).
		WithArgs("glow10").
		WillReturnRows(sqlmock.NewRows(couponCols).
			AddRow("cp1", "GLOW10", "Glow", "", "PERCENTAGE", "10.00", "0.00", 100, 3, now.Add(-time.Hour), now.Add(time.Hour), true, now))
	mock.ExpectQuery("FROM user_coupons_available uca JOIN coupons c").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(append([]string{"assigned_at", "is_used"}, couponCols...)).
			AddRow(now, false, "cp2", "SAVE5", "Save", "", "FIXED", "5.00", "20.00", nil, 0, now, now.Add(time.Hour), true, now))
	mock.ExpectQuery("FROM coupons c").WithArgs("nope").WillReturnError(errors.New("boom"))

	c, err := repo.FindByCode(ctx, "glow10")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountPercentage, c.DiscountType)
	require.NotNil(t, c.UsageLimit)
	assert.Equal(t, 100, *c.UsageLimit)

	avail, err := repo.ListAvailable(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "SAVE5", avail[0].Coupon.Code)
	assert.Nil(t, avail[0].Coupon.UsageLimit)

	_, err = repo.FindByCode(ctx, "nope")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
