package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

const orderColumns = `id, user_id, status, subtotal, discount, shipping, tax, total_price,
	shipping_address, phone_number, payment_method, created_at, updated_at`

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.Discount,
		&o.Shipping,
		&o.Tax,
		&o.TotalPrice,
		&o.ShippingAddress,
		&o.PhoneNumber,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// PlaceOrder writes the whole order in one transaction. Any failure, including a
// stock decrement that finds too few units, rolls every statement back.
func (r *OrderPostgres) PlaceOrder(ctx context.Context, in repository.NewOrder) (*model.Order, error) {
	const insertOrder = `
		INSERT INTO orders (user_id, status, subtotal, discount, shipping, tax, total_price, shipping_address, phone_number, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + orderColumns
	const insertItem = `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4) RETURNING id`
	const insertPayment = `
		INSERT INTO payments (order_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, payment_date
	`

	var order *model.Order
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRowContext(ctx, insertOrder,
			in.UserID,
			string(model.OrderStatusPending),
			in.Subtotal,
			in.Discount,
			in.Shipping,
			in.Tax,
			in.Total,
			in.ShippingAddress,
			in.PhoneNumber,
			string(in.PaymentMethod),
		))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		order.Items = make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			ok, err := decrementStock(ctx, tx, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return fmt.Errorf("product %s: %w", it.ProductID, repository.ErrStockConflict)
			}

			it.OrderID = order.ID
			if err := tx.QueryRowContext(ctx, insertItem, order.ID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			order.Items = append(order.Items, it)
		}

		pay := &model.Payment{
			OrderID:       order.ID,
			Amount:        in.Total,
			PaymentMethod: in.PaymentMethod,
			Status:        model.PaymentStatusPending,
		}
		if err := tx.QueryRowContext(ctx, insertPayment, order.ID, in.Total, string(in.PaymentMethod), string(pay.Status)).
			Scan(&pay.ID, &pay.PaymentDate); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		order.Payment = pay

		if in.Coupon != nil {
			if err := redeemCoupon(ctx, tx, in.UserID, order.ID, in.Coupon); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, in.CartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func redeemCoupon(ctx context.Context, tx *sql.Tx, userID, orderID string, use *model.CouponUse) error {
	const bump = `
		UPDATE coupons SET used_count = used_count + 1
		WHERE id = $1 AND is_active AND (usage_limit IS NULL OR used_count < usage_limit)
	`
	res, err := tx.ExecContext(ctx, bump, use.CouponID)
	if err != nil {
		return fmt.Errorf("redeem coupon: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrCouponUnavailable
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_coupons (user_id, coupon_id, order_id, discount_amount) VALUES ($1, $2, $3, $4)`,
		userID, use.CouponID, orderID, use.DiscountAmount); err != nil {
		return fmt.Errorf("record coupon use: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_coupons_available SET is_used = TRUE WHERE user_id = $1 AND coupon_id = $2`,
		userID, use.CouponID); err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	return nil
}

func (r *OrderPostgres) ListByUser(ctx context.Context, userID string, limit int) ([]model.Order, error) {
	var args argList
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ` + args.add(userID) + ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ` + args.add(limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

func (r *OrderPostgres) FindByID(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, err
	}

	const qItems = `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY p.name
	`
	rows, err := r.db.QueryContext(ctx, qItems, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.Items = make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var pay model.Payment
	err = r.db.QueryRowContext(ctx,
		`SELECT id, order_id, amount, payment_method, status, payment_date FROM payments WHERE order_id = $1`, o.ID).
		Scan(&pay.ID, &pay.OrderID, &pay.Amount, &pay.PaymentMethod, &pay.Status, &pay.PaymentDate)
	switch {
	case err == nil:
		o.Payment = &pay
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	return o, nil
}

func (r *OrderPostgres) Cancel(ctx context.Context, userID, id string) error {
	const cancel = `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = $4
	`
	const restock = `
		UPDATE products p SET stock_quantity = p.stock_quantity + oi.quantity
		FROM order_items oi
		WHERE oi.order_id = $1 AND p.id = oi.product_id
	`
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, cancel, id, userID, string(model.OrderStatusCanceled), string(model.OrderStatusPending))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrStateConflict
		}
		_, err = tx.ExecContext(ctx, restock, id)
		return err
	})
}

// CouponPostgres is a PostgreSQL implementation of repository.CouponRepository.
type CouponPostgres struct {
	db *sql.DB
}

func NewCouponPostgres(db *sql.DB) *CouponPostgres {
	return &CouponPostgres{db: db}
}

var _ repository.CouponRepository = (*CouponPostgres)(nil)

const couponColumns = `c.id, c.code, c.name, c.description, c.discount_type, c.discount_value, c.minimum_order_amount,
	c.usage_limit, c.used_count, c.valid_from, c.valid_until, c.is_active, c.created_at`

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var (
		c     model.Coupon
		limit sql.NullInt64
	)
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinimumOrderAmount,
		&limit,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.IsActive,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if limit.Valid {
		n := int(limit.Int64)
		c.UsageLimit = &n
	}
	return &c, nil
}

func (r *CouponPostgres) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons c WHERE UPPER(c.code) = UPPER($1)`, code))
}

func (r *CouponPostgres) ListAvailable(ctx context.Context, userID string) ([]model.AvailableCoupon, error) {
	q := `SELECT uca.assigned_at, uca.is_used, ` + couponColumns + `
		FROM user_coupons_available uca
		JOIN coupons c ON c.id = uca.coupon_id
		WHERE uca.user_id = $1 AND NOT uca.is_used AND c.is_active
		ORDER BY uca.assigned_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AvailableCoupon, 0)
	for rows.Next() {
		var ac model.AvailableCoupon
		c, err := scanCoupon(prefixScanner{row: rows, prefix: []any{&ac.AssignedAt, &ac.IsUsed}})
		if err != nil {
			return nil, err
		}
		ac.Coupon = *c
		items = append(items, ac)
	}
	return items, rows.Err()
}
