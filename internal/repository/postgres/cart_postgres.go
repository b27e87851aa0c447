package postgres

import (
	"context"
	"database/sql"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// CartPostgres is a PostgreSQL implementation of repository.CartRepository.
type CartPostgres struct {
	db *sql.DB
}

func NewCartPostgres(db *sql.DB) *CartPostgres {
	return &CartPostgres{db: db}
}

var _ repository.CartRepository = (*CartPostgres)(nil)

// prefixScanner scans leading columns into prefix before handing the rest to the caller's destinations.
type prefixScanner struct {
	row    rowScanner
	prefix []any
}

func (s prefixScanner) Scan(dest ...any) error {
	return s.row.Scan(append(s.prefix, dest...)...)
}

func scanCartItem(row rowScanner) (model.CartItem, error) {
	var it model.CartItem
	p, err := scanProduct(prefixScanner{row: row, prefix: []any{&it.ID, &it.CartID, &it.ProductID, &it.Quantity}})
	if err != nil {
		return model.CartItem{}, err
	}
	it.Product = p
	return it, nil
}

const cartItemSelect = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ` + productColumns + `
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	JOIN brands b ON b.id = p.brand_id
	JOIN colors c ON c.id = p.color_id`

func (r *CartPostgres) GetOrCreate(ctx context.Context, userID string) (string, error) {
	const q = `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *CartPostgres) Items(ctx context.Context, cartID string) ([]model.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY p.name, ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CartItem, 0)
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartPostgres) FindItem(ctx context.Context, cartID, itemID string) (*model.CartItem, error) {
	it, err := scanCartItem(r.db.QueryRowContext(ctx, cartItemSelect+` WHERE ci.id = $1 AND ci.cart_id = $2`, itemID, cartID))
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartPostgres) QuantityOf(ctx context.Context, cartID, productID string) (int, error) {
	const q = `SELECT COALESCE((SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2), 0)`
	var qty int
	if err := r.db.QueryRowContext(ctx, q, cartID, productID).Scan(&qty); err != nil {
		return 0, err
	}
	return qty, nil
}

func (r *CartPostgres) AddItem(ctx context.Context, cartID, productID string, qty int) (*model.CartItem, error) {
	const q = `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity
	`
	it := model.CartItem{CartID: cartID, ProductID: productID}
	if err := r.db.QueryRowContext(ctx, q, cartID, productID, qty).Scan(&it.ID, &it.Quantity); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartPostgres) SetQuantity(ctx context.Context, cartID, itemID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`, itemID, cartID, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartPostgres) RemoveItem(ctx context.Context, cartID, itemID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
