package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

const productColumns = `p.id, p.name, p.brand_id, b.name, p.product_type, p.finish_type, p.color_id, c.name,
	p.price, p.skin_type_compatibility, p.stock_quantity, p.rating, p.image_key, p.created_at`

const productFrom = `FROM products p
	JOIN brands b ON b.id = p.brand_id
	JOIN colors c ON c.id = p.color_id`

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p        model.Product
		skinType sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BrandID,
		&p.BrandName,
		&p.ProductType,
		&p.FinishType,
		&p.ColorID,
		&p.ColorName,
		&p.Price,
		&skinType,
		&p.StockQuantity,
		&p.Rating,
		&p.ImageKey,
		&p.CreatedAt,
	); err != nil {
		return model.Product{}, err
	}
	if skinType.Valid {
		st := model.SkinType(skinType.String)
		p.SkinTypeCompatibility = &st
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// productWhere renders f as a WHERE clause, or "" when f has no predicates.
func productWhere(f repository.ProductFilter, args *argList) string {
	var conds []string

	if q := strings.TrimSpace(f.Query); q != "" {
		ph := args.add(containsPattern(q))
		conds = append(conds, fmt.Sprintf(
			"(p.name ILIKE %[1]s OR b.name ILIKE %[1]s OR p.product_type ILIKE %[1]s OR c.name ILIKE %[1]s)", ph))
	}
	if len(f.BrandIDs) > 0 {
		conds = append(conds, "p.brand_id IN "+inList(args, f.BrandIDs))
	}
	if len(f.ProductTypes) > 0 {
		conds = append(conds, "p.product_type IN "+inList(args, toStrings(f.ProductTypes)))
	}
	if len(f.FinishTypes) > 0 {
		conds = append(conds, "p.finish_type IN "+inList(args, toStrings(f.FinishTypes)))
	}
	if len(f.ColorIDs) > 0 {
		conds = append(conds, "p.color_id IN "+inList(args, f.ColorIDs))
	}
	if len(f.SkinTypes) > 0 {
		conds = append(conds, "(p.skin_type_compatibility IS NULL OR p.skin_type_compatibility IN "+
			inList(args, toStrings(f.SkinTypes))+")")
	}
	if f.MinPrice != nil {
		conds = append(conds, "p.price >= "+args.add(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= "+args.add(*f.MaxPrice))
	}
	if f.InStockOnly {
		conds = append(conds, "p.stock_quantity > 0")
	}
	if len(f.ExcludeIDs) > 0 {
		conds = append(conds, "p.id NOT IN "+inList(args, f.ExcludeIDs))
	}

	var similar []string
	if len(f.SimilarBrandIDs) > 0 {
		similar = append(similar, "p.brand_id IN "+inList(args, f.SimilarBrandIDs))
	}
	if len(f.SimilarTypes) > 0 {
		similar = append(similar, "p.product_type IN "+inList(args, toStrings(f.SimilarTypes)))
	}
	if len(similar) > 0 {
		conds = append(conds, "("+strings.Join(similar, " OR ")+")")
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func productOrderBy(o repository.ProductOrder) string {
	switch o {
	case repository.OrderRatingDesc:
		return " ORDER BY p.rating DESC, p.created_at DESC, p.id"
	case repository.OrderName:
		return " ORDER BY p.name ASC, p.id"
	default:
		return " ORDER BY p.created_at DESC, p.id DESC"
	}
}

// FindByID fetches a single product with its brand and color names.
func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	q := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Search returns products using LIMIT/OFFSET pagination and a total count.
func (r *ProductPostgres) Search(ctx context.Context, f repository.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.Product], error) {
	var args argList
	where := productWhere(f, &args)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+productFrom+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + productColumns + ` ` + productFrom + where + productOrderBy(f.OrderBy)
	q += " LIMIT " + args.add(pq.Limit) + " OFFSET " + args.add(pq.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	items, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Product]{Items: items, Total: total}, nil
}

// Find returns up to limit matching products. A non-positive limit returns every match.
func (r *ProductPostgres) Find(ctx context.Context, f repository.ProductFilter, limit int) ([]model.Product, error) {
	var args argList
	q := `SELECT ` + productColumns + ` ` + productFrom + productWhere(f, &args) + productOrderBy(f.OrderBy)
	if limit > 0 {
		q += " LIMIT " + args.add(limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *ProductPostgres) UpdateImageKey(ctx context.Context, id, key string) error {
	const q = `UPDATE products SET image_key = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductPostgres) RefreshRating(ctx context.Context, id string) (float64, error) {
	const q = `
		UPDATE products
		SET rating = COALESCE((SELECT AVG(rating)::float8 FROM reviews WHERE product_id = $1), 0)
		WHERE id = $1
		RETURNING rating
	`
	var rating float64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&rating); err != nil {
		return 0, err
	}
	return rating, nil
}

func (r *ProductPostgres) SetStock(ctx context.Context, id string, qty int) (bool, error) {
	const q = `UPDATE products SET stock_quantity = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductPostgres) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	return decrementStock(ctx, r.db, id, qty)
}

func (r *ProductPostgres) IncrementStock(ctx context.Context, id string, qty int) error {
	const q = `UPDATE products SET stock_quantity = stock_quantity + $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductPostgres) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	q := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.stock_quantity <= $1 ORDER BY p.stock_quantity ASC, p.name`
	rows, err := r.db.QueryContext(ctx, q, threshold)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// decrementStock is the only way stock goes down: the WHERE clause refuses to
// take the level below zero, so concurrent callers cannot oversell.
func decrementStock(ctx context.Context, db execer, id string, qty int) (bool, error) {
	const q = `UPDATE products SET stock_quantity = stock_quantity - $2 WHERE id = $1 AND stock_quantity >= $2`
	res, err := db.ExecContext(ctx, q, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CatalogPostgres serves brands and colors.
type CatalogPostgres struct {
	db *sql.DB
}

func NewCatalogPostgres(db *sql.DB) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

var _ repository.CatalogRepository = (*CatalogPostgres)(nil)

func (r *CatalogPostgres) ListBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Brand, 0)
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *CatalogPostgres) ListColors(ctx context.Context) ([]model.Color, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, hex_code FROM colors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Color, 0)
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.HexCode); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
