package postgres

import (
	"context"
	"database/sql"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, skin_tone, skin_type, is_staff, created_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u              model.User
		tone, skinType sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&tone,
		&skinType,
		&u.IsStaff,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if tone.Valid {
		v := model.SkinTone(tone.String)
		u.SkinTone = &v
	}
	if skinType.Valid {
		v := model.SkinType(skinType.String)
		u.SkinType = &v
	}
	return &u, nil
}

func nullString[T ~string](v *T) sql.NullString {
	if v == nil || *v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsStaff,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserPostgres) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR LOWER(email) = LOWER($1) LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, q, login))
}

func (r *UserPostgres) Exists(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR LOWER(email) = LOWER($2))`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserPostgres) UpdateProfile(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, skin_tone = $5, skin_type = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.FirstName, u.LastName, u.Email, nullString(u.SkinTone), nullString(u.SkinType))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TastePostgres stores taste profiles across taste_profiles and its child tables.
type TastePostgres struct {
	db *sql.DB
}

func NewTastePostgres(db *sql.DB) *TastePostgres {
	return &TastePostgres{db: db}
}

var _ repository.TasteRepository = (*TastePostgres)(nil)

func (r *TastePostgres) Get(ctx context.Context, userID string) (*model.TasteProfile, error) {
	const q = `
		SELECT preferred_product_types, preferred_finish_types, min_price, max_price
		FROM taste_profiles
		WHERE user_id = $1
	`
	var (
		types, finishes  string
		minPrice, maxPrc decimal.NullDecimal
	)
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&types, &finishes, &minPrice, &maxPrc); err != nil {
		return nil, err
	}

	p := &model.TasteProfile{
		UserID:                userID,
		PreferredProductTypes: model.SplitList[model.ProductType](types),
		PreferredFinishTypes:  model.SplitList[model.FinishType](finishes),
		PreferredColorIDs:     make([]string, 0),
		BrandAffinities:       make(map[string]float64),
	}
	if minPrice.Valid && maxPrc.Valid {
		p.PriceRange = &model.PriceRange{Min: minPrice.Decimal, Max: maxPrc.Decimal}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT color_id FROM taste_profile_colors WHERE user_id = $1 ORDER BY color_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		p.PreferredColorIDs = append(p.PreferredColorIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	affRows, err := r.db.QueryContext(ctx, `SELECT brand_id, score FROM taste_brand_affinities WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer affRows.Close()
	for affRows.Next() {
		var (
			brandID string
			score   float64
		)
		if err := affRows.Scan(&brandID, &score); err != nil {
			return nil, err
		}
		p.BrandAffinities[brandID] = score
	}
	if err := affRows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *TastePostgres) Save(ctx context.Context, p *model.TasteProfile) error {
	const upsert = `
		INSERT INTO taste_profiles (user_id, preferred_product_types, preferred_finish_types, min_price, max_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_product_types = EXCLUDED.preferred_product_types,
			preferred_finish_types = EXCLUDED.preferred_finish_types,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price
	`
	var minPrice, maxPrice decimal.NullDecimal
	if p.PriceRange != nil {
		minPrice = decimal.NewNullDecimal(p.PriceRange.Min)
		maxPrice = decimal.NewNullDecimal(p.PriceRange.Max)
	}

	brandIDs := make([]string, 0, len(p.BrandAffinities))
	for id := range p.BrandAffinities {
		brandIDs = append(brandIDs, id)
	}
	sort.Strings(brandIDs)

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, p.UserID,
			model.JoinList(p.PreferredProductTypes),
			model.JoinList(p.PreferredFinishTypes),
			minPrice,
			maxPrice,
		); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM taste_profile_colors WHERE user_id = $1`, p.UserID); err != nil {
			return err
		}
		for _, colorID := range p.PreferredColorIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO taste_profile_colors (user_id, color_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				p.UserID, colorID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM taste_brand_affinities WHERE user_id = $1`, p.UserID); err != nil {
			return err
		}
		for _, brandID := range brandIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO taste_brand_affinities (user_id, brand_id, score) VALUES ($1, $2, $3)`,
				p.UserID, brandID, p.BrandAffinities[brandID]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TastePostgres) PreferredBrands(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT brand_id FROM user_preferred_brands WHERE user_id = $1 ORDER BY brand_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *TastePostgres) SetPreferredBrands(ctx context.Context, userID string, brandIDs []string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_preferred_brands WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, id := range brandIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_preferred_brands (user_id, brand_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

const addressColumns = `id, user_id, name, first_name, last_name, address_line_1, address_line_2,
	city, state, postal_code, country, phone, is_default, created_at`

// AddressPostgres is a PostgreSQL implementation of repository.AddressRepository.
type AddressPostgres struct {
	db *sql.DB
}

func NewAddressPostgres(db *sql.DB) *AddressPostgres {
	return &AddressPostgres{db: db}
}

var _ repository.AddressRepository = (*AddressPostgres)(nil)

func scanAddress(row rowScanner) (*model.ShippingAddress, error) {
	var a model.ShippingAddress
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.FirstName,
		&a.LastName,
		&a.AddressLine1,
		&a.AddressLine2,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.Phone,
		&a.IsDefault,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AddressPostgres) Create(ctx context.Context, a *model.ShippingAddress) (*model.ShippingAddress, error) {
	const q = `
		INSERT INTO shipping_addresses
			(user_id, name, first_name, last_name, address_line_1, address_line_2, city, state, postal_code, country, phone, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + addressColumns

	var out *model.ShippingAddress
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE shipping_addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, a.UserID); err != nil {
				return err
			}
		}
		var err error
		out, err = scanAddress(tx.QueryRowContext(ctx, q,
			a.UserID,
			a.Name,
			a.FirstName,
			a.LastName,
			a.AddressLine1,
			a.AddressLine2,
			a.City,
			a.State,
			a.PostalCode,
			a.Country,
			a.Phone,
			a.IsDefault,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AddressPostgres) FindByID(ctx context.Context, userID, id string) (*model.ShippingAddress, error) {
	const q = `SELECT ` + addressColumns + ` FROM shipping_addresses WHERE id = $1 AND user_id = $2`
	return scanAddress(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *AddressPostgres) ListByUser(ctx context.Context, userID string) ([]model.ShippingAddress, error) {
	const q = `SELECT ` + addressColumns + ` FROM shipping_addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ShippingAddress, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// WishlistPostgres is a PostgreSQL implementation of repository.WishlistRepository.
type WishlistPostgres struct {
	db *sql.DB
}

func NewWishlistPostgres(db *sql.DB) *WishlistPostgres {
	return &WishlistPostgres{db: db}
}

var _ repository.WishlistRepository = (*WishlistPostgres)(nil)

func (r *WishlistPostgres) ListProducts(ctx context.Context, userID string) ([]model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		JOIN brands b ON b.id = p.brand_id
		JOIN colors c ON c.id = p.color_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *WishlistPostgres) Add(ctx context.Context, userID, productID string) error {
	const q = `INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, productID)
	return err
}

func (r *WishlistPostgres) Remove(ctx context.Context, userID, productID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
