package postgres

import (
	"context"
	"database/sql"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// ReviewPostgres is a PostgreSQL implementation of repository.ReviewRepository.
type ReviewPostgres struct {
	db *sql.DB
}

func NewReviewPostgres(db *sql.DB) *ReviewPostgres {
	return &ReviewPostgres{db: db}
}

var _ repository.ReviewRepository = (*ReviewPostgres)(nil)

const reviewSelect = `SELECT r.id, r.user_id, u.username, r.product_id, r.rating, r.comment, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

func scanReview(row rowScanner) (*model.Review, error) {
	var rv model.Review
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.Username, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func queryReviews(ctx context.Context, db *sql.DB, q string, args ...any) ([]model.Review, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rv)
	}
	return items, rows.Err()
}

// Upsert relies on xmax being zero only for freshly inserted rows.
func (r *ReviewPostgres) Upsert(ctx context.Context, rv *model.Review) (bool, error) {
	const q = `
		INSERT INTO reviews (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var created bool
	if err := r.db.QueryRowContext(ctx, q, rv.UserID, rv.ProductID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt, &created); err != nil {
		return false, err
	}
	return created, nil
}

func (r *ReviewPostgres) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	return queryReviews(ctx, r.db, reviewSelect+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id`, productID)
}

func (r *ReviewPostgres) ListByUser(ctx context.Context, userID string, limit int) ([]model.Review, error) {
	return queryReviews(ctx, r.db, reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC, r.id LIMIT $2`, userID, limit)
}

func (r *ReviewPostgres) FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.user_id = $1 AND r.product_id = $2`, userID, productID))
}
