package postgres

import (
	"context"
	"database/sql"

	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

// NewsletterPostgres stores subscribers and sent campaigns.
type NewsletterPostgres struct {
	db *sql.DB
}

func NewNewsletterPostgres(db *sql.DB) *NewsletterPostgres {
	return &NewsletterPostgres{db: db}
}

var _ repository.NewsletterRepository = (*NewsletterPostgres)(nil)

const subscriberColumns = `id, email, name, is_active, subscribed_at`

func scanSubscriber(row rowScanner) (*model.NewsletterSubscriber, error) {
	var s model.NewsletterSubscriber
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &s.IsActive, &s.SubscribedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *NewsletterPostgres) FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	const q = `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE LOWER(email) = LOWER($1)`
	return scanSubscriber(r.db.QueryRowContext(ctx, q, email))
}

func (r *NewsletterPostgres) CreateSubscriber(ctx context.Context, s *model.NewsletterSubscriber) (*model.NewsletterSubscriber, error) {
	const q = `
		INSERT INTO newsletter_subscribers (email, name, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING ` + subscriberColumns
	out, err := scanSubscriber(r.db.QueryRowContext(ctx, q, s.Email, s.Name))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

func (r *NewsletterPostgres) SetActive(ctx context.Context, email string, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE newsletter_subscribers SET is_active = $2 WHERE LOWER(email) = LOWER($1)`, email, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *NewsletterPostgres) ActiveSubscribers(ctx context.Context) ([]model.NewsletterSubscriber, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE is_active ORDER BY subscribed_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.NewsletterSubscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *NewsletterPostgres) CreateCampaign(ctx context.Context, c *model.NewsletterCampaign) (*model.NewsletterCampaign, error) {
	const q = `
		INSERT INTO newsletter_campaigns (title, subject, content, recipients_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sent_at
	`
	out := *c
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, c.Title, c.Subject, c.Content, c.RecipientsCount).Scan(&out.ID, &out.SentAt); err != nil {
			return err
		}
		for _, pid := range c.FeaturedProductIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO newsletter_campaign_products (campaign_id, product_id) VALUES ($1, $2)`, out.ID, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *NewsletterPostgres) SetRecipients(ctx context.Context, campaignID string, n int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE newsletter_campaigns SET recipients_count = $2 WHERE id = $1`, campaignID, n)
	return err
}
