package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

var subscriberCols = []string{"id", "email", "name", "is_active", "subscribed_at"}

func TestNewsletterPostgres_Subscribers(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNewsletterPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`FROM newsletter_subscribers WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Ana@Example.com").
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow("s1", "ana@example.com", "Ana", false, time.Now()))
	mock.ExpectExec(`UPDATE newsletter_subscribers SET is_active = \$2`).
		WithArgs("ana@example.com", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO newsletter_subscribers").
		WithArgs("ana@example.com", "Ana").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery("FROM newsletter_subscribers WHERE is_active").
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow("s1", "ana@example.com", "Ana", true, time.Now()))

	s, err := repo.FindSubscriber(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	ok, err := repo.SetActive(ctx, "ana@example.com", true)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.CreateSubscriber(ctx, &model.NewsletterSubscriber{Email: "ana@example.com", Name: "Ana"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	active, err := repo.ActiveSubscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterPostgres_Campaign(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNewsletterPostgres(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO newsletter_campaigns").
		WithArgs("Weekly Beauty Essentials", "subject", "body", 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_at"}).AddRow("nc1", time.Now()))
	mock.ExpectExec("INSERT INTO newsletter_campaign_products").WithArgs("nc1", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO newsletter_campaign_products").WithArgs("nc1", "p2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`UPDATE newsletter_campaigns SET recipients_count = \$2 WHERE id = \$1`).
		WithArgs("nc1", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := repo.CreateCampaign(ctx, &model.NewsletterCampaign{
		Title:              "Weekly Beauty Essentials",
		Subject:            "subject",
		Content:            "body",
		FeaturedProductIDs: []string{"p1", "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "nc1", c.ID)

	require.NoError(t, repo.SetRecipients(ctx, "nc1", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
