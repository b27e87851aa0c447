package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/mailer"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
)

const (
	Subscribed        = "subscribed"
	AlreadySubscribed = "already_subscribed"
	Reactivated       = "reactivated"

	weeklyTitle     = "Weekly Beauty Essentials"
	weeklyContent   = "Discover this week's must-have beauty products and get exclusive tips from our beauty experts."
	weeklyFeatured  = 4
	defaultGreeting = "Beauty Lover"
)

// CampaignResult summarizes a newsletter run.
type CampaignResult struct {
	Campaign    *model.NewsletterCampaign `json:"campaign,omitempty"`
	Subscribers int                       `json:"subscribers"`
	Sent        int                       `json:"sent"`
	Failed      int                       `json:"failed"`
}

type NewsletterService interface {
	// Subscribe returns Subscribed, AlreadySubscribed or Reactivated.
	Subscribe(ctx context.Context, email, name string) (string, error)
	Unsubscribe(ctx context.Context, email string) error

	// SendWeekly mails the weekly campaign to every active subscriber.
	// Individual delivery failures are counted, not returned.
	SendWeekly(ctx context.Context) (*CampaignResult, error)
}

type newsletterService struct {
	repo     repository.NewsletterRepository
	products repository.ProductRepository
	mail     mailer.Mailer
	baseURL  string
	now      func() time.Time
}

func NewNewsletterService(repo repository.NewsletterRepository, products repository.ProductRepository, mail mailer.Mailer, baseURL string) NewsletterService {
	return &newsletterService{
		repo:     repo,
		products: products,
		mail:     mail,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, email, name string) (string, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return "", ErrEmailRequired
	}
	log := logging.Ctx(ctx).With().Str("component", "newsletter").Str("email", email).Logger()

	sub, err := s.repo.FindSubscriber(ctx, email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.repo.CreateSubscriber(ctx, &model.NewsletterSubscriber{Email: email, Name: name, IsActive: true}); err != nil {
			log.Error().Err(err).Msg("subscribe_failed")
			return "", ErrSubscriptionFailed
		}
		log.Info().Msg("subscriber_created")
		return Subscribed, nil
	case err != nil:
		log.Error().Err(err).Msg("subscribe_failed")
		return "", ErrSubscriptionFailed
	}

	if sub.IsActive {
		log.Info().Msg("subscriber_already_active")
		return AlreadySubscribed, nil
	}
	if _, err := s.repo.SetActive(ctx, email, true); err != nil {
		log.Error().Err(err).Msg("subscribe_failed")
		return "", ErrSubscriptionFailed
	}
	log.Info().Msg("subscriber_reactivated")
	return Reactivated, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	ok, err := s.repo.SetActive(ctx, email, false)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *newsletterService) SendWeekly(ctx context.Context) (*CampaignResult, error) {
	log := logging.Ctx(ctx).With().Str("component", "newsletter").Logger()

	subs, err := s.repo.ActiveSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	if len(subs) == 0 {
		log.Info().Msg("no_active_subscribers")
		return &CampaignResult{}, nil
	}

	featured, err := s.products.Find(ctx, repository.ProductFilter{InStockOnly: true, OrderBy: repository.OrderNewest}, weeklyFeatured)
	if err != nil {
		return nil, fmt.Errorf("load featured products: %w", err)
	}
	ids := make([]string, 0, len(featured))
	for _, p := range featured {
		ids = append(ids, p.ID)
	}

	campaign, err := s.repo.CreateCampaign(ctx, &model.NewsletterCampaign{
		Title:              weeklyTitle,
		Subject:            "Your Weekly Beauty Fix - " + s.now().Format("January 02, 2006"),
		Content:            weeklyContent,
		RecipientsCount:    len(subs),
		FeaturedProductIDs: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	res := &CampaignResult{Campaign: campaign, Subscribers: len(subs)}
	for _, sub := range subs {
		msg := mailer.Message{
			To:             sub.Email,
			Subject:        campaign.Subject,
			Body:           s.body(campaign, featured, sub),
			UnsubscribeURL: s.baseURL + "/newsletter/unsubscribe?email=" + url.QueryEscape(sub.Email),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			res.Failed++
			log.Warn().Err(err).Str("email", sub.Email).Msg("newsletter_send_failed")
			continue
		}
		res.Sent++
	}

	if err := s.repo.SetRecipients(ctx, campaign.ID, res.Sent); err != nil {
		return nil, fmt.Errorf("update campaign recipients: %w", err)
	}
	campaign.RecipientsCount = res.Sent

	log.Info().
		Str("campaign_id", campaign.ID).
		Int("subscribers", res.Subscribers).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("featured", len(featured)).
		Msg("newsletter_campaign_completed")
	return res, nil
}

func (s *newsletterService) body(c *model.NewsletterCampaign, featured []model.Product, sub model.NewsletterSubscriber) string {
	name := sub.Name
	if name == "" {
		name = defaultGreeting
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n", name, c.Content)
	if len(featured) > 0 {
		b.WriteString("\nThis week's picks:\n")
		for _, p := range featured {
			fmt.Fprintf(&b, "- %s (%s) $%s: %s/products/%s\n", p.Name, p.BrandName, p.Price.StringFixed(2), s.baseURL, p.ID)
		}
	}
	b.WriteString("\nBest regards,\nThe Skinly Team\n")
	return b.String()
}
