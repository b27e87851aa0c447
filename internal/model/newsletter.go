package model

import "time"

type NewsletterSubscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type NewsletterCampaign struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Subject            string    `json:"subject"`
	Content            string    `json:"content"`
	RecipientsCount    int       `json:"recipients_count"`
	FeaturedProductIDs []string  `json:"featured_product_ids"`
	SentAt             time.Time `json:"sent_at"`
}
