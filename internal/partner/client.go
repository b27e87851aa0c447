// Package partner reads the allied store's public product feed.
package partner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/logging"
)

// Product is one entry of the partner feed. Fields the partner omits stay zero.
type Product struct {
	ID        any         `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Stock     int         `json:"stock"`
	Image     string      `json:"image"`
	DetailURL string      `json:"detail_url"`
}

type feed struct {
	Products []Product `json:"products"`
}

// Client fetches the feed through a circuit breaker.
type Client struct {
	url  string
	http *http.Client
	cb   *gobreaker.CircuitBreaker[[]Product]
}

// maxFeedBytes bounds how much of a partner response is read.
const maxFeedBytes = 4 << 20

func NewClient(cfg config.PartnerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]Product](gobreaker.Settings{
		Name:        "partner-feed",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("component", "partner").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit_state_change")
		},
	})

	return &Client{
		url:  cfg.FeedURL,
		http: &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		cb:   cb,
	}
}

// Products returns the partner's products. It never fails: an unconfigured URL,
// transport errors, non-200 responses and an open breaker all yield an empty list
// and a logged warning.
func (c *Client) Products(ctx context.Context) []Product {
	if c.url == "" {
		return []Product{}
	}

	products, err := c.cb.Execute(func() ([]Product, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		ev := logging.Ctx(ctx).Warn().Str("component", "partner").Err(err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			ev = ev.Bool("breaker_open", true)
		}
		ev.Msg("partner_feed_unavailable")
		return []Product{}
	}
	return products
}

func (c *Client) fetch(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch partner feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFeedBytes))
		return nil, fmt.Errorf("partner feed returned status %d", resp.StatusCode)
	}

	var f feed
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode partner feed: %w", err)
	}
	if f.Products == nil {
		f.Products = []Product{}
	}
	return f.Products, nil
}
