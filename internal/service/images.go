package service

import (
	"context"
	"time"

	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

const (
	// PlaceholderImage is served for products without an uploaded image.
	PlaceholderImage = "/static/images/placeholder.jpg"
	imageURLExpiry   = time.Hour
)

// imageURLs turns stored image keys into presigned download URLs.
type imageURLs struct {
	store storage.Storage
}

func (u imageURLs) url(ctx context.Context, key string) string {
	if key == "" || u.store == nil {
		return PlaceholderImage
	}
	url, err := u.store.PresignGet(ctx, key, imageURLExpiry)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("presign_image_failed")
		return PlaceholderImage
	}
	return url
}

func (u imageURLs) fill(ctx context.Context, products []model.Product) {
	for i := range products {
		products[i].ImageURL = u.url(ctx, products[i].ImageKey)
	}
}

func (u imageURLs) fillOne(ctx context.Context, p *model.Product) {
	if p != nil {
		p.ImageURL = u.url(ctx, p.ImageKey)
	}
}

func (u imageURLs) fillCart(ctx context.Context, items []model.CartItem) {
	for i := range items {
		u.fillOne(ctx, &items[i].Product)
	}
}
