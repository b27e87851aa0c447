package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mescude1/skinly-ecomm/internal/config"
)

func TestProductImageKey(t *testing.T) {
	key := ProductImageKey("Lipstick.PNG", "image/png")
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "products/"), ".png"), 36)

	assert.True(t, strings.HasSuffix(ProductImageKey("blob", "image/webp"), ".webp"))
	assert.NotEqual(t, ProductImageKey("a.jpg", ""), ProductImageKey("a.jpg", ""))
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("image/jpeg"))
	assert.NoError(t, ValidateImage("IMAGE/PNG; charset=binary"))
	assert.ErrorIs(t, ValidateImage("application/pdf"), ErrUnsupportedImage)
	assert.ErrorIs(t, ValidateImage(""), ErrUnsupportedImage)
}

func TestNewMinIO_ConfigValidation(t *testing.T) {
	_, err := NewMinIO(context.Background(), config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}
