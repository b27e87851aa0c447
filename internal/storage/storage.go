// Package storage keeps product images in an S3-compatible bucket.
// Implementations stream uploads and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImagePrefix is the key prefix every product image is stored under.
const ImagePrefix = "products"

// ErrUnsupportedImage is returned for uploads whose content type is not an image we serve.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PutOptions describe an upload. Size is the exact byte count, or -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Object is what the backend reports about a stored object.
type Object struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is the object store used for product images.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (Object, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ProductImageKey returns a fresh "products/<uuid><ext>" key. The extension comes from
// the original filename, or from the content type when the filename has none.
func ProductImageKey(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = imageTypes[contentType]
	}
	return ImagePrefix + "/" + uuid.New().String() + ext
}

// ValidateImage rejects content types outside the image allowlist.
func ValidateImage(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if _, ok := imageTypes[ct]; !ok {
		return ErrUnsupportedImage
	}
	return nil
}
