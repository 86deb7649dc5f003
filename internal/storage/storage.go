// Package storage holds product images and weaver logos.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize bounds a single image upload.
const MaxUploadSize = 5 << 20

var ErrUnsupportedType = errors.New("unsupported image type")

// Storage defines the interface for file storage operations.
type Storage interface {
	// Upload stores a file and returns the result with key and URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a file by its key.
	Delete(ctx context.Context, key string) error
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for an accepted image type.
func ImageExtension(contentType string) (string, error) {
	ct, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageExtensions[strings.TrimSpace(strings.ToLower(ct))]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// ProductImageKey is "{owner}/products/{uuid}{ext}".
func ProductImageKey(owner, ext string) string {
	return path.Join(owner, "products", uuid.NewString()+ext)
}

// LogoKey is "{owner}/logo/{uuid}{ext}".
func LogoKey(owner, ext string) string {
	return path.Join(owner, "logo", uuid.NewString()+ext)
}
