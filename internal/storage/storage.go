package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not a known image type.
var ErrUnsupportedType = errors.New("unsupported image type")

// ImageStore persists uploaded recipe images. Save returns the public
// reference stored on the recipe; Delete accepts that reference and treats
// an already missing image as success.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// GenerateFileName returns a collision-free name keeping the original
// extension, or ErrUnsupportedType if the extension is not an image.
func GenerateFileName(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := imageExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}
	return uuid.NewString() + ext, nil
}

// ContentTypeFor returns the MIME type implied by the file extension.
func ContentTypeFor(name string) string {
	if ct, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
