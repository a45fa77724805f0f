package ports

import (
	"context"
	"io"

	"github.com/kata/sweetshop/internal/core/domain"
)

// ImageStore writes image bytes under filename and returns the public reference.
type ImageStore interface {
	Save(ctx context.Context, filename string, data []byte) (*domain.StoredImage, error)
}

type ImageService interface {
	Upload(ctx context.Context, r io.Reader) (*domain.StoredImage, error)
}
