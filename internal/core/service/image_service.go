package service

import (
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const defaultMaxImageBytes = 5 << 20

// Raster formats only; image/svg+xml is refused.
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

type ImageService struct {
	store    ports.ImageStore
	maxBytes int64
	log      zerolog.Logger
}

func NewImageService(store ports.ImageStore, maxBytes int64, log zerolog.Logger) *ImageService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &ImageService{store: store, maxBytes: maxBytes, log: log}
}

// Upload sniffs the content type of r and stores it under a random name.
func (s *ImageService) Upload(ctx context.Context, r io.Reader) (*domain.StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("upload image: read: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrImageMissing
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, domain.ErrUnsupportedImage
	}

	img, err := s.store.Save(ctx, uuid.NewString()+mt.Extension(), data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	s.log.Info().Str("filename", img.Filename).Str("mime", mt.String()).Int("bytes", len(data)).Msg("image uploaded")
	return img, nil
}
