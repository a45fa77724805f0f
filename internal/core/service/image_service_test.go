package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/core/domain"
)

type memImageStore struct {
	files map[string][]byte
}

func (m *memImageStore) Save(_ context.Context, name string, data []byte) (*domain.StoredImage, error) {
	m.files[name] = data
	return &domain.StoredImage{URL: "/uploads/" + name, Filename: name}, nil
}

// pngHeader is the smallest prefix mimetype recognises as image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImageService_Upload_PNG(t *testing.T) {
	store := &memImageStore{files: map[string][]byte{}}
	svc := NewImageService(store, 1024, zerolog.Nop())

	img, err := svc.Upload(context.Background(), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasSuffix(img.Filename, ".png") {
		t.Fatalf("expected .png extension, got %q", img.Filename)
	}
	if img.URL != "/uploads/"+img.Filename {
		t.Fatalf("unexpected url %q", img.URL)
	}
	if _, ok := store.files[img.Filename]; !ok {
		t.Fatalf("file not stored")
	}
}

func TestImageService_Upload_Rejections(t *testing.T) {
	svc := NewImageService(&memImageStore{files: map[string][]byte{}}, 16, zerolog.Nop())

	if _, err := svc.Upload(context.Background(), strings.NewReader("just text")); !errors.Is(err, domain.ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), bytes.NewReader(pngHeader)); !errors.Is(err, domain.ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), bytes.NewReader(nil)); !errors.Is(err, domain.ErrImageMissing) {
		t.Fatalf("expected ErrImageMissing, got %v", err)
	}
}

func TestImageService_Upload_RejectsSVG(t *testing.T) {
	store := &memImageStore{files: map[string][]byte{}}
	svc := NewImageService(store, 1024, zerolog.Nop())

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	if _, err := svc.Upload(context.Background(), strings.NewReader(svg)); !errors.Is(err, domain.ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if len(store.files) != 0 {
		t.Fatalf("nothing should be stored, got %d files", len(store.files))
	}
}
