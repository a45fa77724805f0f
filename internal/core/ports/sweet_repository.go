package ports

import (
	"context"
	"time"

	"github.com/kata/sweetshop/internal/core/domain"
)

// SweetFilter carries the optional search criteria. Empty or nil fields are
// not applied.
type SweetFilter struct {
	Name     string // case-insensitive substring, already regex-escaped
	Category domain.Category
	MinPrice *float64
	MaxPrice *float64
}

// SweetRepository defines persistence operations for sweets.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) error
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	// List returns the sweets matching filter, newest first.
	List(ctx context.Context, filter SweetFilter) ([]*domain.Sweet, error)
	// Update $sets only the fields present in patch and returns the stored record.
	Update(ctx context.Context, id string, patch domain.SweetPatch, at time.Time) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	// DecrementStock atomically subtracts qty only when at least qty units
	// remain, returning domain.ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Sweet, error)
	IncrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Sweet, error)
}

// MovementRepository persists the stock movement audit trail.
type MovementRepository interface {
	Insert(ctx context.Context, m *domain.StockMovement) error
	ListBySweet(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error)
}
