package ports

import (
	"context"

	"github.com/kata/sweetshop/internal/core/domain"
)

// SweetInput carries all data needed to create a sweet.
type SweetInput struct {
	Name        string
	Category    string
	Price       float64
	Quantity    int
	Description string
	ImageURL    string
}

// SearchInput holds the raw search query parameters.
type SearchInput struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// StockInput describes a purchase or restock request.
type StockInput struct {
	SweetID  string
	Quantity int
	ActorID  string
}

type InventoryService interface {
	Create(ctx context.Context, in SweetInput) (*domain.Sweet, error)
	List(ctx context.Context) ([]*domain.Sweet, error)
	GetByID(ctx context.Context, id string) (*domain.Sweet, error)
	Search(ctx context.Context, in SearchInput) ([]*domain.Sweet, error)
	Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, in StockInput) (*domain.Sweet, error)
	Restock(ctx context.Context, in StockInput) (*domain.Sweet, error)
	Movements(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error)
}

// MovementRecorder accepts movements for asynchronous persistence.
type MovementRecorder interface {
	Enqueue(m domain.StockMovement)
}

// MovementService persists a single movement.
type MovementService interface {
	Process(ctx context.Context, m domain.StockMovement) error
}
