package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// Sanitizer strips markup from free-text fields before they are stored.
type Sanitizer interface {
	Sanitize(s string) string
}

// SweetService implements the inventory operations.
type SweetService struct {
	repo      ports.SweetRepository
	movements ports.MovementRepository
	recorder  ports.MovementRecorder
	sanitizer Sanitizer
	now       func() time.Time
	logger    zerolog.Logger
}

// SweetServiceOption customises a SweetService.
type SweetServiceOption func(*SweetService)

// WithMovementRecorder enqueues a StockMovement after every successful adjustment.
func WithMovementRecorder(r ports.MovementRecorder) SweetServiceOption {
	return func(s *SweetService) { s.recorder = r }
}

// WithMovementHistory enables the Movements query.
func WithMovementHistory(r ports.MovementRepository) SweetServiceOption {
	return func(s *SweetService) { s.movements = r }
}

func WithSanitizer(z Sanitizer) SweetServiceOption {
	return func(s *SweetService) { s.sanitizer = z }
}

func WithClock(now func() time.Time) SweetServiceOption {
	return func(s *SweetService) { s.now = now }
}

func NewSweetService(repo ports.SweetRepository, logger zerolog.Logger, opts ...SweetServiceOption) *SweetService {
	s := &SweetService{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SweetService) clean(text string) string {
	text = strings.TrimSpace(text)
	if s.sanitizer == nil || text == "" {
		return text
	}
	return s.sanitizer.Sanitize(text)
}

func (s *SweetService) Create(ctx context.Context, in ports.SweetInput) (*domain.Sweet, error) {
	now := s.now().UTC()
	sweet := &domain.Sweet{
		Name:        strings.TrimSpace(in.Name),
		Category:    domain.Category(strings.TrimSpace(in.Category)),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: s.clean(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := sweet.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sweet); err != nil {
		return nil, fmt.Errorf("create sweet: %w", err)
	}

	s.logger.Info().Str("sweet_id", sweet.ID).Str("name", sweet.Name).Msg("sweet created")
	return sweet, nil
}

func (s *SweetService) List(ctx context.Context) ([]*domain.Sweet, error) {
	sweets, err := s.repo.List(ctx, ports.SweetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) GetByID(ctx context.Context, id string) (*domain.Sweet, error) {
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sweet: %w", err)
	}
	return sweet, nil
}

// Search combines every supplied criterion with AND semantics.
func (s *SweetService) Search(ctx context.Context, in ports.SearchInput) ([]*domain.Sweet, error) {
	filter := ports.SweetFilter{MinPrice: in.MinPrice, MaxPrice: in.MaxPrice}

	if name := strings.TrimSpace(in.Name); name != "" {
		filter.Name = regexp.QuoteMeta(name)
	}
	if raw := strings.TrimSpace(in.Category); raw != "" {
		cat := domain.Category(raw)
		if !cat.Valid() {
			return nil, domain.NewValidationError("category", "Invalid category")
		}
		filter.Category = cat
	}

	verr := &domain.ValidationError{}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		verr.Add("minPrice", "minPrice must be a non-negative number")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		verr.Add("maxPrice", "maxPrice must be a non-negative number")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	sweets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	return sweets, nil
}

func (s *SweetService) Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update sweet: %w", err)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	patch = patch.Normalized()
	if patch.Description != nil {
		cleaned := s.clean(*patch.Description)
		patch.Description = &cleaned
	}
	patch.Apply(current)
	if err := current.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update sweet: %w", err)
	}

	s.logger.Info().Str("sweet_id", id).Msg("sweet updated")
	return updated, nil
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase removes stock. A non-positive quantity buys a single unit.
func (s *SweetService) Purchase(ctx context.Context, in ports.StockInput) (*domain.Sweet, error) {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	at := s.now().UTC()
	sweet, err := s.repo.DecrementStock(ctx, in.SweetID, qty, at)
	if err != nil {
		return nil, fmt.Errorf("purchase: %w", err)
	}

	s.record(domain.StockMovement{
		SweetID:   sweet.ID,
		Kind:      domain.MovementPurchase,
		Quantity:  qty,
		Resulting: sweet.Quantity,
		ActorID:   in.ActorID,
		At:        at,
	})
	return sweet, nil
}

// Restock adds stock. Quantity must be strictly positive.
func (s *SweetService) Restock(ctx context.Context, in ports.StockInput) (*domain.Sweet, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	at := s.now().UTC()
	sweet, err := s.repo.IncrementStock(ctx, in.SweetID, in.Quantity, at)
	if err != nil {
		return nil, fmt.Errorf("restock: %w", err)
	}

	s.record(domain.StockMovement{
		SweetID:   sweet.ID,
		Kind:      domain.MovementRestock,
		Quantity:  in.Quantity,
		Resulting: sweet.Quantity,
		ActorID:   in.ActorID,
		At:        at,
	})
	return sweet, nil
}

// Movements returns the most recent stock movements of a sweet, newest first.
func (s *SweetService) Movements(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}

	if _, err := s.repo.FindByID(ctx, sweetID); err != nil {
		return nil, fmt.Errorf("movements: %w", err)
	}
	if s.movements == nil {
		return []*domain.StockMovement{}, nil
	}

	list, err := s.movements.ListBySweet(ctx, sweetID, limit)
	if err != nil {
		return nil, fmt.Errorf("movements: %w", err)
	}
	return list, nil
}

func (s *SweetService) record(m domain.StockMovement) {
	s.logger.Info().
		Str("sweet_id", m.SweetID).
		Str("kind", string(m.Kind)).
		Int("quantity", m.Quantity).
		Int("resulting", m.Resulting).
		Msg("stock adjusted")
	if s.recorder != nil {
		s.recorder.Enqueue(m)
	}
}
