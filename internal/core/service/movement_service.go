package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

type movementService struct {
	repo ports.MovementRepository
	log  zerolog.Logger
}

// NewMovementService returns a MovementService that writes to the audit trail.
func NewMovementService(repo ports.MovementRepository, log zerolog.Logger) ports.MovementService {
	return &movementService{repo: repo, log: log}
}

// Process validates and persists a single stock movement.
func (s *movementService) Process(ctx context.Context, m domain.StockMovement) error {
	if m.SweetID == "" {
		return fmt.Errorf("process movement: empty sweet id")
	}
	if m.Kind != domain.MovementPurchase && m.Kind != domain.MovementRestock {
		return fmt.Errorf("process movement: unknown kind %q", m.Kind)
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("process movement: %w", domain.ErrInvalidQuantity)
	}

	if err := s.repo.Insert(ctx, &m); err != nil {
		return fmt.Errorf("process movement: %w", err)
	}

	s.log.Debug().
		Str("sweet_id", m.SweetID).
		Str("kind", string(m.Kind)).
		Int("quantity", m.Quantity).
		Msg("movement recorded")
	return nil
}
