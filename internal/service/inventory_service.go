package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	db        repository.DB
	repo      repository.InventoryRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	db repository.DB,
	repo repository.InventoryRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		db:        db,
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("service", "inventory").Logger(),
	}
}

// GetByID retrieves an inventory row.
func (s *inventoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	inv, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if inv == nil {
		return nil, model.ErrInventoryNotFound
	}
	return inv, nil
}

// Get retrieves the row for a store and variant.
func (s *inventoryService) Get(ctx context.Context, storeID, variantID string) (*model.Inventory, error) {
	inv, err := s.repo.GetByStoreVariant(ctx, s.db, storeID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if inv == nil {
		return nil, model.ErrInventoryNotFound
	}
	return inv, nil
}

// Adjust applies a relative stock change through the floor checked ledger path.
func (s *inventoryService) Adjust(ctx context.Context, actor model.Actor, id uuid.UUID, delta int) (*model.Inventory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if delta > math.MaxInt32 || delta < -math.MaxInt32 {
		return nil, model.ErrQuantityOutOfRange
	}

	inv, err := s.repo.ApplyDelta(ctx, s.db, id, delta)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			metrics.RecordInventoryAdjustment(domainErr.Code)
			s.logger.Warn().
				Str("inventory_id", id.String()).
				Int("delta", delta).
				Str("code", domainErr.Code).
				Msg("inventory adjustment rejected")
			return nil, err
		}
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	metrics.RecordInventoryAdjustment("applied")
	s.logger.Info().
		Str("inventory_id", id.String()).
		Int("delta", delta).
		Int("quantity", inv.Quantity).
		Str("user_id", actor.UserID).
		Msg("inventory adjusted")

	s.publish(ctx, inv)
	return inv, nil
}

// Update sets quantity and/or status.
func (s *inventoryService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req model.InventoryUpdateRequest) (*model.Inventory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if req.Quantity == nil && req.Status == nil {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "quantity or status is required")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, model.ErrNegativeQuantity
	}
	if req.Quantity != nil && *req.Quantity > math.MaxInt32 {
		return nil, model.ErrQuantityOutOfRange
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	inv, err := s.repo.Update(ctx, s.db, id, req.Quantity, req.Status)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	s.logger.Info().
		Str("inventory_id", id.String()).
		Int("quantity", inv.Quantity).
		Str("status", string(inv.Status)).
		Str("user_id", actor.UserID).
		Msg("inventory updated")

	s.publish(ctx, inv)
	return inv, nil
}

func (s *inventoryService) publish(ctx context.Context, inv *model.Inventory) {
	event := events.New(events.InventoryChanged, inv.ID.String(), inv.StoreID, inv)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("inventory_id", inv.ID.String()).Msg("failed to publish inventory event")
	}
}
