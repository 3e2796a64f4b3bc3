package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	db            repository.DB
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	publisher     events.Publisher
	onlineStoreID string
	now           func() time.Time
	logger        zerolog.Logger
}

// NewOrderService creates a new order service. Orders of onlineStoreID may
// be completed by any caller; other stores require staff.
func NewOrderService(
	db repository.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	publisher events.Publisher,
	onlineStoreID string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		db:            db,
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		publisher:     publisher,
		onlineStoreID: onlineStoreID,
		now:           time.Now,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// Get retrieves an order with its lines for its owner or staff.
func (s *orderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	order, details, err := s.orderRepo.GetByID(ctx, s.db, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	if order.UserID != actor.UserID && !actor.IsStaff() {
		return nil, model.ErrForbidden
	}

	return &model.OrderResponse{Order: order, Details: details}, nil
}

// UpdateStatus dispatches a status change to complete or cancel.
func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (*model.Order, error) {
	switch req.Status {
	case model.OrderCompleted:
		return s.complete(ctx, actor, id, req.StoreContext, req.CartID)
	case model.OrderCancelled:
		return s.cancel(ctx, actor, id)
	default:
		return nil, model.ErrInvalidStatus
	}
}

// complete marks a pending order completed. The store context must match
// the order; outside the online store only staff may confirm completion.
func (s *orderService) complete(ctx context.Context, actor model.Actor, id uuid.UUID, storeContext string, cartID *uuid.UUID) (*model.Order, error) {
	if storeContext == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "storeContext is required")
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if storeContext != order.StoreID {
		return nil, model.ErrStoreMismatch
	}
	if storeContext != s.onlineStoreID {
		if err := requireStaff(actor); err != nil {
			return nil, err
		}
	}

	updated, err := s.transition(ctx, actor, order, model.OrderCompleted)
	if err != nil {
		return nil, err
	}

	if cartID != nil {
		if _, err := s.cartRepo.Delete(ctx, s.db, *cartID); err != nil {
			s.logger.Warn().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete stray cart")
		}
	}

	return updated, nil
}

// cancel marks a pending order cancelled. Only the order owner may cancel.
func (s *orderService) cancel(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, model.ErrForbidden
	}

	return s.transition(ctx, actor, order, model.OrderCancelled)
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, _, err := s.orderRepo.GetByID(ctx, s.db, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) transition(ctx context.Context, actor model.Actor, order *model.Order, to model.OrderStatus) (*model.Order, error) {
	if order.Status != model.OrderPending {
		return nil, model.ErrInvalidTransition
	}

	updated, err := s.orderRepo.TransitionStatus(ctx, s.db, order.ID, model.OrderPending, to, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if updated == nil {
		// another request moved the order first
		return nil, model.ErrInvalidTransition
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(to)).
		Str("user_id", actor.UserID).
		Msg("order status changed")

	event := events.New(events.OrderStatusChanged, order.ID.String(), order.StoreID, map[string]string{
		"from": string(model.OrderPending),
		"to":   string(to),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order event")
	}

	return updated, nil
}
