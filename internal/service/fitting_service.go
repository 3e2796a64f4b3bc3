package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// fittingService implements FittingService.
type fittingService struct {
	db          repository.DB
	fittingRepo repository.FittingRepository
	catalogRepo repository.CatalogRepository
	ttl         time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewFittingService creates a new fitting room service.
func NewFittingService(
	db repository.DB,
	fittingRepo repository.FittingRepository,
	catalogRepo repository.CatalogRepository,
	ttl time.Duration,
	logger zerolog.Logger,
) FittingService {
	return &fittingService{
		db:          db,
		fittingRepo: fittingRepo,
		catalogRepo: catalogRepo,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger.With().Str("service", "fitting").Logger(),
	}
}

// Create starts a new fitting cart. Fitting carts are never reused.
func (s *fittingService) Create(ctx context.Context, actor model.Actor, storeID string) (*model.FittingCart, error) {
	if storeID == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "storeId is required")
	}

	exists, err := s.catalogRepo.StoreExists(ctx, s.db, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create fitting cart: %w", err)
	}
	if !exists {
		return nil, model.ErrStoreNotFound
	}

	now := s.now()
	cart := &model.FittingCart{
		ID:        uuid.New(),
		Owner:     model.OwnerOf(actor),
		StoreID:   storeID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Requests:  []model.FittingRoomRequest{},
	}

	if err := s.fittingRepo.Create(ctx, s.db, cart); err != nil {
		s.logger.Error().Err(err).Str("store_id", storeID).Msg("failed to create fitting cart")
		return nil, fmt.Errorf("failed to create fitting cart: %w", err)
	}

	s.logger.Info().
		Str("fitting_cart_id", cart.ID.String()).
		Str("store_id", storeID).
		Msg("fitting cart created")

	return cart, nil
}

// Get retrieves a fitting cart with its requests.
func (s *fittingService) Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.FittingCart, error) {
	cart, err := s.fittingRepo.GetByID(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fitting cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrFittingNotFound
	}
	if err := checkCart(cart, cart.Owner, actor, s.now()); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddRequest appends a pending request to a live fitting cart.
func (s *fittingService) AddRequest(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.FittingRequestCreate) (*model.FittingRoomRequest, error) {
	if req.VariantID == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "variantId is required")
	}

	cart, err := s.Get(ctx, actor, cartID)
	if err != nil {
		return nil, err
	}

	variant, err := s.catalogRepo.GetVariant(ctx, s.db, req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("failed to add fitting request: %w", err)
	}
	if variant == nil {
		return nil, model.ErrVariantNotFound
	}

	room := req.FittingRoomID
	if room != nil && *room == "" {
		room = nil
	}

	now := s.now()
	request := &model.FittingRoomRequest{
		ID:            uuid.New(),
		FittingCartID: cart.ID,
		VariantID:     variant.ID,
		FittingRoomID: room,
		Status:        model.FittingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.fittingRepo.AddRequest(ctx, s.db, request); err != nil {
		s.logger.Error().Err(err).Str("fitting_cart_id", cartID.String()).Msg("failed to add fitting request")
		return nil, fmt.Errorf("failed to add fitting request: %w", err)
	}

	s.logger.Debug().
		Str("fitting_cart_id", cartID.String()).
		Str("request_id", request.ID.String()).
		Str("variant_id", variant.ID).
		Msg("fitting request added")

	return request, nil
}

// AssignRoom sets or overwrites the room of a pending request. Sharing a
// room with another pending request is reported, not refused.
func (s *fittingService) AssignRoom(ctx context.Context, actor model.Actor, requestID uuid.UUID, roomID string) (*model.StoreFittingRequest, error) {
	return s.UpdateRequest(ctx, actor, requestID, model.FittingRequestUpdate{FittingRoomID: &roomID})
}

// SetStatus applies the request transition table: pending to fulfilled by
// staff, pending to cancelled by whoever may access the cart.
func (s *fittingService) SetStatus(ctx context.Context, actor model.Actor, requestID uuid.UUID, status model.FittingStatus) (*model.FittingRoomRequest, error) {
	updated, err := s.UpdateRequest(ctx, actor, requestID, model.FittingRequestUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	return &updated.FittingRoomRequest, nil
}

// UpdateRequest assigns a room and/or changes the status of a request.
// Every check runs before the first write and both writes share one
// transaction, so a rejected status change leaves the room untouched.
func (s *fittingService) UpdateRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, upd model.FittingRequestUpdate) (*model.StoreFittingRequest, error) {
	if err := validateRequestUpdate(actor, upd); err != nil {
		return nil, err
	}

	req, cart, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		switch *upd.Status {
		case model.FittingFulfilled:
			if err := requireStaff(actor); err != nil {
				return nil, err
			}
		case model.FittingCancelled:
			if !canAccess(cart.Owner, actor) {
				return nil, model.ErrForbidden
			}
		}
	}

	if cart.ExpiredAt(s.now()) {
		return nil, model.ErrCartExpired
	}
	if req.Status.Terminal() {
		return nil, model.ErrInvalidTransition
	}

	current := req
	others := 0
	err = withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		if upd.FittingRoomID != nil {
			assigned, err := s.fittingRepo.AssignRoom(ctx, tx, requestID, *upd.FittingRoomID)
			if err != nil {
				return fmt.Errorf("failed to assign fitting room: %w", err)
			}
			if assigned == nil {
				return model.ErrRequestNotFound
			}
			current = assigned
		}

		if upd.Status != nil {
			updated, err := s.fittingRepo.TransitionStatus(ctx, tx, requestID, model.FittingPending, *upd.Status)
			if err != nil {
				return fmt.Errorf("failed to update fitting request: %w", err)
			}
			if updated == nil {
				// lost a race with another transition
				return model.ErrInvalidTransition
			}
			current = updated
		}

		if upd.FittingRoomID != nil {
			n, err := s.fittingRepo.CountRoomUsage(ctx, tx, cart.StoreID, *upd.FittingRoomID, requestID)
			if err != nil {
				return fmt.Errorf("failed to assign fitting room: %w", err)
			}
			others = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if others > 0 {
		s.logger.Warn().
			Str("request_id", requestID.String()).
			Str("store_id", cart.StoreID).
			Str("fitting_room_id", *upd.FittingRoomID).
			Int("others", others).
			Msg("fitting room assigned to more than one pending request")
	}
	if upd.Status != nil {
		s.logger.Info().
			Str("request_id", requestID.String()).
			Str("status", string(*upd.Status)).
			Str("user_id", actor.UserID).
			Msg("fitting request status changed")
	}

	return &model.StoreFittingRequest{
		FittingRoomRequest: *current,
		StoreID:            cart.StoreID,
		Owner:              cart.Owner,
		DuplicateRoom:      others > 0,
	}, nil
}

func validateRequestUpdate(actor model.Actor, upd model.FittingRequestUpdate) error {
	if upd.FittingRoomID == nil && upd.Status == nil {
		return model.NewValidationError(model.ErrCodeMissingField, "fittingRoomId or status is required")
	}
	if upd.FittingRoomID != nil {
		if err := requireStaff(actor); err != nil {
			return err
		}
		if *upd.FittingRoomID == "" {
			return model.NewValidationError(model.ErrCodeMissingField, "fittingRoomId is required")
		}
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return model.ErrInvalidStatus
		}
		if *upd.Status == model.FittingPending {
			return model.ErrInvalidTransition
		}
	}
	return nil
}

// Remove hard deletes a request, gated like cancellation.
func (s *fittingService) Remove(ctx context.Context, actor model.Actor, requestID uuid.UUID) error {
	_, cart, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := checkCart(cart, cart.Owner, actor, s.now()); err != nil {
		return err
	}

	deleted, err := s.fittingRepo.DeleteRequest(ctx, s.db, requestID)
	if err != nil {
		return fmt.Errorf("failed to remove fitting request: %w", err)
	}
	if !deleted {
		return model.ErrRequestNotFound
	}

	s.logger.Debug().Str("request_id", requestID.String()).Msg("fitting request removed")
	return nil
}

// ListStoreRequests lists pending requests of a store with duplicate flags.
func (s *fittingService) ListStoreRequests(ctx context.Context, actor model.Actor, storeID string) ([]model.StoreFittingRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	requests, err := s.fittingRepo.ListPendingByStore(ctx, s.db, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fitting requests: %w", err)
	}
	return requests, nil
}

func (s *fittingService) loadRequest(ctx context.Context, requestID uuid.UUID) (*model.FittingRoomRequest, *model.FittingCart, error) {
	req, cart, err := s.fittingRepo.GetRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get fitting request: %w", err)
	}
	if req == nil {
		return nil, nil, model.ErrRequestNotFound
	}
	return req, cart, nil
}
