package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"storefront/internal/events"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const transferLockTTL = 30 * time.Second

var tracer = otel.Tracer("storefront/internal/service")

// transferService implements TransferService.
type transferService struct {
	db          repository.DB
	cartRepo    repository.CartRepository
	fittingRepo repository.FittingRepository
	catalogRepo repository.CatalogRepository
	invRepo     repository.InventoryRepository
	orderRepo   repository.OrderRepository
	locker      lock.Locker
	publisher   events.Publisher
	cartTTL     time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewTransferService creates the service that moves fitting carts into
// virtual carts and virtual carts into orders.
func NewTransferService(
	db repository.DB,
	cartRepo repository.CartRepository,
	fittingRepo repository.FittingRepository,
	catalogRepo repository.CatalogRepository,
	invRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	locker lock.Locker,
	publisher events.Publisher,
	cartTTL time.Duration,
	logger zerolog.Logger,
) TransferService {
	return &transferService{
		db:          db,
		cartRepo:    cartRepo,
		fittingRepo: fittingRepo,
		catalogRepo: catalogRepo,
		invRepo:     invRepo,
		orderRepo:   orderRepo,
		locker:      locker,
		publisher:   publisher,
		cartTTL:     cartTTL,
		now:         time.Now,
		logger:      logger.With().Str("service", "transfer").Logger(),
	}
}

// Transfer merges every non-cancelled request of a fitting cart into a
// virtual cart as a quantity 1 line at the current price, skipping variants
// the target already holds. Repeating a transfer adds nothing.
func (s *transferService) Transfer(ctx context.Context, actor model.Actor, fittingCartID uuid.UUID, target *uuid.UUID) (result *model.TransferResult, err error) {
	ctx, span := tracer.Start(ctx, "transfer.fitting_to_virtual",
		trace.WithAttributes(attribute.String("fitting_cart.id", fittingCartID.String())))
	defer func() { endSpan(span, err) }()

	unlock, err := s.locker.TryLock(ctx, "fitting-transfer:"+fittingCartID.String(), transferLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, model.ErrTransferInProgress
		}
		return nil, fmt.Errorf("failed to transfer fitting cart: %w", err)
	}
	defer func() {
		if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			s.logger.Warn().Err(unlockErr).Str("fitting_cart_id", fittingCartID.String()).Msg("failed to release transfer lock")
		}
	}()

	fitting, err := s.fittingRepo.GetByID(ctx, s.db, fittingCartID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer fitting cart: %w", err)
	}
	if fitting == nil {
		return nil, model.ErrFittingNotFound
	}
	now := s.now()
	if err := checkCart(fitting, fitting.Owner, actor, now); err != nil {
		return nil, err
	}

	owner := fitting.Owner
	if owner.IsGuest() {
		owner = model.OwnerOf(actor)
	}

	variantIDs := make([]string, 0, len(fitting.Requests))
	for _, req := range fitting.Requests {
		if req.Status != model.FittingCancelled {
			variantIDs = append(variantIDs, req.VariantID)
		}
	}

	var (
		cart  *model.VirtualCart
		added int
	)
	err = withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		var err error
		if target != nil {
			cart, err = s.lockTarget(ctx, tx, actor, *target, fitting.StoreID, now)
		} else {
			cart, err = s.findOrCreateTarget(ctx, tx, owner, fitting.StoreID, now)
		}
		if err != nil {
			return err
		}

		prices, err := s.catalogRepo.GetVariants(ctx, tx, variantIDs)
		if err != nil {
			return err
		}

		for _, variantID := range variantIDs {
			variant, ok := prices[variantID]
			if !ok {
				return model.ErrVariantNotFound
			}
			inserted, err := s.cartRepo.AddItemIfAbsent(ctx, tx, &model.CartItem{
				ID:          uuid.New(),
				CartID:      cart.ID,
				VariantID:   variantID,
				Quantity:    1,
				PriceAtTime: variant.Price,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			if inserted {
				added++
			}
		}
		return nil
	})
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("fitting_cart_id", fittingCartID.String()).Msg("failed to transfer fitting cart")
		return nil, fmt.Errorf("failed to transfer fitting cart: %w", err)
	}

	result = &model.TransferResult{
		VirtualCartID: cart.ID,
		ExpiresAt:     cart.ExpiresAt,
		ItemsAdded:    added,
	}

	span.SetAttributes(
		attribute.String("virtual_cart.id", cart.ID.String()),
		attribute.Int("items_added", added),
	)
	metrics.RecordFittingTransfer(added)
	s.logger.Info().
		Str("fitting_cart_id", fittingCartID.String()).
		Str("cart_id", cart.ID.String()).
		Int("items_added", added).
		Msg("fitting cart transferred")

	s.publish(ctx, events.New(events.FittingTransferred, fittingCartID.String(), fitting.StoreID, result))

	return result, nil
}

// lockTarget loads an explicitly chosen virtual cart and holds its row lock.
func (s *transferService) lockTarget(ctx context.Context, tx pgx.Tx, actor model.Actor, id uuid.UUID, storeID string, now time.Time) (*model.VirtualCart, error) {
	cart, err := s.cartRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}
	if err := checkCart(cart, cart.Owner, actor, now); err != nil {
		return nil, err
	}
	if cart.StoreID != storeID {
		return nil, model.ErrStoreMismatch
	}
	return cart, nil
}

// findOrCreateTarget applies the virtual cart reuse rule and then holds the
// row lock of the chosen cart.
func (s *transferService) findOrCreateTarget(ctx context.Context, tx pgx.Tx, owner model.Owner, storeID string, now time.Time) (*model.VirtualCart, error) {
	cart, created, err := findOrCreateCart(ctx, tx, s.cartRepo, owner, storeID, now, s.cartTTL)
	if err != nil || created {
		return cart, err
	}

	locked, err := s.cartRepo.GetForUpdate(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, model.ErrCartNotFound
	}
	return locked, nil
}

// stockOrder returns the lines sorted by variant so concurrent checkouts
// lock shared inventory rows in the same order.
func stockOrder(items []model.CartItem) []model.CartItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b model.CartItem) int {
		return strings.Compare(a.VariantID, b.VariantID)
	})
	return sorted
}

// Checkout converts a virtual cart into a pending order. The order, its
// lines, the stock decrements and the cart deletion commit together or not
// at all. An authenticated caller checking out a guest cart takes ownership
// of it as part of the checkout.
func (s *transferService) Checkout(ctx context.Context, actor model.Actor, cartID uuid.UUID) (resp *model.OrderResponse, err error) {
	ctx, span := tracer.Start(ctx, "checkout",
		trace.WithAttributes(attribute.String("cart.id", cartID.String())))
	defer func() { endSpan(span, err) }()

	defer func() {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			metrics.RecordCheckoutFailure(domainErr.Code)
		} else if err != nil {
			metrics.RecordCheckoutFailure(model.ErrCodeInternalError)
		}
	}()

	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	var (
		order   *model.Order
		details []model.OrderDetail
	)
	err = withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetForUpdate(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return model.ErrCartNotFound
		}
		now := s.now()
		if err := checkCart(cart, cart.Owner, actor, now); err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return model.ErrEmptyCart
		}

		order = &model.Order{
			ID:          uuid.New(),
			UserID:      actor.UserID,
			StoreID:     cart.StoreID,
			Status:      model.OrderPending,
			TotalAmount: cart.Total(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		details = make([]model.OrderDetail, len(cart.Items))
		for i, item := range cart.Items {
			details[i] = model.OrderDetail{
				ID:              uuid.New(),
				OrderID:         order.ID,
				VariantID:       item.VariantID,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.PriceAtTime,
			}
		}
		if err := s.orderRepo.CreateOrderDetails(ctx, tx, details); err != nil {
			return err
		}

		for _, item := range stockOrder(cart.Items) {
			if _, err := s.invRepo.ApplyDeltaAt(ctx, tx, cart.StoreID, item.VariantID, -item.Quantity); err != nil {
				s.logger.Warn().
					Err(err).
					Str("cart_id", cartID.String()).
					Str("store_id", cart.StoreID).
					Str("variant_id", item.VariantID).
					Int("quantity", item.Quantity).
					Msg("stock decrement failed, rolling back checkout")
				return err
			}
		}

		_, err = s.cartRepo.Delete(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("checkout failed")
		return nil, fmt.Errorf("failed to checkout cart: %w", err)
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()))
	metrics.RecordOrderCreated(order.StoreID)
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("cart_id", cartID.String()).
		Str("user_id", actor.UserID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("lines", len(details)).
		Msg("order created successfully")

	resp = &model.OrderResponse{Order: order, Details: details}
	s.publish(ctx, events.New(events.OrderCreated, order.ID.String(), order.StoreID, resp))

	return resp, nil
}

func (s *transferService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", string(event.Type)).Str("key", event.Key).Msg("failed to publish event")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
