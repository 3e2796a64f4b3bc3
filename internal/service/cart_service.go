package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	db          repository.DB
	cartRepo    repository.CartRepository
	catalogRepo repository.CatalogRepository
	publisher   events.Publisher
	ttl         time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCartService creates a new virtual cart service. ttl is the lifetime of
// a cart from creation or reuse.
func NewCartService(
	db repository.DB,
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	publisher events.Publisher,
	ttl time.Duration,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		publisher:   publisher,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// CreateOrReuse returns the caller's active cart in storeID or creates one.
func (s *cartService) CreateOrReuse(ctx context.Context, actor model.Actor, storeID string) (*model.CartResponse, error) {
	if storeID == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "storeId is required")
	}

	exists, err := s.catalogRepo.StoreExists(ctx, s.db, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if !exists {
		return nil, model.ErrStoreNotFound
	}

	var cart *model.VirtualCart
	err = withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		var txErr error
		cart, _, txErr = findOrCreateCart(ctx, tx, s.cartRepo, model.OwnerOf(actor), storeID, s.now(), s.ttl)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("store_id", storeID).
		Bool("guest", cart.Owner.IsGuest()).
		Msg("cart ready")

	return model.NewCartResponse(cart), nil
}

// findOrCreateCart applies the reuse rule: a user's newest active cart in
// storeID is extended and reused; guests always get a fresh cart. The
// returned bool reports whether a cart was created. Must run inside a
// transaction so the owner scope lock serialises concurrent calls.
func findOrCreateCart(
	ctx context.Context,
	tx pgx.Tx,
	repo repository.CartRepository,
	owner model.Owner,
	storeID string,
	now time.Time,
	ttl time.Duration,
) (*model.VirtualCart, bool, error) {
	expiresAt := now.Add(ttl)

	if userID, ok := owner.UserID(); ok {
		if err := repo.LockOwnerScope(ctx, tx, userID, storeID); err != nil {
			return nil, false, err
		}

		existing, err := repo.FindActiveByOwner(ctx, tx, userID, storeID, now)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			if err := repo.ExtendExpiry(ctx, tx, existing.ID, expiresAt); err != nil {
				return nil, false, err
			}
			existing.ExpiresAt = expiresAt
			return existing, false, nil
		}
	}

	cart := &model.VirtualCart{
		ID:        uuid.New(),
		Owner:     owner,
		StoreID:   storeID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		Items:     []model.CartItem{},
	}
	if err := repo.Create(ctx, tx, cart); err != nil {
		return nil, false, err
	}
	return cart, true, nil
}

// Get retrieves a cart. An expired cart is deleted and reported as expired.
func (s *cartService) Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetByID(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	if err := checkCart(cart, cart.Owner, actor, s.now()); err != nil {
		return nil, s.expire(ctx, cartID, err)
	}

	return model.NewCartResponse(cart), nil
}

// Claim attaches the authenticated actor to a guest cart. Claiming a cart the
// actor already owns is a no-op. If the actor has another active cart in the
// same store, its lines are folded into the claimed cart so the user still
// has a single active cart there.
func (s *cartService) Claim(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	peek, err := s.cartRepo.GetByID(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim cart: %w", err)
	}
	if peek == nil {
		return nil, model.ErrCartNotFound
	}

	now := s.now()
	var (
		cart    *model.VirtualCart
		claimed bool
	)
	err = withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		if err := s.cartRepo.LockOwnerScope(ctx, tx, actor.UserID, peek.StoreID); err != nil {
			return err
		}

		var err error
		cart, err = s.cartRepo.GetForUpdate(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return model.ErrCartNotFound
		}
		if cart.ExpiredAt(now) {
			return model.ErrCartExpired
		}
		if cart.Owner.Is(actor) {
			return nil
		}
		if !cart.Owner.IsGuest() {
			return model.ErrCartAlreadyClaimed
		}

		previous, err := s.cartRepo.FindActiveByOwner(ctx, tx, actor.UserID, cart.StoreID, now)
		if err != nil {
			return err
		}
		if previous != nil {
			for _, item := range previous.Items {
				moved := item
				moved.ID = uuid.New()
				moved.CartID = cart.ID
				if _, err := s.cartRepo.AddItemIfAbsent(ctx, tx, &moved); err != nil {
					return err
				}
			}
			if _, err := s.cartRepo.Delete(ctx, tx, previous.ID); err != nil {
				return err
			}
		}

		if err := s.cartRepo.SetOwner(ctx, tx, cart.ID, actor.UserID); err != nil {
			return err
		}
		expiresAt := now.Add(s.ttl)
		if err := s.cartRepo.ExtendExpiry(ctx, tx, cart.ID, expiresAt); err != nil {
			return err
		}

		cart, err = s.cartRepo.GetByID(ctx, tx, cart.ID)
		claimed = true
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, cartID, "failed to claim cart", err)
	}

	if claimed {
		s.logger.Info().
			Str("cart_id", cartID.String()).
			Str("user_id", actor.UserID).
			Msg("guest cart claimed")

		event := events.New(events.CartClaimed, cartID.String(), cart.StoreID, map[string]string{"userId": actor.UserID})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("cart_id", cartID.String()).Msg("failed to publish claim event")
		}
	}

	return model.NewCartResponse(cart), nil
}

// AddItem appends a line priced at the variant's current price. Stock is
// not checked here; it is authoritative only at checkout.
func (s *cartService) AddItem(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.CartItemRequest) (*model.CartResponse, error) {
	if req.VariantID == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "variantId is required")
	}
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	var cart *model.VirtualCart
	err := s.mutate(ctx, actor, cartID, func(tx pgx.Tx, locked *model.VirtualCart) error {
		variant, err := s.catalogRepo.GetVariant(ctx, tx, req.VariantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return model.ErrVariantNotFound
		}

		item := &model.CartItem{
			ID:          uuid.New(),
			CartID:      locked.ID,
			VariantID:   variant.ID,
			Quantity:    req.Quantity,
			PriceAtTime: variant.Price,
			CreatedAt:   s.now(),
		}
		if err := s.cartRepo.AddItem(ctx, tx, item); err != nil {
			return err
		}

		cart, err = s.cartRepo.GetByID(ctx, tx, locked.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, cartID, "failed to add cart item", err)
	}

	s.logger.Debug().
		Str("cart_id", cartID.String()).
		Str("variant_id", req.VariantID).
		Int("quantity", req.Quantity).
		Msg("cart item added")

	return model.NewCartResponse(cart), nil
}

// UpdateItemQuantity sets a line quantity; below one removes the line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID, quantity int) (*model.CartResponse, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, actor, cartID, itemID)
	}

	var cart *model.VirtualCart
	err := s.mutate(ctx, actor, cartID, func(tx pgx.Tx, locked *model.VirtualCart) error {
		ok, err := s.cartRepo.UpdateItemQuantity(ctx, tx, locked.ID, itemID, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrCartItemNotFound
		}

		cart, err = s.cartRepo.GetByID(ctx, tx, locked.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, cartID, "failed to update cart item", err)
	}

	return model.NewCartResponse(cart), nil
}

// RemoveItem deletes a line and the cart once it is empty.
func (s *cartService) RemoveItem(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID) (*model.CartResponse, error) {
	var cart *model.VirtualCart
	err := s.mutate(ctx, actor, cartID, func(tx pgx.Tx, locked *model.VirtualCart) error {
		ok, err := s.cartRepo.DeleteItem(ctx, tx, locked.ID, itemID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrCartItemNotFound
		}

		remaining, err := s.cartRepo.CountItems(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			_, err := s.cartRepo.Delete(ctx, tx, locked.ID)
			return err
		}

		cart, err = s.cartRepo.GetByID(ctx, tx, locked.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, cartID, "failed to remove cart item", err)
	}

	if cart == nil {
		s.logger.Debug().Str("cart_id", cartID.String()).Msg("last item removed, cart deleted")
		return nil, nil
	}
	return model.NewCartResponse(cart), nil
}

// mutate locks the cart, applies the access and expiry rules and runs fn in
// the same transaction.
func (s *cartService) mutate(ctx context.Context, actor model.Actor, cartID uuid.UUID, fn func(tx pgx.Tx, cart *model.VirtualCart) error) error {
	return withTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetForUpdate(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return model.ErrCartNotFound
		}
		if err := checkCart(cart, cart.Owner, actor, s.now()); err != nil {
			return err
		}
		return fn(tx, cart)
	})
}

// fail wraps storage errors and purges the cart when err reports expiry.
func (s *cartService) fail(ctx context.Context, cartID uuid.UUID, msg string, err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return s.expire(ctx, cartID, err)
	}
	s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

// expire deletes an expired cart outside any transaction so the deletion
// survives the rollback of the request that found it. err is returned as is.
func (s *cartService) expire(ctx context.Context, cartID uuid.UUID, err error) error {
	if !errors.Is(err, model.ErrCartExpired) {
		return err
	}
	if _, delErr := s.cartRepo.Delete(ctx, s.db, cartID); delErr != nil {
		s.logger.Warn().Err(delErr).Str("cart_id", cartID.String()).Msg("failed to delete expired cart")
	} else {
		s.logger.Debug().Str("cart_id", cartID.String()).Msg("expired cart deleted")
	}
	return err
}
