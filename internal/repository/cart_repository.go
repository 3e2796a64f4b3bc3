package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed virtual cart repository.
func NewCartRepository(logger zerolog.Logger) CartRepository {
	return &cartRepository{
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartColumns = `id, user_id, store_id, created_at, expires_at`

func scanCart(row pgx.Row) (*model.VirtualCart, error) {
	var (
		cart   model.VirtualCart
		userID *string
	)
	if err := row.Scan(&cart.ID, &userID, &cart.StoreID, &cart.CreatedAt, &cart.ExpiresAt); err != nil {
		return nil, err
	}
	cart.Owner = model.OwnerFromNullable(userID)
	return &cart, nil
}

// Create inserts a new cart.
func (r *cartRepository) Create(ctx context.Context, q Querier, cart *model.VirtualCart) error {
	query := `
		INSERT INTO virtual_carts (id, user_id, store_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, cart.ID, cart.Owner.Nullable(), cart.StoreID, cart.CreatedAt, cart.ExpiresAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Str("store_id", cart.StoreID).
			Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Str("store_id", cart.StoreID).
		Bool("guest", cart.Owner.IsGuest()).
		Msg("cart created successfully")

	return nil
}

// GetByID retrieves a cart with its items.
func (r *cartRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.VirtualCart, error) {
	return r.get(ctx, q, `SELECT `+cartColumns+` FROM virtual_carts WHERE id = $1`, id)
}

// GetForUpdate is GetByID holding a row lock on the cart until the transaction ends.
func (r *cartRepository) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*model.VirtualCart, error) {
	return r.get(ctx, q, `SELECT `+cartColumns+` FROM virtual_carts WHERE id = $1 FOR UPDATE`, id)
}

func (r *cartRepository) get(ctx context.Context, q Querier, query string, id uuid.UUID) (*model.VirtualCart, error) {
	cart, err := scanCart(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("cart_id", id.String()).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	if cart.Items, err = r.listItems(ctx, q, cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) listItems(ctx context.Context, q Querier, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, variant_id, quantity, price_at_time, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.VariantID, &item.Quantity, &item.PriceAtTime, &item.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// LockOwnerScope takes a transaction scoped advisory lock on (user, store).
func (r *cartRepository) LockOwnerScope(ctx context.Context, q Querier, userID, storeID string) error {
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`, userID, storeID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("store_id", storeID).
			Msg("failed to lock cart owner scope")
		return fmt.Errorf("failed to lock cart owner scope: %w", err)
	}
	return nil
}

// FindActiveByOwner retrieves the newest still-valid cart of userID in storeID.
func (r *cartRepository) FindActiveByOwner(ctx context.Context, q Querier, userID, storeID string, now time.Time) (*model.VirtualCart, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM virtual_carts
		WHERE user_id = $1 AND store_id = $2 AND expires_at > $3
		ORDER BY expires_at DESC, created_at DESC
		LIMIT 1
	`

	cart, err := scanCart(q.QueryRow(ctx, query, userID, storeID, now))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("store_id", storeID).
			Msg("failed to find active cart")
		return nil, fmt.Errorf("failed to find active cart: %w", err)
	}

	if cart.Items, err = r.listItems(ctx, q, cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

// ExtendExpiry moves the expiry of a cart.
func (r *cartRepository) ExtendExpiry(ctx context.Context, q Querier, id uuid.UUID, expiresAt time.Time) error {
	if _, err := q.Exec(ctx, `UPDATE virtual_carts SET expires_at = $2 WHERE id = $1`, id, expiresAt); err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to extend cart expiry")
		return fmt.Errorf("failed to extend cart expiry: %w", err)
	}
	return nil
}

// SetOwner attaches userID to a cart.
func (r *cartRepository) SetOwner(ctx context.Context, q Querier, id uuid.UUID, userID string) error {
	if _, err := q.Exec(ctx, `UPDATE virtual_carts SET user_id = $2 WHERE id = $1`, id, userID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to set cart owner")
		return fmt.Errorf("failed to set cart owner: %w", err)
	}
	return nil
}

// Delete removes a cart and, by cascade, its items.
func (r *cartRepository) Delete(ctx context.Context, q Querier, id uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM virtual_carts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to delete cart")
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes every cart whose expiry is at or before now.
func (r *cartRepository) DeleteExpired(ctx context.Context, q Querier, now time.Time) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM virtual_carts WHERE expires_at <= $1`, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete expired carts")
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddItem inserts a cart line.
func (r *cartRepository) AddItem(ctx context.Context, q Querier, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity, price_at_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query, item.ID, item.CartID, item.VariantID, item.Quantity, item.PriceAtTime, item.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", item.CartID.String()).
			Str("variant_id", item.VariantID).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// AddItemIfAbsent inserts a cart line unless the cart already holds the variant.
func (r *cartRepository) AddItemIfAbsent(ctx context.Context, q Querier, item *model.CartItem) (bool, error) {
	query := `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity, price_at_time, created_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM cart_items WHERE cart_id = $2 AND variant_id = $3
		)
	`

	tag, err := q.Exec(ctx, query, item.ID, item.CartID, item.VariantID, item.Quantity, item.PriceAtTime, item.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", item.CartID.String()).
			Str("variant_id", item.VariantID).
			Msg("failed to merge cart item")
		return false, fmt.Errorf("failed to merge cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateItemQuantity sets a line quantity.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, q Querier, cartID, itemID uuid.UUID, quantity int) (bool, error) {
	tag, err := q.Exec(ctx, `UPDATE cart_items SET quantity = $3 WHERE id = $2 AND cart_id = $1`, cartID, itemID, quantity)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return false, model.ErrInvalidQuantity
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteItem removes a line.
func (r *cartRepository) DeleteItem(ctx context.Context, q Querier, cartID, itemID uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id = $2 AND cart_id = $1`, cartID, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to delete cart item")
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountItems returns the number of lines in a cart.
func (r *cartRepository) CountItems(ctx context.Context, q Querier, cartID uuid.UUID) (int, error) {
	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&n); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return n, nil
}
