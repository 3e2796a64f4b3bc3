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

// fittingRepository implements the FittingRepository interface using PostgreSQL.
type fittingRepository struct {
	logger zerolog.Logger
}

// NewFittingRepository creates a new PostgreSQL-backed fitting cart repository.
func NewFittingRepository(logger zerolog.Logger) FittingRepository {
	return &fittingRepository{
		logger: logger.With().Str("repository", "fitting").Logger(),
	}
}

const fittingRequestColumns = `id, fitting_cart_id, variant_id, fitting_room_id, status, created_at, updated_at`

func scanFittingRequest(row pgx.Row) (*model.FittingRoomRequest, error) {
	var req model.FittingRoomRequest
	err := row.Scan(
		&req.ID,
		&req.FittingCartID,
		&req.VariantID,
		&req.FittingRoomID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new fitting cart.
func (r *fittingRepository) Create(ctx context.Context, q Querier, cart *model.FittingCart) error {
	query := `
		INSERT INTO fitting_carts (id, user_id, store_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, cart.ID, cart.Owner.Nullable(), cart.StoreID, cart.CreatedAt, cart.ExpiresAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("fitting_cart_id", cart.ID.String()).
			Str("store_id", cart.StoreID).
			Msg("failed to create fitting cart")
		return fmt.Errorf("failed to create fitting cart: %w", err)
	}

	r.logger.Debug().
		Str("fitting_cart_id", cart.ID.String()).
		Str("store_id", cart.StoreID).
		Msg("fitting cart created successfully")

	return nil
}

// GetByID retrieves a fitting cart with its requests.
func (r *fittingRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.FittingCart, error) {
	cart, err := r.getCart(ctx, q, id)
	if err != nil || cart == nil {
		return cart, err
	}

	query := `
		SELECT ` + fittingRequestColumns + `
		FROM fitting_room_requests
		WHERE fitting_cart_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("fitting_cart_id", id.String()).Msg("failed to query fitting requests")
		return nil, fmt.Errorf("failed to query fitting requests: %w", err)
	}
	defer rows.Close()

	cart.Requests = []model.FittingRoomRequest{}
	for rows.Next() {
		req, err := scanFittingRequest(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan fitting request row")
			return nil, fmt.Errorf("failed to scan fitting request: %w", err)
		}
		cart.Requests = append(cart.Requests, *req)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating fitting request rows")
		return nil, fmt.Errorf("error iterating fitting requests: %w", err)
	}

	return cart, nil
}

func (r *fittingRepository) getCart(ctx context.Context, q Querier, id uuid.UUID) (*model.FittingCart, error) {
	query := `
		SELECT id, user_id, store_id, created_at, expires_at
		FROM fitting_carts
		WHERE id = $1
	`

	var (
		cart   model.FittingCart
		userID *string
	)
	err := q.QueryRow(ctx, query, id).Scan(&cart.ID, &userID, &cart.StoreID, &cart.CreatedAt, &cart.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("fitting_cart_id", id.String()).Msg("fitting cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("fitting_cart_id", id.String()).Msg("failed to query fitting cart")
		return nil, fmt.Errorf("failed to query fitting cart: %w", err)
	}
	cart.Owner = model.OwnerFromNullable(userID)

	return &cart, nil
}

// AddRequest inserts a room request.
func (r *fittingRepository) AddRequest(ctx context.Context, q Querier, req *model.FittingRoomRequest) error {
	query := `
		INSERT INTO fitting_room_requests (id, fitting_cart_id, variant_id, fitting_room_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		req.ID, req.FittingCartID, req.VariantID, req.FittingRoomID, string(req.Status), req.CreatedAt, req.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("fitting_cart_id", req.FittingCartID.String()).
			Str("variant_id", req.VariantID).
			Msg("failed to add fitting request")
		return fmt.Errorf("failed to add fitting request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request and its cart.
func (r *fittingRepository) GetRequest(ctx context.Context, q Querier, id uuid.UUID) (*model.FittingRoomRequest, *model.FittingCart, error) {
	query := `SELECT ` + fittingRequestColumns + ` FROM fitting_room_requests WHERE id = $1`

	req, err := scanFittingRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("request_id", id.String()).Msg("failed to query fitting request")
		return nil, nil, fmt.Errorf("failed to query fitting request: %w", err)
	}

	cart, err := r.getCart(ctx, q, req.FittingCartID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, nil
	}

	return req, cart, nil
}

// AssignRoom sets or overwrites the fitting room of a request.
func (r *fittingRepository) AssignRoom(ctx context.Context, q Querier, id uuid.UUID, roomID string) (*model.FittingRoomRequest, error) {
	query := `
		UPDATE fitting_room_requests
		SET fitting_room_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + fittingRequestColumns

	req, err := scanFittingRequest(q.QueryRow(ctx, query, id, roomID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("request_id", id.String()).Msg("failed to assign fitting room")
		return nil, fmt.Errorf("failed to assign fitting room: %w", err)
	}

	r.logger.Debug().
		Str("request_id", id.String()).
		Str("fitting_room_id", roomID).
		Msg("fitting room assigned")

	return req, nil
}

// TransitionStatus moves a request from one status to another in a single
// conditional update.
func (r *fittingRepository) TransitionStatus(ctx context.Context, q Querier, id uuid.UUID, from, to model.FittingStatus) (*model.FittingRoomRequest, error) {
	query := `
		UPDATE fitting_room_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + fittingRequestColumns

	req, err := scanFittingRequest(q.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("request_id", id.String()).Msg("failed to transition fitting request")
		return nil, fmt.Errorf("failed to transition fitting request: %w", err)
	}

	r.logger.Debug().
		Str("request_id", id.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("fitting request transitioned")

	return req, nil
}

// DeleteRequest hard deletes a request.
func (r *fittingRepository) DeleteRequest(ctx context.Context, q Querier, id uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM fitting_room_requests WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("request_id", id.String()).Msg("failed to delete fitting request")
		return false, fmt.Errorf("failed to delete fitting request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountRoomUsage counts other pending requests of live carts in storeID
// that use roomID.
func (r *fittingRepository) CountRoomUsage(ctx context.Context, q Querier, storeID, roomID string, exclude uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM fitting_room_requests fr
		JOIN fitting_carts fc ON fc.id = fr.fitting_cart_id
		WHERE fc.store_id = $1
		  AND fr.fitting_room_id = $2
		  AND fr.status = 'pending'
		  AND fr.id <> $3
		  AND fc.expires_at > NOW()
	`

	var n int
	if err := q.QueryRow(ctx, query, storeID, roomID, exclude).Scan(&n); err != nil {
		r.logger.Error().
			Err(err).
			Str("store_id", storeID).
			Str("fitting_room_id", roomID).
			Msg("failed to count room usage")
		return 0, fmt.Errorf("failed to count room usage: %w", err)
	}
	return n, nil
}

// ListPendingByStore lists pending requests of live carts in a store,
// oldest first. A
// request is flagged when another pending request in the store shares its room.
func (r *fittingRepository) ListPendingByStore(ctx context.Context, q Querier, storeID string) ([]model.StoreFittingRequest, error) {
	query := `
		SELECT fr.id, fr.fitting_cart_id, fr.variant_id, fr.fitting_room_id, fr.status,
		       fr.created_at, fr.updated_at, fc.store_id, fc.user_id,
		       fr.fitting_room_id IS NOT NULL
		           AND COUNT(*) OVER (PARTITION BY fr.fitting_room_id) > 1 AS duplicate_room
		FROM fitting_room_requests fr
		JOIN fitting_carts fc ON fc.id = fr.fitting_cart_id
		WHERE fc.store_id = $1 AND fr.status = 'pending' AND fc.expires_at > NOW()
		ORDER BY fr.created_at, fr.id
	`

	rows, err := q.Query(ctx, query, storeID)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID).Msg("failed to query pending fitting requests")
		return nil, fmt.Errorf("failed to query pending fitting requests: %w", err)
	}
	defer rows.Close()

	requests := []model.StoreFittingRequest{}
	for rows.Next() {
		var (
			sr     model.StoreFittingRequest
			userID *string
		)
		err := rows.Scan(
			&sr.ID,
			&sr.FittingCartID,
			&sr.VariantID,
			&sr.FittingRoomID,
			&sr.Status,
			&sr.CreatedAt,
			&sr.UpdatedAt,
			&sr.StoreID,
			&userID,
			&sr.DuplicateRoom,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan pending fitting request row")
			return nil, fmt.Errorf("failed to scan pending fitting request: %w", err)
		}
		sr.Owner = model.OwnerFromNullable(userID)
		requests = append(requests, sr)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating pending fitting request rows")
		return nil, fmt.Errorf("error iterating pending fitting requests: %w", err)
	}

	return requests, nil
}

// DeleteExpired removes fitting carts whose expiry is at or before now.
func (r *fittingRepository) DeleteExpired(ctx context.Context, q Querier, now time.Time) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM fitting_carts WHERE expires_at <= $1`, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete expired fitting carts")
		return 0, fmt.Errorf("failed to delete expired fitting carts: %w", err)
	}
	return tag.RowsAffected(), nil
}
