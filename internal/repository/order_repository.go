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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, store_id, order_status, total_amount, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.StoreID,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts a new order.
func (r *orderRepository) CreateOrder(ctx context.Context, q Querier, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, store_id, order_status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.StoreID,
		string(order.Status),
		order.TotalAmount,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderDetails inserts multiple order lines in one batch.
func (r *orderRepository) CreateOrderDetails(ctx context.Context, q Querier, details []model.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_details (id, order_id, variant_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query, d.ID, d.OrderID, d.VariantID, d.Quantity, d.PriceAtPurchase)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(details); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", details[i].OrderID.String()).
				Str("variant_id", details[i].VariantID).
				Msg("failed to create order detail")
			return fmt.Errorf("failed to create order detail: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(details)).
		Msg("order details created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	detailsQuery := `
		SELECT id, order_id, variant_id, quantity, price_at_purchase
		FROM order_details
		WHERE order_id = $1
		ORDER BY variant_id, id
	`

	rows, err := q.Query(ctx, detailsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order details")
		return nil, nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	details := []model.OrderDetail{}
	for rows.Next() {
		var d model.OrderDetail
		err := rows.Scan(&d.ID, &d.OrderID, &d.VariantID, &d.Quantity, &d.PriceAtPurchase)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order detail row")
			return nil, nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order detail rows")
		return nil, nil, fmt.Errorf("error iterating order details: %w", err)
	}

	return order, details, nil
}

// TransitionStatus moves an order from one status to another in a single
// conditional update.
func (r *orderRepository) TransitionStatus(ctx context.Context, q Querier, id uuid.UUID, from, to model.OrderStatus, at time.Time) (*model.Order, error) {
	query := `
		UPDATE orders
		SET order_status = $3, updated_at = $4
		WHERE id = $1 AND order_status = $2
		RETURNING ` + orderColumns

	order, err := scanOrder(q.QueryRow(ctx, query, id, string(from), string(to), at))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to transition order")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order transitioned")

	return order, nil
}
