package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// inventoryRepository implements the InventoryRepository interface using PostgreSQL.
type inventoryRepository struct {
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

const inventoryColumns = `id, store_id, product_id, variant_id, quantity, status, last_updated`

func scanInventory(row pgx.Row) (*model.Inventory, error) {
	var inv model.Inventory
	err := row.Scan(
		&inv.ID,
		&inv.StoreID,
		&inv.ProductID,
		&inv.VariantID,
		&inv.Quantity,
		&inv.Status,
		&inv.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByID retrieves an inventory row.
func (r *inventoryRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1`

	inv, err := scanInventory(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("inventory_id", id.String()).Msg("failed to query inventory")
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	return inv, nil
}

// GetByStoreVariant retrieves the row for a store and variant.
func (r *inventoryRepository) GetByStoreVariant(ctx context.Context, q Querier, storeID, variantID string) (*model.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE store_id = $1 AND variant_id = $2`

	inv, err := scanInventory(q.QueryRow(ctx, query, storeID, variantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("store_id", storeID).
			Str("variant_id", variantID).
			Msg("failed to query inventory")
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	return inv, nil
}

// ApplyDelta adds delta to the quantity of row id. The floor is enforced by
// the update predicate so two concurrent decrements can never both succeed
// past zero.
func (r *inventoryRepository) ApplyDelta(ctx context.Context, q Querier, id uuid.UUID, delta int) (*model.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity + $2, last_updated = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING ` + inventoryColumns

	exists := `SELECT EXISTS(SELECT 1 FROM inventory WHERE id = $1)`

	return r.applyDelta(delta,
		func() pgx.Row { return q.QueryRow(ctx, query, id, delta) },
		func() pgx.Row { return q.QueryRow(ctx, exists, id) },
		r.logger.With().Str("inventory_id", id.String()).Logger(),
	)
}

// ApplyDeltaAt is ApplyDelta addressed by store and variant.
func (r *inventoryRepository) ApplyDeltaAt(ctx context.Context, q Querier, storeID, variantID string, delta int) (*model.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity + $3, last_updated = NOW()
		WHERE store_id = $1 AND variant_id = $2 AND quantity + $3 >= 0
		RETURNING ` + inventoryColumns

	exists := `SELECT EXISTS(SELECT 1 FROM inventory WHERE store_id = $1 AND variant_id = $2)`

	return r.applyDelta(delta,
		func() pgx.Row { return q.QueryRow(ctx, query, storeID, variantID, delta) },
		func() pgx.Row { return q.QueryRow(ctx, exists, storeID, variantID) },
		r.logger.With().Str("store_id", storeID).Str("variant_id", variantID).Logger(),
	)
}

func (r *inventoryRepository) applyDelta(
	delta int,
	update func() pgx.Row,
	exists func() pgx.Row,
	logger zerolog.Logger,
) (*model.Inventory, error) {
	inv, err := scanInventory(update())
	if err == nil {
		logger.Debug().
			Int("delta", delta).
			Int("quantity", inv.Quantity).
			Msg("inventory adjusted")
		return inv, nil
	}

	if isPgError(err, pgCheckViolation) {
		return nil, model.ErrInsufficientStock
	}
	if !isNoRows(err) {
		logger.Error().Err(err).Int("delta", delta).Msg("failed to adjust inventory")
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	var found bool
	if err := exists().Scan(&found); err != nil {
		logger.Error().Err(err).Msg("failed to check inventory")
		return nil, fmt.Errorf("failed to check inventory: %w", err)
	}
	if !found {
		return nil, model.ErrInventoryNotFound
	}

	logger.Debug().Int("delta", delta).Msg("inventory adjustment rejected by floor")
	return nil, model.ErrInsufficientStock
}

// Update sets quantity and/or status.
func (r *inventoryRepository) Update(ctx context.Context, q Querier, id uuid.UUID, quantity *int, status *model.InventoryStatus) (*model.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = COALESCE($2, quantity),
		    status = COALESCE($3, status),
		    last_updated = NOW()
		WHERE id = $1
		RETURNING ` + inventoryColumns

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	inv, err := scanInventory(q.QueryRow(ctx, query, id, quantity, statusArg))
	if err != nil {
		if isNoRows(err) {
			return nil, model.ErrInventoryNotFound
		}
		if isPgError(err, pgCheckViolation) {
			return nil, model.ErrNegativeQuantity
		}
		r.logger.Error().Err(err).Str("inventory_id", id.String()).Msg("failed to update inventory")
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	r.logger.Debug().
		Str("inventory_id", id.String()).
		Int("quantity", inv.Quantity).
		Str("status", string(inv.Status)).
		Msg("inventory updated")

	return inv, nil
}

// Upsert inserts or replaces the row for (store, product, variant).
func (r *inventoryRepository) Upsert(ctx context.Context, q Querier, inv model.Inventory) error {
	status := inv.Status
	if status == "" {
		status = model.InventoryAvailable
	}

	query := `
		INSERT INTO inventory (store_id, product_id, variant_id, quantity, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, product_id, variant_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    status = EXCLUDED.status,
		    last_updated = NOW()
	`

	_, err := q.Exec(ctx, query, inv.StoreID, inv.ProductID, inv.VariantID, inv.Quantity, string(status))
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return model.ErrNegativeQuantity
		}
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("inventory references unknown store or variant %s/%s: %w", inv.StoreID, inv.VariantID, err)
		}
		r.logger.Error().
			Err(err).
			Str("store_id", inv.StoreID).
			Str("variant_id", inv.VariantID).
			Msg("failed to upsert inventory")
		return fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return nil
}
