package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// ListProducts retrieves products with pagination support.
func (r *catalogRepository) ListProducts(ctx context.Context, q Querier, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, name, price, created_at
		FROM products
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := q.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0, limit)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	r.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

const pricedVariantColumns = `v.id, v.product_id, v.size, v.color, p.name, p.price`

// GetVariant retrieves a variant with its product's live price.
func (r *catalogRepository) GetVariant(ctx context.Context, q Querier, id string) (*model.PricedVariant, error) {
	query := `
		SELECT ` + pricedVariantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`

	var v model.PricedVariant
	err := q.QueryRow(ctx, query, id).Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.ProductName, &v.Price)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("variant_id", id).Msg("variant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return &v, nil
}

// GetVariants retrieves several priced variants keyed by variant ID. Unknown
// IDs are absent from the result.
func (r *catalogRepository) GetVariants(ctx context.Context, q Querier, ids []string) (map[string]model.PricedVariant, error) {
	result := make(map[string]model.PricedVariant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + pricedVariantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.PricedVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.ProductName, &v.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		result[v.ID] = v
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return result, nil
}

// UpdateVariant applies staff edits to size and colour.
func (r *catalogRepository) UpdateVariant(ctx context.Context, q Querier, id string, upd model.VariantUpdate) (*model.ProductVariant, error) {
	query := `
		UPDATE product_variants
		SET size = COALESCE($2, size),
		    color = COALESCE($3, color)
		WHERE id = $1
		RETURNING id, product_id, size, color
	`

	var v model.ProductVariant
	err := q.QueryRow(ctx, query, id, upd.Size, upd.Color).Scan(&v.ID, &v.ProductID, &v.Size, &v.Color)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id).Msg("failed to update variant")
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}

	r.logger.Debug().Str("variant_id", id).Msg("variant updated")

	return &v, nil
}

// UpdateProductPrice sets a product's live price. Existing cart lines keep
// their snapshot.
func (r *catalogRepository) UpdateProductPrice(ctx context.Context, q Querier, id string, price decimal.Decimal) (*model.Product, error) {
	query := `
		UPDATE products
		SET price = $2
		WHERE id = $1
		RETURNING id, name, price, created_at
	`

	var p model.Product
	err := q.QueryRow(ctx, query, id, price).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product price")
		return nil, fmt.Errorf("failed to update product price: %w", err)
	}

	r.logger.Debug().
		Str("product_id", id).
		Str("price", p.Price.StringFixed(2)).
		Msg("product price updated")

	return &p, nil
}

// StoreExists reports whether a store with the given ID is seeded.
func (r *catalogRepository) StoreExists(ctx context.Context, q Querier, id string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stores WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", id).Msg("failed to check store")
		return false, fmt.Errorf("failed to check store: %w", err)
	}
	return exists, nil
}

// UpsertStore inserts or updates a store.
func (r *catalogRepository) UpsertStore(ctx context.Context, q Querier, store model.Store) error {
	query := `
		INSERT INTO stores (id, name, location)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location
	`

	if _, err := q.Exec(ctx, query, store.ID, store.Name, store.Location); err != nil {
		r.logger.Error().Err(err).Str("store_id", store.ID).Msg("failed to upsert store")
		return fmt.Errorf("failed to upsert store %s: %w", store.ID, err)
	}
	return nil
}

// UpsertProduct inserts or updates a product.
func (r *catalogRepository) UpsertProduct(ctx context.Context, q Querier, product model.Product) error {
	query := `
		INSERT INTO products (id, name, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price
	`

	if _, err := q.Exec(ctx, query, product.ID, product.Name, product.Price); err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to upsert product")
		return fmt.Errorf("failed to upsert product %s: %w", product.ID, err)
	}
	return nil
}

// UpsertVariant inserts or updates a variant.
func (r *catalogRepository) UpsertVariant(ctx context.Context, q Querier, variant model.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, product_id, size, color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET product_id = EXCLUDED.product_id, size = EXCLUDED.size, color = EXCLUDED.color
	`

	if _, err := q.Exec(ctx, query, variant.ID, variant.ProductID, variant.Size, variant.Color); err != nil {
		r.logger.Error().Err(err).Str("variant_id", variant.ID).Msg("failed to upsert variant")
		return fmt.Errorf("failed to upsert variant %s: %w", variant.ID, err)
	}
	return nil
}
