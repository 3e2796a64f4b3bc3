package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// catalogService implements CatalogService.
type catalogService struct {
	db     repository.DB
	repo   repository.CatalogRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(db repository.DB, repo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		db:     db,
		repo:   repo,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// ListProducts retrieves products with pagination.
func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.ListProducts(ctx, s.db, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetVariant retrieves a variant with its product's live price.
func (s *catalogService) GetVariant(ctx context.Context, id string) (*model.PricedVariant, error) {
	v, err := s.repo.GetVariant(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	if v == nil {
		return nil, model.ErrVariantNotFound
	}
	return v, nil
}

// UpdateVariant applies staff edits to size/colour.
func (s *catalogService) UpdateVariant(ctx context.Context, actor model.Actor, id string, upd model.VariantUpdate) (*model.ProductVariant, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if upd.Size == nil && upd.Color == nil {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "size or color is required")
	}

	v, err := s.repo.UpdateVariant(ctx, s.db, id, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}
	if v == nil {
		return nil, model.ErrVariantNotFound
	}

	s.logger.Info().
		Str("variant_id", id).
		Str("user_id", actor.UserID).
		Msg("variant updated")

	return v, nil
}

// UpdateProductPrice sets a product's live price. Cart and order lines keep
// the price they were created with.
func (s *catalogService) UpdateProductPrice(ctx context.Context, actor model.Actor, id string, price decimal.Decimal) (*model.Product, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "Price cannot be negative")
	}

	p, err := s.repo.UpdateProductPrice(ctx, s.db, id, price)
	if err != nil {
		return nil, fmt.Errorf("failed to update product price: %w", err)
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().
		Str("product_id", id).
		Str("price", p.Price.StringFixed(2)).
		Str("user_id", actor.UserID).
		Msg("product price updated")

	return p, nil
}
