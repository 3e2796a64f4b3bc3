// Package seed loads catalogue documents (stores, products, variants and
// opening stock) and applies them to the database.
package seed

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Loader fetches a seed document by name.
type Loader interface {
	Load(ctx context.Context, name string) (*Document, error)
}

// Document is the seed file layout.
type Document struct {
	Stores    []Store     `yaml:"stores"`
	Products  []Product   `yaml:"products"`
	Inventory []Inventory `yaml:"inventory"`
}

// Store is a seeded store.
type Store struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// Product is a seeded product with its variants.
type Product struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Price    decimal.Decimal `yaml:"price"`
	Variants []Variant       `yaml:"variants"`
}

// Variant is a seeded size/colour combination.
type Variant struct {
	ID    string `yaml:"id"`
	Size  string `yaml:"size"`
	Color string `yaml:"color"`
}

// Inventory is the opening stock of a variant in a store. Store "*" stocks
// the variant in every seeded store.
type Inventory struct {
	Store    string                `yaml:"store"`
	Variant  string                `yaml:"variant"`
	Quantity int                   `yaml:"quantity"`
	Status   model.InventoryStatus `yaml:"status"`
}

// AllStores expands an inventory entry to every store of the document.
const AllStores = "*"

// Summary counts what Apply wrote.
type Summary struct {
	Stores    int
	Products  int
	Variants  int
	Inventory int
}

// Parse decodes a YAML document from r. Names ending in .gz are
// decompressed first.
func Parse(r io.Reader, name string) (*Document, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed document %s: %w", name, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed document %s: %w", name, err)
	}
	return &doc, nil
}

// Validate checks references and values before anything touches the database.
func (d *Document) Validate() error {
	stores := make(map[string]bool, len(d.Stores))
	for _, s := range d.Stores {
		if s.ID == "" || s.ID == AllStores {
			return fmt.Errorf("store id %q is not allowed", s.ID)
		}
		if stores[s.ID] {
			return fmt.Errorf("duplicate store %s", s.ID)
		}
		stores[s.ID] = true
	}

	variants := make(map[string]bool)
	products := make(map[string]bool, len(d.Products))
	for _, p := range d.Products {
		if p.ID == "" {
			return fmt.Errorf("product id is required")
		}
		if products[p.ID] {
			return fmt.Errorf("duplicate product %s", p.ID)
		}
		products[p.ID] = true
		if p.Price.IsNegative() {
			return fmt.Errorf("product %s has a negative price", p.ID)
		}
		for _, v := range p.Variants {
			if v.ID == "" {
				return fmt.Errorf("product %s has a variant without id", p.ID)
			}
			if variants[v.ID] {
				return fmt.Errorf("duplicate variant %s", v.ID)
			}
			variants[v.ID] = true
		}
	}

	for _, inv := range d.Inventory {
		if inv.Store != AllStores && !stores[inv.Store] {
			return fmt.Errorf("inventory references unknown store %q", inv.Store)
		}
		if !variants[inv.Variant] {
			return fmt.Errorf("inventory references unknown variant %q", inv.Variant)
		}
		if inv.Quantity < 0 {
			return fmt.Errorf("inventory for %s/%s has a negative quantity", inv.Store, inv.Variant)
		}
		if inv.Status != "" && !inv.Status.Valid() {
			return fmt.Errorf("inventory for %s/%s has unknown status %q", inv.Store, inv.Variant, inv.Status)
		}
	}

	return nil
}

// inventoryRows expands the document's inventory entries into ledger rows.
// A later entry for the same store and variant overrides an earlier one.
func (d *Document) inventoryRows() []model.Inventory {
	productOf := make(map[string]string)
	for _, p := range d.Products {
		for _, v := range p.Variants {
			productOf[v.ID] = p.ID
		}
	}

	type key struct{ store, variant string }
	index := make(map[key]int)
	var rows []model.Inventory

	add := func(storeID string, inv Inventory) {
		row := model.Inventory{
			StoreID:   storeID,
			ProductID: productOf[inv.Variant],
			VariantID: inv.Variant,
			Quantity:  inv.Quantity,
			Status:    inv.Status,
		}
		k := key{storeID, inv.Variant}
		if i, ok := index[k]; ok {
			rows[i] = row
			return
		}
		index[k] = len(rows)
		rows = append(rows, row)
	}

	for _, inv := range d.Inventory {
		if inv.Store != AllStores {
			add(inv.Store, inv)
			continue
		}
		for _, s := range d.Stores {
			add(s.ID, inv)
		}
	}
	return rows
}

// Apply upserts the whole document in a single transaction. Running it
// twice leaves the database unchanged; stock levels are reset to the
// document's values.
func Apply(
	ctx context.Context,
	db repository.DB,
	catalogRepo repository.CatalogRepository,
	inventoryRepo repository.InventoryRepository,
	doc *Document,
	logger zerolog.Logger,
) (Summary, error) {
	logger = logger.With().Str("component", "seed").Logger()

	var sum Summary
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		for _, s := range doc.Stores {
			if err := catalogRepo.UpsertStore(ctx, tx, model.Store{ID: s.ID, Name: s.Name, Location: s.Location}); err != nil {
				return err
			}
			sum.Stores++
		}

		for _, p := range doc.Products {
			if err := catalogRepo.UpsertProduct(ctx, tx, model.Product{ID: p.ID, Name: p.Name, Price: p.Price}); err != nil {
				return err
			}
			sum.Products++

			for _, v := range p.Variants {
				variant := model.ProductVariant{ID: v.ID, ProductID: p.ID, Size: v.Size, Color: v.Color}
				if err := catalogRepo.UpsertVariant(ctx, tx, variant); err != nil {
					return err
				}
				sum.Variants++
			}
		}

		for _, row := range doc.inventoryRows() {
			if err := inventoryRepo.Upsert(ctx, tx, row); err != nil {
				return fmt.Errorf("failed to seed inventory %s/%s: %w", row.StoreID, row.VariantID, err)
			}
			sum.Inventory++
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("seed transaction failed")
		return Summary{}, err
	}

	logger.Info().
		Int("stores", sum.Stores).
		Int("products", sum.Products).
		Int("variants", sum.Variants).
		Int("inventory", sum.Inventory).
		Msg("seed applied")

	return sum, nil
}
