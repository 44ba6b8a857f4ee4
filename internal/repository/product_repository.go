package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("product with this slug already exists")
)

const productSlugConstraint = "products_slug_key"

const productColumns = `
	id, store_id, slug, name, description, short_description, category, sku,
	tags::text, has_variants, variants, price, aed, in_stock, images::text,
	attributes, created_at, updated_at`

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Insert(ctx context.Context, product *domain.Product) error
	UpdateByID(ctx context.Context, id uuid.UUID, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// productRow holds the column encoding of a product.
type productRow struct {
	variants   []byte
	attributes []byte
	tags       pq.StringArray
	images     pq.StringArray
	quote      domain.Quote
}

func encodeProduct(p *domain.Product) (*productRow, error) {
	row := &productRow{
		tags:   pq.StringArray(p.Tags),
		images: pq.StringArray(p.Images),
		quote:  p.Quote(),
	}
	if row.tags == nil {
		row.tags = pq.StringArray{}
	}
	if row.images == nil {
		row.images = pq.StringArray{}
	}

	if p.HasVariants() {
		b, err := json.Marshal(p.Variants())
		if err != nil {
			return nil, fmt.Errorf("failed to encode variants: %w", err)
		}
		row.variants = b
	}

	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	row.attributes = b

	return row, nil
}

// Insert stores a new product. The unique index on slug is the authority on
// slug uniqueness; a violation is reported as ErrSlugTaken.
func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	row, err := encodeProduct(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, store_id, slug, name, description, short_description, category, sku,
			tags, has_variants, variants, price, aed, in_stock, images, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.StoreID,
		product.Slug,
		product.Name,
		product.Description,
		product.ShortDescription,
		product.Category,
		product.SKU,
		row.tags,
		product.HasVariants(),
		row.variants,
		row.quote.Price,
		row.quote.AED,
		row.quote.InStock,
		row.images,
		row.attributes,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, productSlugConstraint) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// UpdateByID overwrites the mutable columns of a product. created_at and
// store_id are never touched.
func (r *productRepository) UpdateByID(ctx context.Context, id uuid.UUID, product *domain.Product) error {
	row, err := encodeProduct(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET slug = $2, name = $3, description = $4, short_description = $5, category = $6, sku = $7,
		    tags = $8, has_variants = $9, variants = $10, price = $11, aed = $12, in_stock = $13,
		    images = $14, attributes = $15, updated_at = $16
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		id,
		product.Slug,
		product.Name,
		product.Description,
		product.ShortDescription,
		product.Category,
		product.SKU,
		row.tags,
		product.HasVariants(),
		row.variants,
		row.quote.Price,
		row.quote.AED,
		row.quote.InStock,
		row.images,
		row.attributes,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, productSlugConstraint) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product and its ratings
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindBySlug retrieves a product by its slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, "slug = $1", slug)
}

func (r *productRepository) findOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s`, productColumns, where)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	ratings, err := r.ratings(ctx, &product.ID)
	if err != nil {
		return nil, err
	}
	product.Ratings = ratings[product.ID]

	return product, nil
}

// ListAll returns the whole catalog with ratings attached, newest first.
func (r *productRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	ratings, err := r.ratings(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Ratings = ratings[products[i].ID]
	}

	return products, nil
}

// ratings loads ratings grouped by product, for one product or for all.
func (r *productRepository) ratings(ctx context.Context, productID *uuid.UUID) (map[uuid.UUID][]domain.Rating, error) {
	query := `SELECT product_id, user_id, rating, comment, created_at FROM product_ratings`
	args := []any{}
	if productID != nil {
		query += ` WHERE product_id = $1`
		args = append(args, *productID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID][]domain.Rating{}
	for rows.Next() {
		var (
			pid     uuid.UUID
			rating  domain.Rating
			comment sql.NullString
		)
		if err := rows.Scan(&pid, &rating.UserID, &rating.Rating, &comment, &rating.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		rating.Comment = comment.String
		out[pid] = append(out[pid], rating)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		sku         sql.NullString
		short       sql.NullString
		tags        pq.StringArray
		images      pq.StringArray
		hasVariants bool
		variants    []byte
		quote       domain.Quote
		attributes  []byte
	)

	err := s.Scan(
		&p.ID,
		&p.StoreID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&short,
		&p.Category,
		&sku,
		&tags,
		&hasVariants,
		&variants,
		&quote.Price,
		&quote.AED,
		&quote.InStock,
		&images,
		&attributes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.SKU = sku.String
	p.ShortDescription = short.String
	p.Tags = []string(tags)
	p.Images = []string(images)

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes: %w", err)
		}
	}

	if hasVariants {
		var vs []domain.Variant
		if err := json.Unmarshal(variants, &vs); err != nil {
			return nil, fmt.Errorf("failed to decode variants: %w", err)
		}
		p.Pricing = domain.VariantPricing{Variants: vs}
	} else {
		p.Pricing = domain.FixedPricing{Price: quote.Price, AED: quote.AED, InStock: quote.InStock}
	}

	return &p, nil
}
