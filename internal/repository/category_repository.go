package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name or slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category. An empty slug is stored as NULL so the
// resolver derives it from the name.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		sql.NullString{String: category.Slug, Valid: category.Slug != ""},
		nullUUID(category.ParentID),
		category.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories, roots first
func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, slug, parent_id, created_at
		FROM categories
		ORDER BY parent_id NULLS FIRST, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name, slug, parent_id, created_at
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

func scanCategory(s rowScanner) (*domain.Category, error) {
	var (
		category domain.Category
		slug     sql.NullString
		parentID uuid.NullUUID
	)
	if err := s.Scan(&category.ID, &category.Name, &slug, &parentID, &category.CreatedAt); err != nil {
		return nil, err
	}
	category.Slug = slug.String
	if parentID.Valid {
		id := parentID.UUID
		category.ParentID = &id
	}
	return &category, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
