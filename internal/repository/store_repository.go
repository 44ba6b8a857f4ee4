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
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreAlreadyExists = errors.New("user already owns a store")
)

// StoreRepository maps authenticated users to the store they own
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Store, error)
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create inserts a new store using parameterized queries
func (r *storeRepository) Create(ctx context.Context, store *domain.Store) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO stores (id, owner_id, name) VALUES ($1, $2, $3)`,
		store.ID,
		store.OwnerID,
		store.Name,
	)
	if err != nil {
		if isUniqueViolation(err, "stores_owner_id_key") {
			return ErrStoreAlreadyExists
		}
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// FindByOwner retrieves the store owned by a user
func (r *storeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Store, error) {
	store := &domain.Store{}
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, owner_id, name FROM stores WHERE owner_id = $1`,
		ownerID,
	).Scan(&store.ID, &store.OwnerID, &store.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by owner: %w", err)
	}

	return store, nil
}
