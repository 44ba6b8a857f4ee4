package domain

import "github.com/google/uuid"

// Identity is the caller on whose behalf a catalog write runs. StoreID is
// uuid.Nil when the caller has no store.
type Identity struct {
	UserID  uuid.UUID
	StoreID uuid.UUID
}

// HasStore reports whether the caller is associated with a store.
func (i Identity) HasStore() bool {
	return i.StoreID != uuid.Nil
}

// Owns reports whether the product belongs to the caller's store.
func (i Identity) Owns(p *Product) bool {
	return i.HasStore() && p != nil && p.StoreID == i.StoreID
}

// Store is a merchant storefront owned by a single user.
type Store struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"ownerId"`
	Name    string    `json:"name"`
}
