package transport

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var errMissingIdentity = errors.New("request carries no authenticated user")

// identityFromRequest turns the authenticated user into a catalog identity.
// A user without a store gets an identity with no StoreID; the service
// rejects its writes.
func identityFromRequest(ctx context.Context, stores repository.StoreRepository) (domain.Identity, error) {
	raw, ok := middleware.GetUserID(ctx)
	if !ok {
		return domain.Identity{}, errMissingIdentity
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: malformed user id", errMissingIdentity)
	}

	identity := domain.Identity{UserID: userID}
	store, err := stores.FindByOwner(ctx, userID)
	switch {
	case err == nil:
		identity.StoreID = store.ID
	case errors.Is(err, repository.ErrStoreNotFound):
	default:
		return domain.Identity{}, &domain.UpstreamError{Op: "find store", Err: err}
	}
	return identity, nil
}
