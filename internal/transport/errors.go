package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"

	"go.uber.org/zap"
)

// respondWithServiceError maps a typed catalog error onto the error
// envelope. Validation and conflict messages are specific; everything
// unexpected gets a generic retry message and is logged.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		notFound   *domain.NotFoundError
		forbidden  *domain.AuthorizationError
	)

	switch {
	case errors.As(err, &validation):
		details := map[string]interface{}{}
		if validation.Field != "" {
			details["field"] = validation.Field
		}
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, validation.Error(), details)

	case errors.As(err, &conflict):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "slug already exists", map[string]interface{}{
			"slug": conflict.Slug,
		})

	case errors.As(err, &notFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")

	case errors.As(err, &forbidden):
		logger.Debug("Catalog write forbidden", zap.String("reason", forbidden.Reason))
		middleware.RespondWithError(w, http.StatusForbidden, "not authorized")

	default:
		logger.Error("Catalog operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}
