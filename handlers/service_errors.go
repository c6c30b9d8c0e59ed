package handlers

import (
	"net/http"

	"github.com/dockwall/dockwall/services"
	"github.com/dockwall/dockwall/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses for the admin API.
// The authorization plugin endpoints never use this: their protocol answers
// 200 with the decision in the body.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsConfigurationError(err):
		// Invalid policy data is the operator's to fix; surface the detail.
		if err := utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse{
			Error:   "configuration_error",
			Message: err.Error(),
			Details: details,
		}); err != nil {
			logger.Error("failed to write configuration error response", zap.Error(err))
		}

	case services.IsValidationError(err), services.IsInvalidRequestError(err):
		if err := utils.WriteBadRequest(w, err.Error(), details); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.IsUnauthorizedError(err):
		if err := utils.WriteUnauthorized(w, err.Error()); err != nil {
			logger.Error("failed to write unauthorized response", zap.Error(err))
		}

	case services.IsDeniedError(err):
		if err := utils.WriteForbidden(w, err.Error()); err != nil {
			logger.Error("failed to write forbidden response", zap.Error(err))
		}

	case services.IsNotFoundError(err):
		if err := utils.WriteNotFound(w, err.Error()); err != nil {
			logger.Error("failed to write not found response", zap.Error(err))
		}

	default:
		logger.Error("internal server error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "An internal error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}
