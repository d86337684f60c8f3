package handlers

import (
	"errors"
	"net/http"

	"muellepos/internal/domain"
	"muellepos/internal/http/middleware"
	"muellepos/internal/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		var verr domain.ValidationError
		errors.As(err, &verr)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), verr.Fields)
	case domain.IsNotAuthenticated(err):
		respondError(c, http.StatusUnauthorized, "not_authenticated", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsAlreadyCancelled(err):
		respondError(c, http.StatusConflict, "already_cancelled", err.Error(), nil)
	case domain.IsInvalidTransition(err), errors.Is(err, services.ErrGenerateInFlight):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case domain.IsConfirmationRequired(err):
		respondError(c, http.StatusPreconditionRequired, "confirmation_required", err.Error(), nil)
	case domain.IsNotReady(err):
		respondError(c, http.StatusServiceUnavailable, "store_not_ready", err.Error(), nil)
	case domain.IsPersistence(err):
		respondError(c, http.StatusBadGateway, "persistence_error", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "ocurrió un error inesperado", nil)
	}
}
