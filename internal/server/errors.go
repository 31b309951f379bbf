package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	organizationdomain "github.com/staypoint/staypoint/internal/organization/domain"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

var (
	ErrNotFound = &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrTooMany  = &apiError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "rate limit exceeded"}
)

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be parsed"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusUnprocessableEntity, Code: code, Message: message, Field: field}
}

// AbortWithError maps domain errors onto HTTP responses.
func AbortWithError(c *gin.Context, err error) {
	var typed *apiError
	if errors.As(err, &typed) {
		c.AbortWithStatusJSON(typed.Status, gin.H{"error": typed})
		return
	}

	switch {
	case errors.Is(err, sourcedomain.ErrSourceNotFound),
		errors.Is(err, organizationdomain.ErrHotelNotFound),
		errors.Is(err, organizationdomain.ErrOrgNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": apiError{Code: "not_found", Message: err.Error()}})
	case errors.Is(err, sourcedomain.ErrInvalidSource),
		errors.Is(err, hoteldomain.ErrInvalidRoomName):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": apiError{Code: "invalid", Message: err.Error()}})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apiError{Code: "internal", Message: "internal error"}})
	}
}
