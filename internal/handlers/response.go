package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondServiceError maps the service error taxonomy onto HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrConceptNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrUnsupportedFileType):
		RespondError(c, http.StatusUnsupportedMediaType, "unsupported_file_type", err)
	case errors.Is(err, services.ErrInvalidState):
		RespondError(c, http.StatusBadRequest, "invalid_state", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
