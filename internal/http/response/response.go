package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
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

// RespondServiceError maps service sentinel errors onto HTTP statuses so
// handlers don't repeat the switch.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, apperrors.ErrRateLimited):
		var rl *apperrors.RateLimitError
		if errors.As(err, &rl) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               APIError{Message: rl.Error(), Code: "rate_limited"},
				"retry_after_seconds": rl.RetryAfterSeconds,
			})
			return
		}
		RespondError(c, http.StatusTooManyRequests, "rate_limited", err)
	case errors.Is(err, apperrors.ErrApprovalRequired):
		RespondError(c, http.StatusConflict, "approval_required", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
