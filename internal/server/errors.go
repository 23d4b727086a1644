package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nordlux/elcore/pkg/apperr"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware turns the last collected handler error into the
// JSON error envelope. Handlers that already wrote a body win.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}
		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest, errorPayload{Type: "validation", Message: err.Error()}
	case apperr.IsNotFound(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case apperr.IsConflict(err):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case apperr.IsPreconditionFailed(err):
		return http.StatusPreconditionFailed, errorPayload{Type: "precondition_failed", Message: err.Error()}
	case apperr.IsExternal(err):
		return http.StatusBadGateway, errorPayload{Type: "external", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal", Message: "internal error"}
	}
}
