package http

import (
	"net/http"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"

	"placeholder/internal/placeholder"
)

const (
	rateLimitMessage = "Too many requests from this IP, please try again later."
	timeoutMessage   = "Request timeout"
)

var (
	errRateLimited = errors.New(errors.CodeRateLimit, rateLimitMessage)
	errTimeout     = errors.New(errors.CodeTimeout, timeoutMessage)
)

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeRateLimit:
		return http.StatusTooManyRequests
	case errors.CodeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Error generating image", zap.Error(err))
	}
	http.Error(w, placeholder.PublicMessage(err, h.config.VerboseErrors), status)
}
