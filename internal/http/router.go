package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires routes and middleware according to the configuration.
func NewRouter(h *Handlers) http.Handler {
	cfg := h.config
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(h.RequestLoggingMiddleware)
	if cfg.CORSEnabled {
		r.Use(h.CORSMiddleware)
	}
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowMS) * time.Millisecond
		r.Use(h.RateLimitMiddleware(NewRateLimiter(cfg.RateLimitMax, window)))
	}
	if cfg.RequestTimeoutMS > 0 {
		r.Use(h.TimeoutMiddleware(time.Duration(cfg.RequestTimeoutMS) * time.Millisecond))
	}

	r.Get("/favicon.ico", h.HandleFavicon)
	r.Get("/", h.HandleRoot)
	if cfg.HealthCheckEnabled {
		r.Get(cfg.HealthCheckPath, h.HandleHealth)
	}

	r.Get("/{dims}/{bgColor}/{fgColor}", h.HandleImage)
	r.Head("/{dims}/{bgColor}/{fgColor}", h.HandleImage)

	r.NotFound(h.HandleNotFound)

	return r
}
