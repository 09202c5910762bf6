package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"placeholder/internal/config"
	"placeholder/internal/placeholder"
)

const (
	ServiceName = "placeholder"
	Version     = "1.0.0"
)

type Handlers struct {
	config  *config.Config
	logger  *zap.Logger
	service *placeholder.Service
	limits  placeholder.Limits
	policy  placeholder.CachePolicy
	started time.Time
}

func New(cfg *config.Config, logger *zap.Logger, service *placeholder.Service) *Handlers {
	return &Handlers{
		config:  cfg,
		logger:  logger,
		service: service,
		limits:  LimitsFromConfig(cfg),
		policy: placeholder.CachePolicy{
			MaxAge:    cfg.CacheMaxAge,
			Public:    cfg.CachePublic,
			Immutable: cfg.CacheImmutable,
		},
		started: time.Now(),
	}
}

// LimitsFromConfig extracts request bounds and defaults.
func LimitsFromConfig(cfg *config.Config) placeholder.Limits {
	return placeholder.Limits{
		MinDimension:     cfg.MinImageDimension,
		MaxDimension:     cfg.MaxImageDimension,
		MinFontSize:      cfg.MinFontSize,
		MaxFontSize:      cfg.MaxFontSize,
		MinWrapWidth:     cfg.MinTextWrapWidth,
		MaxWrapWidth:     cfg.MaxTextWrapWidth,
		DefaultWrap:      cfg.DefaultTextWrap,
		DefaultWrapWidth: cfg.DefaultTextWrapWidth,
	}
}

func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	raw := placeholder.RawRequest{
		Dimensions:    chi.URLParam(r, "dims"),
		Background:    chi.URLParam(r, "bgColor"),
		Foreground:    chi.URLParam(r, "fgColor"),
		Text:          query.Get("text"),
		FontSize:      query.Get("fontSize"),
		TextWrap:      query.Get("textWrap"),
		TextWrapWidth: query.Get("textWrapWidth"),
	}

	req, err := placeholder.Parse(raw, h.limits)
	if err != nil {
		h.logger.Debug("Rejected request",
			zap.String("path", r.URL.Path),
			zap.String("field", placeholder.Field(err)),
			zap.Error(err),
		)
		h.writeError(w, err)
		return
	}

	result, err := h.service.Generate(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entry := result.Entry
	header := w.Header()
	header.Set("Content-Type", entry.MIMEType)
	header.Set("Cache-Control", h.policy.Header())
	if entry.ETag != "" {
		header.Set("ETag", entry.ETag)
	}
	if cd := placeholder.ContentDisposition(h.config.ContentDisposition, req, entry.Format.Extension()); cd != "" {
		header.Set("Content-Disposition", cd)
	}
	if result.Cached {
		header.Set("X-Cache", "HIT")
	} else {
		header.Set("X-Cache", "MISS")
	}

	if placeholder.MatchesETag(r.Header.Get("If-None-Match"), entry.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	header.Set("Content-Length", strconv.Itoa(len(entry.Data)))

	// HEAD request doesn't send body
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Write(entry.Data)
}

func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	cfg := h.config
	info := map[string]interface{}{
		"service":     ServiceName,
		"version":     Version,
		"description": "Placeholder image generation service",
		"usage":       "/{width}x{height}/{bgColor}/{fgColor}?text=custom&fontSize=16&textWrap=true&textWrapWidth=80",
		"examples": []string{
			"/800x600/ffffff/000000?text=Hello",
			"/400x300/ff0000/00ff00?text=Custom&fontSize=32",
			"/600x400/cccccc/333333?text=Long text that wraps&textWrap=true",
			"/500x300/000000/ffffff?text=Wrapped text&fontSize=24&textWrap=true&textWrapWidth=70",
		},
		"parameters": map[string]string{
			"text":          "Custom text to display (defaults to dimensions)",
			"fontSize":      fmt.Sprintf("Font size in pixels (%d-%d, defaults to auto)", cfg.MinFontSize, cfg.MaxFontSize),
			"textWrap":      fmt.Sprintf("Enable text wrapping (true/false, defaults to %t)", cfg.DefaultTextWrap),
			"textWrapWidth": fmt.Sprintf("Text wrap width percentage (%d-%d, defaults to %d)", cfg.MinTextWrapWidth, cfg.MaxTextWrapWidth, cfg.DefaultTextWrapWidth),
		},
		"format": string(h.service.Format()),
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":      time.Since(h.started).Seconds(),
		"environment": h.config.Env,
		"cache":       h.service.Stats(),
	})
}

func (h *Handlers) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
