package placeholder

import (
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"placeholder/internal/cache"
	"placeholder/internal/fonts"
	"placeholder/internal/layout"
	"placeholder/internal/render"
)

// Entry is a rendered image as stored in the image cache. It is never
// modified after insertion.
type Entry struct {
	Data     []byte
	MIMEType string
	ETag     string
	Format   render.Format
}

type Result struct {
	Entry  Entry
	Key    string
	Cached bool
}

type Options struct {
	Quality     int // part of the cache key
	ETagEnabled bool
	Debug       bool
}

// Caches are the process-wide image and font caches.
type Caches struct {
	Images cache.Cache[string, Entry]
	Fonts  cache.Cache[fonts.ID, *fonts.Handle]
}

// NewCaches builds both caches with the same capacity. The font cache cannot
// be disabled; a disabled policy falls back to FIFO for fonts.
func NewCaches(policy string, maxSize int, log *zap.Logger) (*Caches, error) {
	images, err := cache.NewCache[string, Entry]("images", policy, maxSize, log)
	if err != nil {
		return nil, err
	}

	fontPolicy := policy
	if fontPolicy == cache.PolicyDisabled {
		fontPolicy = cache.PolicyFIFO
	}
	fontCache, err := cache.NewCache[fonts.ID, *fonts.Handle]("fonts", fontPolicy, maxSize, log)
	if err != nil {
		return nil, err
	}

	return &Caches{Images: images, Fonts: fontCache}, nil
}

type Stats struct {
	Images cache.Stats `json:"images"`
	Fonts  cache.Stats `json:"fonts"`
}

// Service runs the render pipeline: image cache, font selection, layout,
// render, encode.
type Service struct {
	images   cache.Cache[string, Entry]
	fonts    *fonts.Selector
	renderer *render.Renderer
	opts     Options
	group    singleflight.Group
	log      *zap.Logger
}

func NewService(images cache.Cache[string, Entry], selector *fonts.Selector, renderer *render.Renderer, opts Options, log *zap.Logger) *Service {
	return &Service{
		images:   images,
		fonts:    selector,
		renderer: renderer,
		opts:     opts,
		log:      log,
	}
}

// Key returns the cache key for r under the configured output format.
func (s *Service) Key(r Request) string {
	return CacheKey(r, string(s.renderer.Format()), s.opts.Quality)
}

// Generate returns the encoded image for r, rendering it on a cache miss.
// Concurrent misses for the same key render once.
func (s *Service) Generate(r Request) (*Result, error) {
	key := s.Key(r)

	if entry, ok := s.images.Get(key); ok {
		return &Result{Entry: entry, Key: key, Cached: true}, nil
	}

	if s.opts.Debug {
		s.log.Debug("Rendering placeholder",
			zap.Int("width", r.Width),
			zap.Int("height", r.Height),
			zap.String("bg", r.Background),
			zap.String("fg", r.Foreground),
			zap.String("text", r.Text),
			zap.Int("font_size", r.FontSize),
			zap.Bool("wrap", r.Wrap),
			zap.Int("wrap_width", r.WrapWidth),
		)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if entry, ok := s.images.Get(key); ok {
			return entry, nil
		}
		entry, err := s.render(r, key)
		if err != nil {
			return nil, err
		}
		s.images.Set(key, entry)
		return entry, nil
	})
	if err != nil {
		s.log.Error("Failed to generate image", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &Result{Entry: v.(Entry), Key: key}, nil
}

func (s *Service) render(r Request, key string) (Entry, error) {
	bg, err := render.ParseHexColor(r.Background)
	if err != nil {
		return Entry{}, newRenderError("color", err)
	}
	fg, err := render.ParseHexColor(r.Foreground)
	if err != nil {
		return Entry{}, newRenderError("color", err)
	}

	handle, err := s.fonts.Select(r.Width, r.Height, r.FontSize)
	if err != nil {
		return Entry{}, newRenderError("font", err)
	}

	face, err := handle.Face()
	if err != nil {
		return Entry{}, newRenderError("font", err)
	}
	defer face.Close()

	lines := layout.Compute(r.Text, face, r.Width, r.Height, layout.Options{
		Wrap:             r.Wrap,
		WrapWidthPercent: r.WrapWidth,
	})

	out, err := s.renderer.Render(
		render.Canvas{Width: r.Width, Height: r.Height, Background: bg, Foreground: fg},
		render.Text{Face: face.Underlying(), Ascent: face.Ascent(), Lines: lines.Lines},
	)
	if err != nil {
		return Entry{}, newRenderError("encode", err)
	}

	return Entry{
		Data:     out.Data,
		MIMEType: out.MIMEType,
		ETag:     ETag(key, s.opts.ETagEnabled),
		Format:   out.Format,
	}, nil
}

// Format is the configured output format.
func (s *Service) Format() render.Format {
	return s.renderer.Format()
}

func (s *Service) Stats() Stats {
	return Stats{Images: s.images.Stats(), Fonts: s.fonts.Stats()}
}

// ClearCaches drops every cached image and font.
func (s *Service) ClearCaches() {
	s.images.Clear()
	s.fonts.Clear()
	s.log.Info("Caches cleared")
}
