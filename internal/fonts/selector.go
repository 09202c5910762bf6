package fonts

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"placeholder/internal/cache"
)

// Selector picks a ladder size for a request and returns its loaded font.
// Each ladder entry is loaded at most once while it stays cached.
type Selector struct {
	cache   cache.Cache[ID, *Handle]
	loader  Loader
	minSize int
	maxSize int
	group   singleflight.Group
	log     *zap.Logger
}

func NewSelector(c cache.Cache[ID, *Handle], loader Loader, minSize, maxSize int, log *zap.Logger) *Selector {
	return &Selector{
		cache:   c,
		loader:  loader,
		minSize: minSize,
		maxSize: maxSize,
		log:     log,
	}
}

// Select resolves the ladder size for a width x height canvas and returns the
// loaded font. explicitSize <= 0 selects automatically from the area.
func (s *Selector) Select(width, height, explicitSize int) (*Handle, error) {
	return s.Resolve(ResolveSize(width, height, explicitSize, s.minSize, s.maxSize))
}

// Resolve returns the font for a ladder size. If it cannot be loaded the
// fallback size is tried once.
func (s *Selector) Resolve(size int) (*Handle, error) {
	id := IDForSize(size)
	h, err := s.load(id, size)
	if err == nil {
		return h, nil
	}

	fallback := IDForSize(FallbackSize)
	s.log.Warn("Font load failed, using fallback",
		zap.String("font", string(id)),
		zap.String("fallback", string(fallback)),
		zap.Error(err),
	)
	if id == fallback {
		return nil, fmt.Errorf("failed to load fallback font %s: %w", fallback, err)
	}

	h, fbErr := s.load(fallback, FallbackSize)
	if fbErr != nil {
		return nil, fmt.Errorf("failed to load font %s (%v) and fallback %s: %w", id, err, fallback, fbErr)
	}
	return h, nil
}

// Preload loads a ladder size into the cache.
func (s *Selector) Preload(size int) error {
	_, err := s.load(IDForSize(size), size)
	return err
}

func (s *Selector) Stats() cache.Stats {
	return s.cache.Stats()
}

func (s *Selector) Clear() {
	s.cache.Clear()
}

func (s *Selector) load(id ID, size int) (*Handle, error) {
	if h, ok := s.cache.Get(id); ok {
		return h, nil
	}

	v, err, _ := s.group.Do(string(id), func() (any, error) {
		if h, ok := s.cache.Get(id); ok {
			return h, nil
		}
		h, err := s.loader.Load(id, size)
		if err != nil {
			return nil, err
		}
		s.cache.Set(id, h)
		s.log.Debug("Font loaded", zap.String("font", string(id)))
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}
