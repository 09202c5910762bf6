package cli

import (
	"fmt"

	"go.uber.org/zap"

	"placeholder/internal/config"
	"placeholder/internal/fonts"
	httphandlers "placeholder/internal/http"
	"placeholder/internal/logger"
	"placeholder/internal/placeholder"
	"placeholder/internal/render"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	fonts    *fonts.Selector
	renderer *render.Renderer
	service  *placeholder.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.LogLevel, logger.FileOptions{
		Enabled:   cfg.LogFileEnabled,
		Path:      cfg.LogFilePath,
		MaxSizeMB: cfg.LogFileMaxSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	format, err := render.ParseFormat(cfg.ImageFormat)
	if err != nil {
		return nil, err
	}

	encoder, err := render.NewEncoder(cfg.ImageEncoder, render.EncodeOptions{
		Format:         format,
		Quality:        cfg.ImageQuality,
		Progressive:    cfg.JPEGProgressive,
		PNGCompression: cfg.PNGCompressionLevel,
		Vips: render.VipsOptions{
			Concurrency: cfg.VipsConcurrency,
			MaxCacheMB:  cfg.VipsMaxCacheMB,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encoder: %w", err)
	}
	renderer := render.New(encoder, log)

	caches, err := placeholder.NewCaches(cfg.CachePolicy, cfg.MaxCacheSize, log)
	if err != nil {
		renderer.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	selector := fonts.NewSelector(caches.Fonts, fonts.NewOpenTypeLoader(cfg.FontPath), cfg.MinFontSize, cfg.MaxFontSize, log)

	service := placeholder.NewService(caches.Images, selector, renderer, placeholder.Options{
		Quality:     cfg.ImageQuality,
		ETagEnabled: cfg.ETagEnabled,
		Debug:       cfg.Debug,
	}, log)

	return &app{
		cfg:      cfg,
		log:      log,
		fonts:    selector,
		renderer: renderer,
		service:  service,
	}, nil
}

func (a *app) limits() placeholder.Limits {
	return httphandlers.LimitsFromConfig(a.cfg)
}

func (a *app) Close() error {
	return a.renderer.Close()
}
