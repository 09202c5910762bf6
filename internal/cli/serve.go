package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"placeholder/internal/fonts"
	httphandlers "placeholder/internal/http"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := newApp(cfg, log)
			if err != nil {
				log.Error("Failed to initialize", zap.Error(err))
				return err
			}
			defer a.Close()

			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, log := a.cfg, a.log

	log.Info("Starting placeholder server",
		zap.Int("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("format", cfg.ImageFormat),
		zap.String("encoder", cfg.ImageEncoder),
		zap.String("cache_policy", cfg.CachePolicy),
		zap.Int("max_cache_size", cfg.MaxCacheSize),
	)
	if cfg.Debug {
		log.Debug("Effective configuration", zap.Any("config", cfg))
	}

	if cfg.FontPreload {
		go preloadFonts(a.fonts, cfg.FontPreloadWorkers, log)
	}

	handlers := httphandlers.New(cfg, log, a.service)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httphandlers.NewRouter(handlers),
		IdleTimeout:       65 * time.Second,
		ReadHeaderTimeout: 66 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("Server started", zap.String("addr", server.Addr))

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}

// preloadFonts loads every ladder size using a bounded worker pool.
func preloadFonts(selector *fonts.Selector, workerLimit int, log *zap.Logger) {
	log.Info("Starting font preload", zap.Int("sizes", len(fonts.Sizes)), zap.Int("workers", workerLimit))

	if workerLimit <= 0 {
		workerLimit = 1
	}

	workerChan := make(chan struct{}, workerLimit)
	var wg sync.WaitGroup

	for _, size := range fonts.Sizes {
		wg.Add(1)
		workerChan <- struct{}{} // Acquire worker slot

		go func(size int) {
			defer wg.Done()
			defer func() { <-workerChan }() // Release worker slot

			if err := selector.Preload(size); err != nil {
				log.Warn("Font preload failed", zap.Int("size", size), zap.Error(err))
			}
		}(size)
	}

	wg.Wait()
	log.Info("Font preload completed", zap.Int("cached", selector.Stats().Size))
}
