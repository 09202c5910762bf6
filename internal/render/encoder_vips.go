//go:build vips

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"
)

var vipsOnce sync.Once

// VipsEncoder encodes PNG and JPEG through libvips. BMP is not supported by
// libvips and is delegated to the native encoder.
type VipsEncoder struct {
	opts   EncodeOptions
	native *NativeEncoder
	log    *zap.Logger
}

func NewVipsEncoder(opts EncodeOptions, log *zap.Logger) (Encoder, error) {
	vipsOnce.Do(func() { startVips(opts.Vips, log) })

	return &VipsEncoder{
		opts:   opts,
		native: NewNativeEncoder(EncodeOptions{Format: FormatBMP}, log),
		log:    log,
	}, nil
}

func startVips(opts VipsOptions, log *zap.Logger) {
	vips.SetLogging(func(domain string, level vips.LogLevel, message string) {
		if level >= vips.LogLevelError {
			log.Error("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		} else if level >= vips.LogLevelWarning {
			log.Warn("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		}
	}, vips.LogLevelError)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: opts.Concurrency,
		MaxCacheMem:      opts.MaxCacheMB * 1024 * 1024,
		MaxCacheFiles:    0,
		MaxCacheSize:     0,
		ReportLeaks:      false,
		CacheTrace:       false,
		VectorEnabled:    true,
	})

	log.Info("VIPS initialized",
		zap.Int("max_cache_mb", opts.MaxCacheMB),
		zap.Int("concurrency", opts.Concurrency),
	)
}

func (e *VipsEncoder) Encode(img image.Image) ([]byte, error) {
	if e.opts.Format == FormatBMP {
		return e.native.Encode(img)
	}

	// Hand the canvas to libvips as an uncompressed PNG.
	var raw bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&raw, img); err != nil {
		return nil, fmt.Errorf("failed to stage canvas: %w", err)
	}

	vimg, err := vips.NewPngloadBuffer(raw.Bytes(), vips.DefaultPngloadBufferOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas into vips: %w", err)
	}
	defer vimg.Close()

	switch e.opts.Format {
	case FormatJPEG:
		jpegOpts := vips.DefaultJpegsaveBufferOptions()
		jpegOpts.Q = e.opts.Quality
		jpegOpts.Interlace = e.opts.Progressive
		data, err := vimg.JpegsaveBuffer(jpegOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to export jpeg: %w", err)
		}
		return data, nil
	case FormatPNG:
		pngOpts := vips.DefaultPngsaveBufferOptions()
		pngOpts.Compression = effectivePNGLevel(e.opts.PNGCompression)
		data, err := vimg.PngsaveBuffer(pngOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to export png: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported image format: %s", e.opts.Format)
	}
}

func (e *VipsEncoder) Format() Format {
	return e.opts.Format
}

func (e *VipsEncoder) Name() string {
	return EncoderVips
}

// Close shuts libvips down for the whole process.
func (e *VipsEncoder) Close() error {
	vips.Shutdown()
	return nil
}
