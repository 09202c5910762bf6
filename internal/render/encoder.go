package render

import (
	"fmt"
	"image"
	"image/png"

	"go.uber.org/zap"
)

const (
	EncoderNative = "native"
	EncoderVips   = "vips"
)

// MaxPNGCompression caps the configured zlib level to keep generation fast.
const MaxPNGCompression = 3

type EncodeOptions struct {
	Format         Format
	Quality        int // JPEG only, 1-100
	Progressive    bool
	PNGCompression int // zlib level 0-9
	Vips           VipsOptions
}

// VipsOptions tunes libvips when the vips encoder is selected.
type VipsOptions struct {
	Concurrency int
	MaxCacheMB  int
}

// Encoder turns a composited canvas into bytes of one format.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	Format() Format
	Name() string
	Close() error
}

// NewEncoder creates an encoder by backend name.
func NewEncoder(name string, opts EncodeOptions, log *zap.Logger) (Encoder, error) {
	switch name {
	case EncoderNative, "":
		log.Info("Using native image encoder",
			zap.String("format", string(opts.Format)),
			zap.Int("quality", opts.Quality),
			zap.Int("png_compression", effectivePNGLevel(opts.PNGCompression)),
		)
		return NewNativeEncoder(opts, log), nil
	case EncoderVips:
		log.Info("Using libvips image encoder", zap.String("format", string(opts.Format)))
		return NewVipsEncoder(opts, log)
	default:
		return nil, fmt.Errorf("unknown image encoder: %s (supported: native, vips)", name)
	}
}

func effectivePNGLevel(level int) int {
	return max(0, min(level, MaxPNGCompression))
}

// pngLevel maps a zlib level onto the coarse levels image/png supports.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
