package render

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// NativeEncoder encodes with the pure Go codecs.
type NativeEncoder struct {
	opts EncodeOptions
}

func NewNativeEncoder(opts EncodeOptions, log *zap.Logger) *NativeEncoder {
	if opts.Format == FormatJPEG && opts.Progressive {
		log.Warn("Progressive JPEG is not supported by the native encoder, writing baseline")
	}
	return &NativeEncoder{opts: opts}
}

func (e *NativeEncoder) Encode(img image.Image) ([]byte, error) {
	var (
		format imaging.Format
		opts   []imaging.EncodeOption
	)

	switch e.opts.Format {
	case FormatPNG:
		format = imaging.PNG
		opts = append(opts, imaging.PNGCompressionLevel(pngLevel(effectivePNGLevel(e.opts.PNGCompression))))
	case FormatJPEG:
		format = imaging.JPEG
		opts = append(opts, imaging.JPEGQuality(e.opts.Quality))
	case FormatBMP:
		format = imaging.BMP
	default:
		return nil, fmt.Errorf("unsupported image format: %s", e.opts.Format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.opts.Format, err)
	}
	return buf.Bytes(), nil
}

func (e *NativeEncoder) Format() Format {
	return e.opts.Format
}

func (e *NativeEncoder) Name() string {
	return EncoderNative
}

func (e *NativeEncoder) Close() error {
	return nil
}
