//go:build !vips

package render

import (
	"errors"

	"go.uber.org/zap"
)

// NewVipsEncoder is unavailable unless built with -tags vips.
func NewVipsEncoder(opts EncodeOptions, log *zap.Logger) (Encoder, error) {
	return nil, errors.New("vips encoder not compiled in (build with -tags vips)")
}
