// Package render draws placeholder images and encodes them.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"placeholder/internal/layout"
)

// Canvas describes the image to draw.
type Canvas struct {
	Width      int
	Height     int
	Background color.NRGBA
	Foreground color.NRGBA
}

// Text is the laid-out text for a canvas. Line Y values are the top of each
// line; Ascent moves them to the baseline.
type Text struct {
	Face   font.Face
	Ascent int
	Lines  []layout.Line
}

type Output struct {
	Data     []byte
	MIMEType string
	Format   Format
}

type Renderer struct {
	encoder Encoder
	log     *zap.Logger
}

func New(encoder Encoder, log *zap.Logger) *Renderer {
	return &Renderer{encoder: encoder, log: log}
}

func (r *Renderer) Format() Format {
	return r.encoder.Format()
}

// Render composites text over the background and encodes the result.
func (r *Renderer) Render(c Canvas, text Text) (*Output, error) {
	img, err := Compose(c, text)
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Encode(img)
	if err != nil {
		return nil, err
	}

	format := r.encoder.Format()
	return &Output{Data: data, MIMEType: format.MIMEType(), Format: format}, nil
}

// Compose builds the final canvas without encoding it.
func Compose(c Canvas, text Text) (*image.NRGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}

	// Step 1: Opaque background
	background := imaging.New(c.Width, c.Height, c.Background)
	if len(text.Lines) == 0 {
		return background, nil
	}
	if text.Face == nil {
		return nil, fmt.Errorf("no font face for %d lines", len(text.Lines))
	}

	// Step 2: Draw glyphs on a transparent layer
	overlay := gg.NewContext(c.Width, c.Height)
	overlay.SetFontFace(text.Face)
	overlay.SetColor(color.White)
	for _, line := range text.Lines {
		x := math.Max(0, math.Floor(line.X))
		y := math.Max(0, math.Floor(line.Y))
		overlay.DrawString(line.Text, x, y+float64(text.Ascent))
	}

	// Step 3: Recolor glyph pixels, keeping their coverage
	fg := c.Foreground
	layer := imaging.AdjustFunc(overlay.Image(), func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{R: fg.R, G: fg.G, B: fg.B, A: px.A}
	})

	// Step 4: Composite at the origin
	return imaging.Overlay(background, layer, image.Pt(0, 0), 1.0), nil
}

func (r *Renderer) Close() error {
	return r.encoder.Close()
}
