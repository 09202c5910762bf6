package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/basicfont"

	"placeholder/internal/layout"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, c)

	c, err = ParseHexColor("ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xab, G: 0xcd, B: 0xef, A: 0xff}, c)

	_, err = ParseHexColor("zzzzzz")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"png": FormatPNG, "JPEG": FormatJPEG, "jpg": FormatJPEG, "bmp": FormatBMP}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("webp")
	assert.Error(t, err)

	assert.Equal(t, "image/png", FormatPNG.MIMEType())
	assert.Equal(t, "image/jpeg", FormatJPEG.MIMEType())
	assert.Equal(t, "image/bmp", FormatBMP.MIMEType())
	assert.Equal(t, "jpeg", FormatJPEG.Extension())
}

func TestCompose_BackgroundOnly(t *testing.T) {
	img, err := Compose(Canvas{Width: 4, Height: 3, Background: red, Foreground: white}, Text{})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(3, 2))
}

func TestCompose_DrawsForegroundText(t *testing.T) {
	face := basicfont.Face7x13
	c := Canvas{Width: 60, Height: 20, Background: white, Foreground: red}
	text := Text{
		Face:   face,
		Ascent: face.Metrics().Ascent.Ceil(),
		Lines:  []layout.Line{{Text: "HHHH", X: 2, Y: 2}},
	}

	img, err := Compose(c, text)
	require.NoError(t, err)

	var fgPixels int
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			px := img.NRGBAAt(x, y)
			assert.Equal(t, uint8(0xff), px.A, "canvas stays opaque at %d,%d", x, y)
			if px == red {
				fgPixels++
			}
		}
	}
	assert.Greater(t, fgPixels, 0)
}

func TestCompose_RejectsEmptyCanvas(t *testing.T) {
	_, err := Compose(Canvas{Width: 0, Height: 10}, Text{})
	assert.Error(t, err)
}

func TestCompose_RequiresFaceForLines(t *testing.T) {
	_, err := Compose(Canvas{Width: 10, Height: 10}, Text{Lines: []layout.Line{{Text: "x"}}})
	assert.Error(t, err)
}

func TestRenderer_EncodesEachFormat(t *testing.T) {
	log := zaptest.NewLogger(t)
	c := Canvas{Width: 32, Height: 16, Background: white, Foreground: red}

	tests := []struct {
		format Format
		magic  []byte
	}{
		{FormatPNG, []byte("\x89PNG")},
		{FormatJPEG, []byte{0xff, 0xd8}},
		{FormatBMP, []byte("BM")},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			enc, err := NewEncoder(EncoderNative, EncodeOptions{Format: tt.format, Quality: 90, PNGCompression: 6}, log)
			require.NoError(t, err)

			r := New(enc, log)
			defer r.Close()

			out, err := r.Render(c, Text{})
			require.NoError(t, err)
			assert.Equal(t, tt.format.MIMEType(), out.MIMEType)
			assert.True(t, bytes.HasPrefix(out.Data, tt.magic))
		})
	}
}

func TestRenderer_OutputDecodes(t *testing.T) {
	log := zaptest.NewLogger(t)

	enc, err := NewEncoder(EncoderNative, EncodeOptions{Format: FormatPNG, PNGCompression: 9}, log)
	require.NoError(t, err)
	out, err := New(enc, log).Render(Canvas{Width: 10, Height: 7, Background: red}, Text{})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 7, img.Bounds().Dy())

	enc, err = NewEncoder(EncoderNative, EncodeOptions{Format: FormatJPEG, Quality: 50}, log)
	require.NoError(t, err)
	out, err = New(enc, log).Render(Canvas{Width: 10, Height: 7, Background: red}, Text{})
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
}

func TestNewEncoder_Unknown(t *testing.T) {
	_, err := NewEncoder("gpu", EncodeOptions{Format: FormatPNG}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestPNGLevel(t *testing.T) {
	assert.Equal(t, 3, effectivePNGLevel(6))
	assert.Equal(t, 1, effectivePNGLevel(1))
	assert.Equal(t, 0, effectivePNGLevel(-4))

	assert.Equal(t, png.NoCompression, pngLevel(0))
	assert.Equal(t, png.BestSpeed, pngLevel(3))
	assert.Equal(t, png.DefaultCompression, pngLevel(5))
	assert.Equal(t, png.BestCompression, pngLevel(9))
}
