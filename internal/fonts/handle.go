package fonts

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Handle is a loaded ladder font. It is immutable and safe to share between
// goroutines; drawing and measuring go through a per-request Face.
type Handle struct {
	ID         ID
	Size       int
	font       *opentype.Font
	lineHeight int
	ascent     int
}

func newHandle(id ID, size int, f *opentype.Font) (*Handle, error) {
	h := &Handle{ID: id, Size: size, font: f}

	face, err := h.newFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	m := face.Metrics()
	h.lineHeight = m.Height.Ceil()
	h.ascent = m.Ascent.Ceil()
	if h.lineHeight <= 0 {
		h.lineHeight = size
	}
	return h, nil
}

// LineHeight is the recommended vertical space for one line, in pixels.
func (h *Handle) LineHeight() int {
	return h.lineHeight
}

// Face opens a face for one request. The returned Face must not be shared.
func (h *Handle) Face() (*Face, error) {
	ff, err := h.newFace()
	if err != nil {
		return nil, err
	}
	return &Face{face: ff, lineHeight: h.lineHeight, ascent: h.ascent}, nil
}

func (h *Handle) newFace() (font.Face, error) {
	ff, err := opentype.NewFace(h.font, &opentype.FaceOptions{
		Size:    float64(h.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face %s: %w", h.ID, err)
	}
	return ff, nil
}

// Face measures and draws text at the handle's size. Not safe for concurrent use.
type Face struct {
	face       font.Face
	lineHeight int
	ascent     int
}

// MeasureString returns the advance width of text in whole pixels.
func (f *Face) MeasureString(text string) int {
	return font.MeasureString(f.face, text).Ceil()
}

func (f *Face) LineHeight() int {
	return f.lineHeight
}

// Ascent is the distance from the top of a line to its baseline.
func (f *Face) Ascent() int {
	return f.ascent
}

func (f *Face) Underlying() font.Face {
	return f.face
}

func (f *Face) Close() error {
	return f.face.Close()
}
