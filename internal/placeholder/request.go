// Package placeholder turns URL parameters into rendered placeholder images.
//
// Parse validates raw parameters into a Request. Service resolves the font,
// lays out the text, renders and caches the encoded bytes under a key built
// from every field that affects the output.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// RawRequest holds parameters exactly as they arrived. Empty means absent.
type RawRequest struct {
	Dimensions    string
	Background    string
	Foreground    string
	Text          string
	FontSize      string
	TextWrap      string
	TextWrapWidth string
}

// Request is a validated, fully resolved render request.
type Request struct {
	Width      int
	Height     int
	Background string // six lowercase hex digits
	Foreground string
	Text       string
	FontSize   int // 0 selects by area
	Wrap       bool
	WrapWidth  int // percent of width
}

// Dimensions returns "WxH".
func (r Request) Dimensions() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Limits bounds request parameters and supplies defaults.
type Limits struct {
	MinDimension     int
	MaxDimension     int
	MinFontSize      int
	MaxFontSize      int
	MinWrapWidth     int
	MaxWrapWidth     int
	DefaultWrap      bool
	DefaultWrapWidth int
}

func DefaultLimits() Limits {
	return Limits{
		MinDimension:     1,
		MaxDimension:     5000,
		MinFontSize:      8,
		MaxFontSize:      128,
		MinWrapWidth:     50,
		MaxWrapWidth:     95,
		DefaultWrap:      false,
		DefaultWrapWidth: 80,
	}
}

// Parse validates raw parameters against limits. Checks run in order and the
// first failure is returned as a validation error.
func Parse(raw RawRequest, limits Limits) (Request, error) {
	width, height, ok := parseDimensions(raw.Dimensions)
	if !ok || width <= 0 || height <= 0 {
		return Request{}, newValidationError(FieldDimensions,
			"Invalid dimensions format. Use WxH with positive numbers, e.g., 800x600")
	}
	if width > limits.MaxDimension || height > limits.MaxDimension {
		return Request{}, newValidationError(FieldDimensions, fmt.Sprintf(
			"Image dimensions exceed maximum allowed size of %dx%d", limits.MaxDimension, limits.MaxDimension))
	}
	if width < limits.MinDimension || height < limits.MinDimension {
		return Request{}, newValidationError(FieldDimensions, fmt.Sprintf(
			"Image dimensions below minimum allowed size of %dx%d", limits.MinDimension, limits.MinDimension))
	}

	if !hexColor.MatchString(raw.Background) {
		return Request{}, newValidationError(FieldBackground,
			"Invalid background color format. Use 6-digit hex, e.g., ffffff")
	}
	if !hexColor.MatchString(raw.Foreground) {
		return Request{}, newValidationError(FieldForeground,
			"Invalid foreground color format. Use 6-digit hex, e.g., 000000")
	}

	fontSize := 0
	if raw.FontSize != "" {
		n, err := strconv.Atoi(raw.FontSize)
		if err != nil || n < limits.MinFontSize || n > limits.MaxFontSize {
			return Request{}, newValidationError(FieldFontSize, fmt.Sprintf(
				"Invalid font size. Must be between %d and %d pixels", limits.MinFontSize, limits.MaxFontSize))
		}
		fontSize = n
	}

	wrapWidth := limits.DefaultWrapWidth
	if raw.TextWrapWidth != "" {
		n, err := strconv.Atoi(raw.TextWrapWidth)
		if err != nil {
			n = -1
		}
		wrapWidth = n
	}
	if wrapWidth < limits.MinWrapWidth || wrapWidth > limits.MaxWrapWidth {
		return Request{}, newValidationError(FieldWrapWidth, fmt.Sprintf(
			"Invalid text wrap width. Must be between %d and %d percent", limits.MinWrapWidth, limits.MaxWrapWidth))
	}

	wrap := limits.DefaultWrap
	if raw.TextWrap != "" {
		wrap = raw.TextWrap == "true"
	}

	text := raw.Text
	if text == "" {
		text = raw.Dimensions
	}

	return Request{
		Width:      width,
		Height:     height,
		Background: strings.ToLower(raw.Background),
		Foreground: strings.ToLower(raw.Foreground),
		Text:       text,
		FontSize:   fontSize,
		Wrap:       wrap,
		WrapWidth:  wrapWidth,
	}, nil
}

// parseDimensions splits "WxH" on a single lowercase x. Both sides must be
// non-empty runs of ASCII digits.
func parseDimensions(s string) (int, int, bool) {
	w, h, found := strings.Cut(s, "x")
	if !found || !isDigits(w) || !isDigits(h) {
		return 0, 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, false
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
