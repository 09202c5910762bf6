package placeholder

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// CacheKey joins every render-affecting field with '-'. The font size is
// "auto" when selected by area.
func CacheKey(r Request, format string, quality int) string {
	fontSize := "auto"
	if r.FontSize > 0 {
		fontSize = strconv.Itoa(r.FontSize)
	}
	return fmt.Sprintf("%dx%d-%s-%s-%s-%s-%t-%d-%s-%d",
		r.Width, r.Height, r.Background, r.Foreground, r.Text, fontSize, r.Wrap, r.WrapWidth, format, quality)
}

// ETag returns the quoted base64 form of key, or "" when disabled.
func ETag(key string, enabled bool) string {
	if !enabled {
		return ""
	}
	return `"` + base64.StdEncoding.EncodeToString([]byte(key)) + `"`
}

type CachePolicy struct {
	MaxAge    int
	Public    bool
	Immutable bool
}

// Header renders the Cache-Control value.
func (p CachePolicy) Header() string {
	var b strings.Builder
	if p.Public {
		b.WriteString("public")
	} else {
		b.WriteString("private")
	}
	b.WriteString(", max-age=")
	b.WriteString(strconv.Itoa(p.MaxAge))
	if p.Immutable {
		b.WriteString(", immutable")
	}
	return b.String()
}

// Filename is the suggested download name, e.g. placeholder-800x600.png.
func Filename(r Request, extension string) string {
	return fmt.Sprintf("placeholder-%dx%d.%s", r.Width, r.Height, extension)
}

// ContentDisposition prefixes the filename with the configured disposition
// type. It returns "" when no disposition is configured.
func ContentDisposition(disposition string, r Request, extension string) string {
	if disposition == "" {
		return ""
	}
	return fmt.Sprintf(`%s; filename="%s"`, disposition, Filename(r, extension))
}

// MatchesETag reports whether an If-None-Match header value matches etag.
func MatchesETag(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
