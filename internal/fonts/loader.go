package fonts

import (
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Loader loads the font for one ladder entry.
type Loader interface {
	Load(id ID, size int) (*Handle, error)
}

// OpenTypeLoader loads TTF/OTF data from Path, or the embedded Go Regular
// font when Path is empty. The file is read on every Load; callers cache handles.
type OpenTypeLoader struct {
	Path string
}

func NewOpenTypeLoader(path string) *OpenTypeLoader {
	return &OpenTypeLoader{Path: path}
}

func (l *OpenTypeLoader) Load(id ID, size int) (*Handle, error) {
	data := goregular.TTF
	if l.Path != "" {
		custom, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", l.Path, err)
		}
		data = custom
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font for %s: %w", id, err)
	}

	return newHandle(id, size, parsed)
}
