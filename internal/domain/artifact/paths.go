package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	worldSaveExt = ".wld"
	baseMapTag   = "_working"
	servedTag    = "_served"
	defaultExt   = ".png"
)

var (
	ErrInvalidWorldSave = errors.New("world save is not a .wld file")
	ErrWorldSaveMissing = errors.New("world save not found")
)

// Paths is the fixed set of artifact locations for one world. It is derived
// once at startup and never changes while the process runs.
type Paths struct {
	WorldSave string
	BaseMap   string
	Overlay   string
	Served    string
}

func DerivePaths(worldSave, output string) (Paths, error) {
	worldSave = strings.TrimSpace(worldSave)
	if worldSave == "" || !strings.EqualFold(filepath.Ext(worldSave), worldSaveExt) {
		return Paths{}, fmt.Errorf("%w: %q", ErrInvalidWorldSave, worldSave)
	}
	name := WorldName(worldSave)

	output = strings.TrimSpace(output)
	if output == "" {
		output = name + defaultExt
	}
	ext := filepath.Ext(output)
	if ext == "" {
		ext = defaultExt
		output += ext
	}

	return Paths{
		WorldSave: worldSave,
		BaseMap:   filepath.Join(filepath.Dir(output), name+baseMapTag+defaultExt),
		Overlay:   output,
		Served:    strings.TrimSuffix(output, ext) + servedTag + ext,
	}, nil
}

// WorldName is the save file name up to its first dot.
func WorldName(worldSave string) string {
	base := filepath.Base(worldSave)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
