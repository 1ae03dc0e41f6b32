package painter

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cartographer/internal/app/ports"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultMarkerSize = 9
	DefaultTileScale  = 1
)

var (
	markerFill    = color.RGBA{0xE7, 0x4C, 0x3C, 0xFF}
	markerOutline = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	labelColor    = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	labelShadow   = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

// Painter draws a marker and name label for every online player on top of
// the base map and writes the result to Output.
type Painter struct {
	BaseMap   string
	Output    string
	Positions ports.PositionSource
	// TileScale is the number of image pixels per world tile.
	TileScale  int
	MarkerSize int
}

func (p Painter) ProduceMap(ctx context.Context) error {
	players, err := p.Positions.Positions(ctx)
	if err != nil {
		return fmt.Errorf("read player positions: %w", err)
	}
	base, err := decodeImage(p.BaseMap)
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx(), base.Bounds().Dy()))
	draw.Draw(img, img.Bounds(), base, base.Bounds().Min, draw.Src)
	for _, player := range players {
		p.drawPlayer(img, player)
	}
	return writeImage(p.Output, img)
}

func (p Painter) drawPlayer(img *image.RGBA, player ports.PlayerPosition) {
	scale := p.TileScale
	if scale <= 0 {
		scale = DefaultTileScale
	}
	size := p.MarkerSize
	if size <= 0 {
		size = DefaultMarkerSize
	}
	cx, cy := player.X*scale, player.Y*scale
	if !image.Pt(cx, cy).In(img.Bounds()) {
		return
	}
	half := size / 2
	x1, y1, x2, y2 := cx-half, cy-half, cx+half+1, cy+half+1
	fillRect(img, x1, y1, x2, y2, markerFill)
	strokeRect(img, x1, y1, x2, y2, markerOutline, 1)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, player.Name).Ceil()
	tx := cx - textWidth/2
	ty := y1 - 3
	if ty-face.Metrics().Ascent.Ceil() < 0 {
		ty = y2 + face.Metrics().Ascent.Ceil() + 1
	}
	drawText(img, player.Name, tx+1, ty+1, labelShadow, face)
	drawText(img, player.Name, tx, ty, labelColor, face)
}

func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	draw.Draw(img, image.Rect(x1, y1, x2, y2), &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func strokeRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, width int) {
	for i := 0; i < width; i++ {
		top := image.Rect(x1+i, y1+i, x2-i, y1+i+1)
		bottom := image.Rect(x1+i, y2-i-1, x2-i, y2-i)
		left := image.Rect(x1+i, y1+i, x1+i+1, y2-i)
		right := image.Rect(x2-i-1, y1+i, x2-i, y2-i)
		for _, r := range []image.Rectangle{top, bottom, left, right} {
			draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Over)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, c color.RGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base map: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode base map: %w", err)
	}
	return img, nil
}

func encoderFor(path string) func(io.Writer, image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		}
	default:
		return png.Encode
	}
}

// writeImage encodes into a temp file beside path and renames it into place.
func writeImage(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create overlay: %w", err)
	}
	tmpPath := tmp.Name()
	if err := encoderFor(path)(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode overlay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close overlay: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod overlay: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move overlay into place: %w", err)
	}
	return nil
}
