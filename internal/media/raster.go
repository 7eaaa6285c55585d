package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// DefaultJPEGQuality mirrors a 0.8 canvas export quality.
const DefaultJPEGQuality = 80

// rasterize scales a decoded picture onto a surface of the source's native
// size and encodes it as JPEG. The decoded picture may differ from the probed
// size (rotation metadata, anamorphic pixels); the whole picture is always
// fitted to the surface. Empty input yields an empty payload.
func rasterize(raw []byte, width, height, quality int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if width <= 0 || height <= 0 {
		b := src.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	if width <= 0 || height <= 0 {
		return nil, nil
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	surface := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Size() == surface.Bounds().Size() {
		draw.Draw(surface, surface.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(surface, surface.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
