package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Encode writes img to w in the given format: webp, tga or png.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
}

// Save writes img to dir/frame_NNNNNN.<format> and returns the path.
func Save(img image.Image, dir string, frame int32, format string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame_%06d.%s", frame, format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return path, nil
}
