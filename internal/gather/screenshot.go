package gather

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"
)

// Screenshots stay legible at low fidelity and upload much faster.
const jpegQuality = 15

// Screenshotter captures the primary display to a low-fidelity JPEG at a
// well-known path.
type Screenshotter struct {
	// Path overrides the destination; a temp-dir default when empty.
	Path string
}

// Capture grabs the primary display and returns the image path.
func (s Screenshotter) Capture() (string, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return "", fmt.Errorf("no active display")
	}

	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(0))
	if err != nil {
		return "", fmt.Errorf("capture display: %w", err)
	}

	path := s.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "codevox-screenshot.jpg")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create screenshot file: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close screenshot file: %w", err)
	}
	return path, nil
}
