package transcode

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Thumbnailer renders the small cover-cropped previews shown in the reorder
// strip.
type Thumbnailer struct {
	Width   int
	Height  int
	Quality int
}

// NewThumbnailer creates a thumbnailer with the given slot size.
func NewThumbnailer(width, height int) *Thumbnailer {
	return &Thumbnailer{Width: width, Height: height, Quality: 75}
}

// Render loads the source and returns a center-cropped JPEG thumbnail that
// fills the slot, the same cover behavior the crop window uses.
func (t *Thumbnailer) Render(sourceRef string) ([]byte, error) {
	img, err := imaging.Open(sourceRef)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", sourceRef, err)
	}

	thumb := imaging.Fill(img, t.Width, t.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(t.Quality)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
