// Package transcode implements the image transcoder the exporter calls:
// decode, crop to a source-pixel rectangle, optionally resize down, and
// re-encode as JPEG. Source references are file paths.
package transcode

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is the JPEG quality for re-encoded output.
const DefaultQuality = 85

// FileTranscoder reads source images from disk and writes cropped JPEG
// output into OutDir. It implements export.Transcoder.
type FileTranscoder struct {
	OutDir  string
	Quality int
}

// NewFileTranscoder creates a transcoder writing into outDir. quality <= 0
// falls back to DefaultQuality.
func NewFileTranscoder(outDir string, quality int) *FileTranscoder {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &FileTranscoder{OutDir: outDir, Quality: quality}
}

// Transcode crops the source image to crop (source pixel space), resizes the
// result down to maxWidth when it is wider, and writes a JPEG. It returns
// the output file path.
func (t *FileTranscoder) Transcode(ctx context.Context, sourceRef string, crop image.Rectangle, maxWidth int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(sourceRef)
	if err != nil {
		return "", fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", filepath.Base(sourceRef), err)
	}

	crop = crop.Intersect(img.Bounds())
	if crop.Empty() {
		return "", fmt.Errorf("crop %v lies outside image bounds %v", crop, img.Bounds())
	}

	out := transform.Crop(img, crop)
	if maxWidth > 0 && out.Bounds().Dx() > maxWidth {
		out = resizeToWidth(out, maxWidth)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	outPath := t.outputPath(sourceRef)
	dst, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating output: %w", err)
	}
	if err := jpeg.Encode(dst, out, &jpeg.Options{Quality: t.Quality}); err != nil {
		dst.Close()
		return "", fmt.Errorf("encoding output: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing output: %w", err)
	}

	return outPath, nil
}

// resizeToWidth scales the image down to the given width, preserving aspect
// ratio, with CatmullRom resampling.
func resizeToWidth(img *image.RGBA, width int) *image.RGBA {
	bounds := img.Bounds()
	height := int(float64(bounds.Dy()) * float64(width) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}
	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// outputPath derives a collision-free output name from the source file name.
func (t *FileTranscoder) outputPath(sourceRef string) string {
	base := strings.TrimSuffix(filepath.Base(sourceRef), filepath.Ext(sourceRef))
	return filepath.Join(t.OutDir, fmt.Sprintf("%s-%s.jpg", base, uuid.New().String()[:8]))
}
