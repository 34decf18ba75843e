// Package export turns a finished editing session into output images. For
// every photo, in final order, it converts the display transform into a
// source-pixel crop rectangle and hands it to the external transcoder.
// Export is best-effort per photo: a missing dimension, a degenerate crop,
// a transcode failure or a cancellation falls back to the original source
// reference for that slot only, so the output always has the same length
// and order as the collection.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/example/photocrop/internal/editor"
	"github.com/example/photocrop/internal/geometry"
)

// DefaultConcurrency bounds how many transcode calls run at once.
const DefaultConcurrency = 2

// ErrMissingDimensions marks a photo whose source or display size had not
// resolved by export time. The photo is not yet croppable; its slot keeps
// the original reference.
var ErrMissingDimensions = errors.New("source or display size not yet resolved")

// Transcoder is the external collaborator that re-encodes a source image
// cropped to rect, optionally resized down to maxWidth. It may fail; the
// exporter treats failure and cancellation alike.
type Transcoder interface {
	Transcode(ctx context.Context, sourceRef string, crop image.Rectangle, maxWidth int) (string, error)
}

// Options tune a single export run.
type Options struct {
	MaxWidth    int // optional resize hint passed to the transcoder, 0 = none
	Concurrency int // parallel transcode calls, 0 = DefaultConcurrency
	OnProgress  func(done, total int)
}

// Result is the ordered outcome of an export. Refs is 1:1 with the final
// photo order; slots that fell back hold the original source reference.
// CoverIndex is always 0: the cover is whatever photo ended up first.
type Result struct {
	Refs       []string `json:"refs"`
	CoverIndex int      `json:"cover_index"`
	Errors     []error  `json:"-"`
}

// Exporter drives the transcoder for a whole session.
type Exporter struct {
	transcoder Transcoder
}

// New creates an exporter around the given transcoder.
func New(t Transcoder) *Exporter {
	return &Exporter{transcoder: t}
}

// item is one photo that actually goes through the transcoder.
type item struct {
	index int
	ref   string
	crop  image.Rectangle
}

// itemResult carries a finished transcode back to its slot.
type itemResult struct {
	index int
	ref   string
	err   error
}

// Export processes every photo of the session in its final order. It blocks
// until all outcomes are gathered, so Refs always corresponds slot-for-slot
// to the input regardless of completion order.
func (e *Exporter) Export(ctx context.Context, sess *editor.Session, opts Options) *Result {
	entries := sess.Entries()
	frame := sess.Frame()

	result := &Result{
		Refs:       make([]string, len(entries)),
		CoverIndex: 0,
	}

	// First pass: resolve crop rectangles synchronously and decide which
	// photos can be transcoded at all. Every photo is cropped, even visually
	// untouched ones — cover-fit already hides part of the source.
	var work []item
	for i, entry := range entries {
		result.Refs[i] = entry.SourceRef

		if entry.SourceSize == nil || entry.DisplaySize == nil {
			log.Printf("export: photo %s has unresolved dimensions, keeping original", entry.ID)
			result.Errors = append(result.Errors, fmt.Errorf("photo %s: %w", entry.ID, ErrMissingDimensions))
			continue
		}

		t := sess.Transform(entry.ID)
		rect, err := geometry.CropRect(t.Scale, t.TranslateX, t.TranslateY, *entry.DisplaySize, *entry.SourceSize, frame)
		if err != nil {
			log.Printf("export: photo %s: %v, keeping original", entry.ID, err)
			result.Errors = append(result.Errors, fmt.Errorf("photo %s: %w", entry.ID, err))
			continue
		}

		work = append(work, item{index: i, ref: entry.SourceRef, crop: rect})
	}

	if len(work) == 0 {
		return result
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultsChan := make(chan itemResult, len(work))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, it := range work {
		wg.Add(1)
		go func(it item) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				resultsChan <- itemResult{index: it.index, err: err}
				return
			}

			out, err := e.transcoder.Transcode(ctx, it.ref, it.crop, opts.MaxWidth)
			resultsChan <- itemResult{index: it.index, ref: out, err: err}
		}(it)
	}

	wg.Wait()
	close(resultsChan)

	done := 0
	for r := range resultsChan {
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(work))
		}
		if r.err != nil {
			// Fallback: the slot keeps the original source reference.
			log.Printf("export: transcode failed for slot %d: %v, keeping original", r.index, r.err)
			result.Errors = append(result.Errors, fmt.Errorf("slot %d: %w", r.index, r.err))
			continue
		}
		result.Refs[r.index] = r.ref
	}

	return result
}
