// Package editor implements the multi-photo crop-and-reorder engine: an
// ordered photo collection with per-photo display transforms driven by
// pinch/pan gestures, and a drag state machine for thumbnail reordering.
// Per-photo state is keyed by stable photo identity, never by position, so
// insert, delete and reorder cannot detach a photo from its transform.
package editor

import (
	"github.com/example/photocrop/internal/geometry"
)

// Session owns all editing state for one post: the ordered collection, the
// transform store and the drag-reorder machine. It is single-writer — every
// method is expected to run on the goroutine delivering gesture events — and
// no method blocks or touches I/O, because pinch/pan updates arrive once per
// display frame.
type Session struct {
	frame      geometry.Size
	transforms *TransformStore
	collection *PhotoCollection
	drag       *DragReorderController

	// Raw accumulated pan offsets for gestures currently in flight. The
	// stored transform holds the rubber-banded display value; the raw value
	// is what the finger actually travelled, so resistance doesn't compound
	// across updates.
	pans map[PhotoID]*panState
}

type panState struct {
	rawX float64
	rawY float64
}

// NewSession creates an empty editing session. frameW/frameH is the crop
// window in display points, itemExtent the thumbnail slot size of the
// reorder strip.
func NewSession(frameW, frameH, itemExtent float64) *Session {
	store := NewTransformStore()
	coll := NewPhotoCollection(store)
	return &Session{
		frame:      geometry.Size{W: frameW, H: frameH},
		transforms: store,
		collection: coll,
		drag:       NewDragReorderController(coll, itemExtent),
		pans:       make(map[PhotoID]*panState),
	}
}

// Frame returns the current crop window size.
func (s *Session) Frame() geometry.Size {
	return s.frame
}

// SetFrame resizes the crop window after a layout change. Every cached
// display size is invalidated and recomputed from the new frame.
func (s *Session) SetFrame(w, h float64) {
	s.frame = geometry.Size{W: w, H: h}
	for _, e := range s.collection.Entries() {
		e.DisplaySize = nil
		s.refit(e)
	}
}

// AddPhoto appends a photo by source reference. The returned id is the
// photo's identity for the rest of the session. Pixel dimensions arrive
// later via ResolveSourceSize.
func (s *Session) AddPhoto(sourceRef string) (PhotoID, error) {
	return s.collection.Insert(sourceRef)
}

// ResolveSourceSize records the pixel dimensions reported by the source
// provider and derives the photo's cover-fit display size.
func (s *Session) ResolveSourceSize(id PhotoID, w, h float64) error {
	entry, ok := s.collection.Get(id)
	if !ok {
		return ErrUnknownPhoto
	}
	entry.SourceSize = &geometry.Size{W: w, H: h}
	s.refit(entry)
	return nil
}

// refit recomputes the cover-fit display size where both the frame and the
// source dimensions are known.
func (s *Session) refit(e *PhotoEntry) {
	if e.SourceSize == nil || s.frame.W <= 0 || s.frame.H <= 0 {
		return
	}
	w, h := geometry.CoverFit(e.SourceSize.W, e.SourceSize.H, s.frame.W, s.frame.H)
	e.DisplaySize = &geometry.Size{W: w, H: h}
}

// DeletePhoto removes a photo and its transform. Deleting the photo being
// dragged cancels the drag. The count reaching zero is a normal state; the
// presentation layer decides whether that closes the flow.
func (s *Session) DeletePhoto(id PhotoID) error {
	if sess, ok := s.drag.Session(); ok && sess.DraggedID == id {
		s.drag.Cancel()
	}
	delete(s.pans, id)
	return s.collection.Remove(id)
}

// Transform returns the current transform for id (the default if the photo
// was never touched).
func (s *Session) Transform(id PhotoID) Transform {
	return s.transforms.Get(id)
}

// Entries returns the photos in display order.
func (s *Session) Entries() []*PhotoEntry {
	return s.collection.Entries()
}

// Len returns the photo count.
func (s *Session) Len() int {
	return s.collection.Len()
}

// CoverID returns the id of the cover photo, i.e. whatever is first.
func (s *Session) CoverID() (PhotoID, bool) {
	return s.collection.CoverID()
}

// maxTranslation returns the translation bounds for id at the given scale.
// Unknown display size means no verified slack, so the bounds collapse to
// zero and all movement is rubber-banded.
func (s *Session) maxTranslation(id PhotoID, scale float64) (float64, float64) {
	entry, ok := s.collection.Get(id)
	if !ok || entry.DisplaySize == nil {
		return 0, 0
	}
	return geometry.MaxTranslation(scale, entry.DisplaySize.W, entry.DisplaySize.H, s.frame.W, s.frame.H)
}

// PinchUpdate applies a focal scale delta. The live scale is clamped hard
// to [1, MaxScale]; translation keeps its value until the gesture ends.
func (s *Session) PinchUpdate(id PhotoID, focalScaleDelta float64) {
	if _, ok := s.collection.Get(id); !ok {
		return
	}
	t := s.transforms.Get(id)
	t.Scale = geometry.Clamp(t.Scale*focalScaleDelta, 1, MaxScale)
	s.transforms.Set(id, t)
}

// PinchEnd commits the pinch: the translation snaps back inside the bounds
// valid for the final scale. The committed value is the target an animation
// would ease toward.
func (s *Session) PinchEnd(id PhotoID) {
	if _, ok := s.collection.Get(id); !ok {
		return
	}
	s.settle(id)
}

// PanUpdate applies a translation delta. The raw finger travel accumulates
// per gesture, and the stored value is the rubber-banded projection of it,
// which gives the springy feel past the boundary.
func (s *Session) PanUpdate(id PhotoID, dx, dy float64) {
	if _, ok := s.collection.Get(id); !ok {
		return
	}
	t := s.transforms.Get(id)
	ps, ok := s.pans[id]
	if !ok {
		ps = &panState{rawX: t.TranslateX, rawY: t.TranslateY}
		s.pans[id] = ps
	}
	ps.rawX += dx
	ps.rawY += dy

	maxX, maxY := s.maxTranslation(id, t.Scale)
	t.TranslateX = geometry.RubberBand(ps.rawX, maxX)
	t.TranslateY = geometry.RubberBand(ps.rawY, maxY)
	s.transforms.Set(id, t)
}

// PanEnd commits the pan: the translation is clamped back inside the bounds
// and the gesture accumulator is discarded.
func (s *Session) PanEnd(id PhotoID) {
	if _, ok := s.collection.Get(id); !ok {
		return
	}
	s.settle(id)
}

// settle clamps the stored translation into the valid range for the current
// scale and ends any live pan accumulation.
func (s *Session) settle(id PhotoID) {
	t := s.transforms.Get(id)
	maxX, maxY := s.maxTranslation(id, t.Scale)
	t.TranslateX = geometry.Clamp(t.TranslateX, -maxX, maxX)
	t.TranslateY = geometry.Clamp(t.TranslateY, -maxY, maxY)
	s.transforms.Set(id, t)
	delete(s.pans, id)
}

// DragStart begins reordering the given thumbnail.
func (s *Session) DragStart(id PhotoID) error {
	return s.drag.Start(id)
}

// DragUpdate forwards a pointer delta to the reorder machine.
func (s *Session) DragUpdate(along, cross float64) {
	s.drag.Update(along, cross)
}

// DragEnd releases the drag, committing at most one move. Reports whether
// the order changed.
func (s *Session) DragEnd(along, cross float64) bool {
	return s.drag.End(along, cross)
}

// DragCancel abandons an in-flight drag without reordering.
func (s *Session) DragCancel() {
	s.drag.Cancel()
}

// DragSession exposes the transient drag state for rendering the strip.
func (s *Session) DragSession() (DragSession, bool) {
	return s.drag.Session()
}
