package editor

import (
	"math"
	"testing"

	"github.com/example/photocrop/internal/geometry"
)

func newTestSession(t *testing.T) (*Session, PhotoID) {
	t.Helper()
	s := NewSession(300, 300, testItemExtent)
	id, err := s.AddPhoto("photo.jpg")
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if err := s.ResolveSourceSize(id, 2000, 1000); err != nil {
		t.Fatalf("resolve size: %v", err)
	}
	return s, id
}

func TestResolveSourceSizeDerivesCoverFit(t *testing.T) {
	s, id := newTestSession(t)

	entry, ok := s.collection.Get(id)
	if !ok {
		t.Fatal("entry missing")
	}
	if entry.SourceSize == nil || entry.SourceSize.W != 2000 || entry.SourceSize.H != 1000 {
		t.Fatalf("source size = %+v", entry.SourceSize)
	}
	// 2000x1000 into a 300x300 frame covers by height: 600x300.
	if entry.DisplaySize == nil || entry.DisplaySize.W != 600 || entry.DisplaySize.H != 300 {
		t.Fatalf("display size = %+v, want 600x300", entry.DisplaySize)
	}
}

func TestSetFrameRecomputesDisplaySizes(t *testing.T) {
	s, id := newTestSession(t)

	s.SetFrame(150, 300)
	entry, _ := s.collection.Get(id)
	// 2:1 source in a 1:2 frame covers by height: 600x300.
	if entry.DisplaySize == nil || entry.DisplaySize.W != 600 || entry.DisplaySize.H != 300 {
		t.Fatalf("display size after frame change = %+v, want 600x300", entry.DisplaySize)
	}
	if s.Frame().W != 150 || s.Frame().H != 300 {
		t.Errorf("frame = %+v", s.Frame())
	}
}

func TestPinchScaleIsClamped(t *testing.T) {
	s, id := newTestSession(t)

	s.PinchUpdate(id, 1.5)
	if got := s.Transform(id).Scale; math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("scale = %v, want 1.5", got)
	}

	// Zooming far past the cap sticks at MaxScale.
	for i := 0; i < 10; i++ {
		s.PinchUpdate(id, 1.5)
	}
	if got := s.Transform(id).Scale; got != MaxScale {
		t.Errorf("scale = %v, want %v", got, MaxScale)
	}

	// Zooming out never goes below the cover-fit baseline.
	for i := 0; i < 20; i++ {
		s.PinchUpdate(id, 0.5)
	}
	if got := s.Transform(id).Scale; got != 1 {
		t.Errorf("scale = %v, want 1", got)
	}
}

func TestPanWithinBoundsIsIdentity(t *testing.T) {
	s, id := newTestSession(t)

	// Display 600x300 in a 300 frame leaves ±150 horizontal slack.
	s.PanUpdate(id, 100, 0)
	tr := s.Transform(id)
	if tr.TranslateX != 100 || tr.TranslateY != 0 {
		t.Fatalf("transform = %+v, want tx 100", tr)
	}

	s.PanEnd(id)
	if got := s.Transform(id).TranslateX; got != 100 {
		t.Errorf("tx after end = %v, want 100 (in-bounds pan must commit as-is)", got)
	}
}

func TestPanPastBoundIsRubberBandedThenSnapsBack(t *testing.T) {
	s, id := newTestSession(t)

	// 250 raw travel against a 150 bound: excess 100 compressed by 0.3.
	s.PanUpdate(id, 250, 0)
	tr := s.Transform(id)
	want := 150 + 100*geometry.Resistance
	if math.Abs(tr.TranslateX-want) > 1e-9 {
		t.Fatalf("tx during drag = %v, want %v", tr.TranslateX, want)
	}

	// Resistance must not compound across updates: 250 in one step or in
	// five steps lands on the same display value.
	s2, id2 := newTestSession(t)
	for i := 0; i < 5; i++ {
		s2.PanUpdate(id2, 50, 0)
	}
	if got := s2.Transform(id2).TranslateX; math.Abs(got-want) > 1e-9 {
		t.Fatalf("tx after stepped drag = %v, want %v", got, want)
	}

	// Vertical has zero slack, everything is resisted.
	if got := tr.TranslateY; got != 0 {
		t.Errorf("ty = %v, want 0", got)
	}

	s.PanEnd(id)
	if got := s.Transform(id).TranslateX; got != 150 {
		t.Errorf("tx after end = %v, want snapped to 150", got)
	}
}

func TestPinchEndReclampsTranslation(t *testing.T) {
	s, id := newTestSession(t)

	// Zoom in, pan to the edge of the zoomed bounds, then zoom back out.
	s.PinchUpdate(id, 2)
	s.PinchEnd(id)
	s.PanUpdate(id, 400, 0) // bound at scale 2 is (1200-300)/2 = 450
	s.PanEnd(id)
	if got := s.Transform(id).TranslateX; got != 400 {
		t.Fatalf("tx = %v, want 400", got)
	}

	s.PinchUpdate(id, 0.5)
	s.PinchEnd(id)
	// Back at scale 1 the bound is 150 again.
	if got := s.Transform(id).TranslateX; got != 150 {
		t.Errorf("tx after zoom-out = %v, want 150", got)
	}
}

func TestGesturesOnPhotoWithoutDimensions(t *testing.T) {
	s := NewSession(300, 300, testItemExtent)
	id, err := s.AddPhoto("pending.jpg")
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}

	// No dimensions yet: bounds collapse to zero, so pans resist and ends
	// snap home, but nothing panics and scale still works.
	s.PanUpdate(id, 100, 50)
	tr := s.Transform(id)
	if math.Abs(tr.TranslateX-100*geometry.Resistance) > 1e-9 {
		t.Errorf("tx = %v, want fully resisted %v", tr.TranslateX, 100*geometry.Resistance)
	}
	s.PanEnd(id)
	if got := s.Transform(id); got.TranslateX != 0 || got.TranslateY != 0 {
		t.Errorf("transform after end = %+v, want centered", got)
	}

	s.PinchUpdate(id, 2)
	if got := s.Transform(id).Scale; got != 2 {
		t.Errorf("scale = %v, want 2", got)
	}
}

func TestGesturesOnUnknownPhotoAreIgnored(t *testing.T) {
	s, _ := newTestSession(t)
	s.PinchUpdate("ghost", 2)
	s.PanUpdate("ghost", 10, 10)
	s.PinchEnd("ghost")
	s.PanEnd("ghost")
	if s.transforms.Len() != 1 {
		t.Errorf("store holds %d transforms, want 1", s.transforms.Len())
	}
}

func TestDeleteDraggedPhotoCancelsDrag(t *testing.T) {
	s := NewSession(300, 300, testItemExtent)
	var ids []PhotoID
	for i := 0; i < 3; i++ {
		id, err := s.AddPhoto("p")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, id)
	}

	if err := s.DragStart(ids[0]); err != nil {
		t.Fatalf("drag start: %v", err)
	}
	if err := s.DeletePhoto(ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.DragSession(); ok {
		t.Error("drag session survived deletion of the dragged photo")
	}
	if s.Len() != 2 {
		t.Errorf("count = %d, want 2", s.Len())
	}
	cover, _ := s.CoverID()
	if cover != ids[1] {
		t.Errorf("cover = %v, want %v", cover, ids[1])
	}
}

func TestDragEndThroughSessionReorders(t *testing.T) {
	s := NewSession(300, 300, testItemExtent)
	var ids []PhotoID
	for i := 0; i < 3; i++ {
		id, _ := s.AddPhoto("p")
		ids = append(ids, id)
	}

	if err := s.DragStart(ids[2]); err != nil {
		t.Fatalf("drag start: %v", err)
	}
	s.DragUpdate(-2*testItemExtent, 0)
	if !s.DragEnd(-2*testItemExtent, 0) {
		t.Fatal("drag end did not reorder")
	}
	cover, _ := s.CoverID()
	if cover != ids[2] {
		t.Errorf("cover = %v, want dragged photo %v", cover, ids[2])
	}
}
