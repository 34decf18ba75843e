package editor

import (
	"errors"
	"testing"
)

func newTestCollection(t *testing.T, n int) (*PhotoCollection, *TransformStore, []PhotoID) {
	t.Helper()
	store := NewTransformStore()
	coll := NewPhotoCollection(store)
	ids := make([]PhotoID, 0, n)
	for i := 0; i < n; i++ {
		id, err := coll.Insert("photo")
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	return coll, store, ids
}

func TestInsertAssignsUniqueIDsAndDefaultTransforms(t *testing.T) {
	_, store, ids := newTestCollection(t, 3)

	seen := make(map[PhotoID]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate photo id %s", id)
		}
		seen[id] = true
		if got := store.Get(id); got != DefaultTransform() {
			t.Errorf("transform for %s = %+v, want default", id, got)
		}
	}
}

func TestInsertRejectsSixthPhoto(t *testing.T) {
	coll, _, _ := newTestCollection(t, MaxPhotos)
	if _, err := coll.Insert("one too many"); !errors.Is(err, ErrTooManyPhotos) {
		t.Fatalf("expected ErrTooManyPhotos, got %v", err)
	}
	if coll.Len() != MaxPhotos {
		t.Errorf("count = %d after rejected insert, want %d", coll.Len(), MaxPhotos)
	}
}

func TestMoveKeepsTransformsAttached(t *testing.T) {
	coll, store, ids := newTestCollection(t, 3)
	a, b, c := ids[0], ids[1], ids[2]

	marked := Transform{Scale: 2, TranslateX: 10, TranslateY: -4}
	store.Set(a, marked)

	// [a, b, c] -> [b, c, a]
	if err := coll.Move(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}

	order := coll.Entries()
	want := []PhotoID{b, c, a}
	for i, e := range order {
		if e.ID != want[i] {
			t.Fatalf("order after move = %v, want %v", order, want)
		}
	}
	if got := store.Get(a); got != marked {
		t.Errorf("transform for moved photo = %+v, want %+v", got, marked)
	}
}

func TestRemoveCoverPromotesNext(t *testing.T) {
	coll, store, ids := newTestCollection(t, 3)
	a, b, c := ids[0], ids[1], ids[2]

	kept := Transform{Scale: 1.5, TranslateX: 7}
	store.Set(b, kept)

	if err := coll.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}

	cover, ok := coll.CoverID()
	if !ok || cover != b {
		t.Fatalf("cover after removing first photo = %v, want %v", cover, b)
	}
	if got := store.Get(b); got != kept {
		t.Errorf("new cover transform = %+v, want %+v (must not reset)", got, kept)
	}
	if coll.IndexOf(c) != 1 {
		t.Errorf("index of %s = %d, want 1", c, coll.IndexOf(c))
	}
	if store.Len() != 2 {
		t.Errorf("store holds %d transforms, want 2", store.Len())
	}
}

func TestRemoveUnknownID(t *testing.T) {
	coll, _, _ := newTestCollection(t, 1)
	if err := coll.Remove("nope"); !errors.Is(err, ErrUnknownPhoto) {
		t.Fatalf("expected ErrUnknownPhoto, got %v", err)
	}
}

func TestRemoveLastPhotoLeavesEmptyCollection(t *testing.T) {
	coll, _, ids := newTestCollection(t, 1)
	if err := coll.Remove(ids[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("count = %d, want 0", coll.Len())
	}
	if _, ok := coll.CoverID(); ok {
		t.Error("empty collection must not report a cover")
	}
}

func TestMoveOutOfRange(t *testing.T) {
	coll, _, _ := newTestCollection(t, 2)
	for _, m := range [][2]int{{-1, 0}, {0, 2}, {2, 0}} {
		if err := coll.Move(m[0], m[1]); err == nil {
			t.Errorf("move %d -> %d: expected error", m[0], m[1])
		}
	}
}

// Transform continuity: across any sequence of structural mutations, every
// surviving photo keeps exactly the transform it had before.
func TestTransformContinuityUnderMutation(t *testing.T) {
	coll, store, ids := newTestCollection(t, 5)

	want := make(map[PhotoID]Transform)
	for i, id := range ids {
		tr := Transform{Scale: 1 + float64(i)*0.25, TranslateX: float64(i * 3), TranslateY: float64(-i)}
		store.Set(id, tr)
		want[id] = tr
	}

	steps := []func() error{
		func() error { return coll.Move(0, 4) },
		func() error { return coll.Move(3, 1) },
		func() error { err := coll.Remove(ids[2]); delete(want, ids[2]); return err },
		func() error { return coll.Move(2, 0) },
		func() error { err := coll.Remove(ids[4]); delete(want, ids[4]); return err },
		func() error { return coll.Move(1, 2) },
	}

	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for id, tr := range want {
			if got := store.Get(id); got != tr {
				t.Fatalf("step %d: transform for %s = %+v, want %+v", i, id, got, tr)
			}
		}
	}

	if coll.Len() != 3 {
		t.Errorf("count = %d, want 3", coll.Len())
	}
}
