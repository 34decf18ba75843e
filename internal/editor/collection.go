package editor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/photocrop/internal/geometry"
)

// MaxPhotos is the most photos a single post may carry.
const MaxPhotos = 5

var (
	// ErrTooManyPhotos is returned when inserting into a full collection.
	ErrTooManyPhotos = fmt.Errorf("a post holds at most %d photos", MaxPhotos)

	// ErrUnknownPhoto is returned for operations on an id that is not in the
	// collection.
	ErrUnknownPhoto = errors.New("unknown photo id")
)

// PhotoID is the stable identity of a photo within a collection. It is
// assigned once when the photo is added and never recomputed from position.
type PhotoID string

func newPhotoID() PhotoID {
	return PhotoID(uuid.New().String())
}

// PhotoEntry is one photo in the editing collection. SourceSize and
// DisplaySize stay nil until the source provider resolves the pixel
// dimensions; every consumer must tolerate either being absent.
type PhotoEntry struct {
	ID          PhotoID
	SourceRef   string
	SourceSize  *geometry.Size // original pixel dimensions
	DisplaySize *geometry.Size // cover-fit size for the current frame
}

// PhotoCollection is the ordered sequence of photos in a post. Order is the
// only mutable ordering construct: position 0 is always the cover photo, and
// no entry ever changes identity when the order changes. Each entry's
// transform lives in the associated TransformStore under the entry's id, so
// structural mutation never needs to touch it.
type PhotoCollection struct {
	entries    []*PhotoEntry
	transforms *TransformStore
}

// NewPhotoCollection creates an empty collection backed by store.
func NewPhotoCollection(store *TransformStore) *PhotoCollection {
	return &PhotoCollection{transforms: store}
}

// Insert appends a new photo, assigns it a fresh id and gives it a default
// transform. Dimensions are resolved later by the source provider.
func (c *PhotoCollection) Insert(sourceRef string) (PhotoID, error) {
	if len(c.entries) >= MaxPhotos {
		return "", ErrTooManyPhotos
	}
	id := newPhotoID()
	c.entries = append(c.entries, &PhotoEntry{ID: id, SourceRef: sourceRef})
	c.transforms.Set(id, DefaultTransform())
	return id, nil
}

// Remove deletes the photo wherever it currently is, along with its
// transform. An empty collection is a normal state, not an error.
func (c *PhotoCollection) Remove(id PhotoID) error {
	idx := c.IndexOf(id)
	if idx < 0 {
		return ErrUnknownPhoto
	}
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	c.transforms.Remove(id)
	return nil
}

// Move takes the entry at from and reinserts it at to. No id or transform
// changes, so every surviving entry keeps exactly the state it had.
func (c *PhotoCollection) Move(from, to int) error {
	if from < 0 || from >= len(c.entries) || to < 0 || to >= len(c.entries) {
		return fmt.Errorf("move %d -> %d out of range for %d photos", from, to, len(c.entries))
	}
	if from == to {
		return nil
	}
	entry := c.entries[from]
	c.entries = append(c.entries[:from], c.entries[from+1:]...)
	c.entries = append(c.entries[:to], append([]*PhotoEntry{entry}, c.entries[to:]...)...)
	return nil
}

// CoverID returns the id at position 0. Cover status is derived purely from
// order; nothing else stores it.
func (c *PhotoCollection) CoverID() (PhotoID, bool) {
	if len(c.entries) == 0 {
		return "", false
	}
	return c.entries[0].ID, true
}

// IndexOf returns the current position of id, or -1.
func (c *PhotoCollection) IndexOf(id PhotoID) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the entry for id.
func (c *PhotoCollection) Get(id PhotoID) (*PhotoEntry, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	return c.entries[idx], true
}

// Len returns the photo count.
func (c *PhotoCollection) Len() int {
	return len(c.entries)
}

// Entries returns the photos in display order. The slice is a copy; the
// entries are shared.
func (c *PhotoCollection) Entries() []*PhotoEntry {
	out := make([]*PhotoEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
