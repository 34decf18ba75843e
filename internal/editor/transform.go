package editor

// MaxScale caps pinch zoom. Scale 1.0 is the cover-fit baseline.
const MaxScale = 3.0

// Transform is the scale + translation describing how a photo is displayed
// relative to its cover-fit size. Translation is measured from the frame
// center in display points.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// DefaultTransform is the untouched state: cover-fit, centered.
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// TransformStore maps photo ids to transforms. Keys are identities, never
// positions, so inserting, removing or moving other photos can't disturb an
// entry — there is nothing to renumber.
type TransformStore struct {
	transforms map[PhotoID]Transform
}

// NewTransformStore creates an empty store.
func NewTransformStore() *TransformStore {
	return &TransformStore{transforms: make(map[PhotoID]Transform)}
}

// Get returns the transform for id, or the default if none was ever set.
func (s *TransformStore) Get(id PhotoID) Transform {
	if t, ok := s.transforms[id]; ok {
		return t
	}
	return DefaultTransform()
}

// Set stores the transform for id.
func (s *TransformStore) Set(id PhotoID, t Transform) {
	s.transforms[id] = t
}

// Remove drops the transform for id.
func (s *TransformStore) Remove(id PhotoID) {
	delete(s.transforms, id)
}

// Len reports how many photos currently have a transform.
func (s *TransformStore) Len() int {
	return len(s.transforms)
}
