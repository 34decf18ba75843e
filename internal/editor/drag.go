package editor

import "math"

// DragState is the lifecycle state of the reorder machine.
type DragState int

// Drag lifecycle states.
const (
	DragIdle DragState = iota
	DragActive
	DragCommitting
)

// CrossAxisTolerance is how far (in display points) a thumbnail may be
// pulled off the strip's axis before the pending reorder becomes a no-op.
const CrossAxisTolerance = 48.0

// moveThreshold is the fraction of an item extent a drag must cross before
// the target index starts moving.
const moveThreshold = 0.5

// DragSession is the transient state of one thumbnail drag. It exists only
// between Start and End/Cancel.
type DragSession struct {
	DraggedID     PhotoID
	OriginalIndex int
	TargetIndex   int
}

// DragReorderController turns pointer-drag events into at most one Move on
// the collection, committed on release. All intermediate target computation
// is pure, so the same event sequence always replays to the same result.
type DragReorderController struct {
	collection *PhotoCollection
	itemExtent float64

	state   DragState
	session *DragSession
}

// NewDragReorderController creates a controller for the given thumbnail
// strip geometry. itemExtent is the along-axis size of one thumbnail slot.
func NewDragReorderController(c *PhotoCollection, itemExtent float64) *DragReorderController {
	return &DragReorderController{collection: c, itemExtent: itemExtent}
}

// State returns the current lifecycle state.
func (d *DragReorderController) State() DragState {
	return d.state
}

// Session returns a copy of the active drag session, if any.
func (d *DragReorderController) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}

// Start begins dragging the given thumbnail. A drag already in progress is
// cancelled first.
func (d *DragReorderController) Start(id PhotoID) error {
	if d.state != DragIdle {
		d.Cancel()
	}
	idx := d.collection.IndexOf(id)
	if idx < 0 {
		return ErrUnknownPhoto
	}
	d.state = DragActive
	d.session = &DragSession{DraggedID: id, OriginalIndex: idx, TargetIndex: idx}
	return nil
}

// Update recomputes the pending target position from the pointer delta.
// along is the displacement along the strip axis, cross perpendicular to it.
// Pulling the thumbnail past the cross-axis tolerance resets the target to
// the original index without leaving the drag.
func (d *DragReorderController) Update(along, cross float64) {
	if d.state != DragActive || d.session == nil {
		return
	}
	d.session.TargetIndex = d.targetFor(along, cross)
}

// targetFor is the pure core of the state machine: the index the dragged
// thumbnail would land on for a given pointer delta.
func (d *DragReorderController) targetFor(along, cross float64) int {
	if math.Abs(cross) > CrossAxisTolerance {
		return d.session.OriginalIndex
	}
	if d.itemExtent <= 0 || math.Abs(along) < d.itemExtent*moveThreshold {
		return d.session.TargetIndex
	}
	offset := int(math.Round(along / d.itemExtent))
	target := d.session.OriginalIndex + offset
	if target < 0 {
		target = 0
	}
	if last := d.collection.Len() - 1; target > last {
		target = last
	}
	return target
}

// End releases the drag. The single Move happens here, and only when the
// final target differs from the original index and the thumbnail was still
// within the cross-axis tolerance at release. Reports whether the
// collection changed.
func (d *DragReorderController) End(along, cross float64) bool {
	if d.state != DragActive || d.session == nil {
		return false
	}
	d.state = DragCommitting
	moved := false
	if math.Abs(cross) <= CrossAxisTolerance {
		target := d.targetFor(along, cross)
		if target != d.session.OriginalIndex {
			moved = d.collection.Move(d.session.OriginalIndex, target) == nil
		}
	}
	d.session = nil
	d.state = DragIdle
	return moved
}

// Cancel abandons the drag without committing, e.g. when the owning view
// disappears mid-gesture.
func (d *DragReorderController) Cancel() {
	d.session = nil
	d.state = DragIdle
}
