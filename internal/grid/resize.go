package grid

// Drag resizing. A session spans pointer-down on a header separator to
// pointer-up. Only the left column of the pair gets an explicit width;
// the right neighbor reflows implicitly. Width commits are coalesced to
// one per frame by the grid's scheduler.

type resizeSession struct {
	leftKey, rightKey string
	startXPx          float64
	leftStartPx       float64
}

type resizer struct {
	enabled bool
	session *resizeSession

	pendingPx  float64
	hasPending bool
}

func newResizer(enabled bool) *resizer {
	return &resizer{enabled: enabled}
}

func (r *resizer) active() bool { return r.session != nil }

// startDrag opens a session for the column pair around a separator.
// Rejected when resizing is disabled or either neighbor is fixed; the
// gesture then falls through untouched.
func (r *resizer) startDrag(cols []Column, leftKey, rightKey string, clientXPx, leftWidthPx float64) bool {
	if !r.enabled {
		return false
	}
	li := columnIndex(cols, leftKey)
	ri := columnIndex(cols, rightKey)
	if li < 0 || ri < 0 || cols[li].Fixed || cols[ri].Fixed {
		return false
	}
	r.session = &resizeSession{
		leftKey:     leftKey,
		rightKey:    rightKey,
		startXPx:    clientXPx,
		leftStartPx: leftWidthPx,
	}
	r.hasPending = false
	return true
}

// move records the next left-column width for the in-flight session,
// clamped to the column's bounds. The commit happens on the next frame.
func (r *resizer) move(cols []Column, m Metrics, viewportPx, clientXPx float64) bool {
	s := r.session
	if s == nil {
		return false
	}
	i := columnIndex(cols, s.leftKey)
	if i < 0 {
		return false
	}
	next := s.leftStartPx + (clientXPx - s.startXPx)
	next = cols[i].clampPx(m, viewportPx, next)
	r.pendingPx = next
	r.hasPending = true
	return true
}

// commitPending applies the latest pending width and marks the column
// user-resized. Called once per frame and once more on pointer-up.
func (r *resizer) commitPending(wm *widthModel) bool {
	s := r.session
	if s == nil || !r.hasPending {
		return false
	}
	r.hasPending = false
	changed := wm.setOne(s.leftKey, r.pendingPx, SourceUserResized)
	wm.markManual(s.leftKey)
	return changed
}

// endDrag commits any still-pending frame update and destroys the
// session.
func (r *resizer) endDrag(wm *widthModel) bool {
	changed := r.commitPending(wm)
	r.session = nil
	r.hasPending = false
	return changed
}

// cancel drops the session without committing; used on unmount.
func (r *resizer) cancel() {
	r.session = nil
	r.hasPending = false
}
