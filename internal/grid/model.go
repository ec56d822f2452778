package grid

// Row is a single data item. Key must be stable and unique across renders;
// the grid stores identity exclusively by key and re-derives indices
// against the live provider, so virtualization and data churn can never
// leave a stale index behind.
type Row interface {
	Key() string
}

// List provides windowed access to rows. Implementations should be
// efficient for large datasets (tens of thousands of rows), serving only
// the requested slices.
type List interface {
	Len() int
	// Lines returns up to num rows starting at top.
	Lines(top, num int) []Row
	// Find returns the absolute index and row for a key, if present.
	Find(key string) (int, Row, bool)
}

// MapRow is a reusable row backed by a field map, convenient for tests and
// ad-hoc sources.
type MapRow struct {
	ID     string
	Fields map[string]string
}

func (r MapRow) Key() string { return r.ID }

// Field returns the named field or "".
func (r MapRow) Field(name string) string { return r.Fields[name] }

// SliceList is a slice-backed List with copy-on-mutate semantics.
type SliceList struct {
	rows  []Row
	index map[string]int
}

func NewSliceList(rows []Row) *SliceList {
	l := &SliceList{rows: append([]Row(nil), rows...)}
	l.reindex()
	return l
}

func (l *SliceList) reindex() {
	l.index = make(map[string]int, len(l.rows))
	for i, r := range l.rows {
		l.index[r.Key()] = i
	}
}

func (l *SliceList) Len() int { return len(l.rows) }

func (l *SliceList) Lines(top, num int) []Row {
	if num <= 0 || top >= len(l.rows) {
		return nil
	}
	if top < 0 {
		top = 0
	}
	end := top + num
	if end > len(l.rows) {
		end = len(l.rows)
	}
	return l.rows[top:end]
}

func (l *SliceList) Find(key string) (int, Row, bool) {
	i, ok := l.index[key]
	if !ok || i < 0 || i >= len(l.rows) {
		return -1, nil, false
	}
	return i, l.rows[i], true
}

// Mutations (not part of List) --------------------------------------------

func (l *SliceList) Append(rows ...Row) {
	l.rows = append(l.rows, rows...)
	l.reindex()
}

// SetRows replaces the entire backing slice.
func (l *SliceList) SetRows(rows []Row) {
	l.rows = append([]Row(nil), rows...)
	l.reindex()
}

// Replace swaps a row in place by key. Returns false if absent.
func (l *SliceList) Replace(r Row) bool {
	i, ok := l.index[r.Key()]
	if !ok {
		return false
	}
	l.rows[i] = r
	return true
}

// RemoveKeys removes all rows with the given keys, returning the count
// actually removed.
func (l *SliceList) RemoveKeys(keys ...string) int {
	if len(keys) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	kept := make([]Row, 0, len(l.rows))
	removed := 0
	for _, r := range l.rows {
		if _, gone := drop[r.Key()]; gone {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed > 0 {
		l.rows = kept
		l.reindex()
	}
	return removed
}

var _ List = (*SliceList)(nil)
var _ Row = MapRow{}
