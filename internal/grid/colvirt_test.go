package grid

import "testing"

func colvirtCols(n int) ([]Column, func(string) float64) {
	cols := make([]Column, n)
	for i := range cols {
		cols[i] = Column{Key: string(rune('a' + i))}
	}
	return cols, func(string) float64 { return 100 }
}

func TestColSpans(t *testing.T) {
	v := newColVirtualizer(true, 0, 0, 0)
	cols, widthOf := colvirtCols(3)
	spans := v.spans(cols, widthOf)
	want := []colSpan{{0, 100}, {100, 200}, {200, 300}}
	for i := range want {
		if spans[i] != want[i] {
			t.Fatalf("span %d = %+v, want %+v", i, spans[i], want[i])
		}
	}
}

func TestColWindowIntersection(t *testing.T) {
	v := newColVirtualizer(true, 0, 0, 0)
	cols, widthOf := colvirtCols(10)
	spans := v.spans(cols, widthOf)

	// Viewport [250, 550) touches columns 2..5.
	w := v.window(250, 300, spans)
	if w.StartIndex != 2 || w.EndIndex != 6 {
		t.Fatalf("window = [%d,%d), want [2,6)", w.StartIndex, w.EndIndex)
	}

	// Overscan widens by one on each side, clamped to the data.
	vo := newColVirtualizer(true, 0, 0, 1)
	w = vo.window(250, 300, spans)
	if w.StartIndex != 1 || w.EndIndex != 7 {
		t.Fatalf("overscan window = [%d,%d), want [1,7)", w.StartIndex, w.EndIndex)
	}
	w = vo.window(0, 300, spans)
	if w.StartIndex != 0 {
		t.Fatalf("window start must clamp to 0, got %d", w.StartIndex)
	}
}

func TestColWindowDisabled(t *testing.T) {
	v := newColVirtualizer(false, 0, 0, 0)
	cols, widthOf := colvirtCols(10)
	spans := v.spans(cols, widthOf)
	w := v.window(250, 300, spans)
	if w.StartIndex != 0 || w.EndIndex != 10 {
		t.Fatalf("disabled windowing must mount everything: [%d,%d)", w.StartIndex, w.EndIndex)
	}
	if got := v.mounted(w, 10); len(got) != 10 {
		t.Fatalf("mounted len = %d, want 10", len(got))
	}
}

func TestColMountedSticky(t *testing.T) {
	v := newColVirtualizer(true, 1, 1, 0)
	cols, widthOf := colvirtCols(10)
	spans := v.spans(cols, widthOf)
	w := v.window(400, 200, spans) // columns 4 and 5
	got := v.mounted(w, 10)
	want := []int{0, 4, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("mounted = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mounted = %v, want %v", got, want)
		}
	}
}

func TestColWindowNoIntersection(t *testing.T) {
	v := newColVirtualizer(true, 0, 0, 0)
	cols, widthOf := colvirtCols(3)
	spans := v.spans(cols, widthOf)
	w := v.window(5000, 300, spans)
	if w.EndIndex != w.StartIndex {
		t.Fatalf("past-the-end scroll must mount nothing: [%d,%d)", w.StartIndex, w.EndIndex)
	}
}
