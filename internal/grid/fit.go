package grid

// Container-fit reconciliation: redistributes the slack between the
// table's natural total width and the viewport.

// fitHysteresisPx keeps the overflow decision from flip-flopping when the
// viewport jitters by about a scrollbar's width.
const fitHysteresisPx = 16

// fitState remembers the last overflow decision so the grid only switches
// between fit and horizontal-scroll mode once the totals clear the
// hysteresis band.
type fitState struct {
	overflowing bool
}

// update recomputes the overflow decision for the given totals.
func (f *fitState) update(totalPx, viewportPx float64) bool {
	if f.overflowing {
		if totalPx <= viewportPx-fitHysteresisPx {
			f.overflowing = false
		}
	} else if totalPx > viewportPx {
		f.overflowing = true
	}
	return f.overflowing
}

type fitInput struct {
	cols       []Column // visible columns, in display order
	natural    map[string]float64
	pinned     map[string]struct{} // fixed-role and externally-sized columns keep their width
	viewportPx float64
	metrics    Metrics
}

// reconcileFit splits the space left after pinned columns evenly across
// the flexible ones, respecting each column's min/max bounds. Leftover
// pixels go to the first flexible column. If the flexible minimums alone
// exceed the available space every flexible column sits at its minimum
// and the grid overflows.
func reconcileFit(in fitInput) map[string]float64 {
	out := make(map[string]float64, len(in.cols))
	avail := in.viewportPx
	var flex []Column
	for _, c := range in.cols {
		if _, pin := in.pinned[c.Key]; pin {
			w := in.natural[c.Key]
			out[c.Key] = w
			avail -= w
			continue
		}
		flex = append(flex, c)
	}
	if len(flex) == 0 {
		return out
	}
	if avail < 0 {
		avail = 0
	}

	// Peel off columns whose bounds beat the even share until the share
	// stabilizes.
	assigned := make(map[string]float64, len(flex))
	remaining := avail
	pending := append([]Column(nil), flex...)
	for {
		if len(pending) == 0 {
			break
		}
		share := remaining / float64(len(pending))
		moved := false
		next := pending[:0]
		for _, c := range pending {
			lo := c.minPx(in.metrics, in.viewportPx)
			hi := c.maxPx(in.metrics, in.viewportPx)
			switch {
			case share < lo:
				assigned[c.Key] = lo
				remaining -= lo
				moved = true
			case share > hi:
				assigned[c.Key] = hi
				remaining -= hi
				moved = true
			default:
				next = append(next, c)
			}
		}
		pending = next
		if !moved {
			share = 0
			if len(pending) > 0 {
				share = remaining / float64(len(pending))
			}
			for _, c := range pending {
				assigned[c.Key] = share
			}
			break
		}
		if remaining < 0 {
			remaining = 0
		}
	}

	// Leftover pixels go to the first flexible column, bounds permitting.
	total := 0.0
	for _, c := range flex {
		total += assigned[c.Key]
	}
	if leftover := avail - total; leftover > 0 {
		first := flex[0]
		assigned[first.Key] = first.clampPx(in.metrics, in.viewportPx, assigned[first.Key]+leftover)
	}
	for k, v := range assigned {
		out[k] = v
	}
	return out
}
