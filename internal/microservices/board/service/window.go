package service

// Window is the selection and the first visible index of a fixed-size page
// over the order list.
type Window struct {
	Size     int
	Selected int
	Start    int
}

func NewWindow(size int) Window {
	if size <= 0 {
		size = 1
	}
	return Window{Size: size}
}

// Adjust selects target (clamped to the list) and scrolls only as far as
// needed to keep the selection visible. It is the single place where the
// selection and window are recomputed.
func (w Window) Adjust(target, total int) Window {
	if total <= 0 {
		return Window{Size: w.Size}
	}
	sel := min(target, total-1)
	if sel < 0 {
		sel = 0
	}
	start := w.Start
	if sel >= start+w.Size {
		start = sel - w.Size + 1
	} else if sel < start {
		start = sel
	}
	maxStart := max(0, total-w.Size)
	start = min(max(start, 0), maxStart)
	return Window{Size: w.Size, Selected: sel, Start: start}
}

// Bounds returns the visible half-open range [lo, hi) for total orders.
func (w Window) Bounds(total int) (int, int) {
	lo := min(w.Start, total)
	hi := min(w.Start+w.Size, total)
	return lo, hi
}
