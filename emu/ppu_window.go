package emu

// containsLine reports whether line falls inside the window's vertical span.
// A top edge below the bottom edge wraps around the bottom of the screen.
func (w *WindowRect) containsLine(line int) bool {
	top, bottom := int(w.Top), int(w.Bottom)
	if top <= bottom {
		return line >= top && line < bottom
	}
	return line >= top || line < bottom
}

// eachColumn calls fn for every visible column inside the window's
// horizontal span. A left edge right of the right edge wraps around.
// Right edges past the screen are clamped.
func (w *WindowRect) eachColumn(fn func(x int)) {
	left, right := int(w.Left), int(w.Right)
	if right > ScreenWidth {
		right = ScreenWidth
	}
	if left <= right {
		for x := left; x < right; x++ {
			fn(x)
		}
		return
	}
	for x := left; x < ScreenWidth; x++ {
		fn(x)
	}
	for x := 0; x < right; x++ {
		fn(x)
	}
}
