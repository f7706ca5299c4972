package mood

// Window is a bounded FIFO of recent calculated moods. Once full, each push
// evicts the oldest entry. The zero value has no capacity; use NewWindow.
type Window struct {
	size  int
	moods []Mood
}

// NewWindow returns an empty window holding at most size moods.
func NewWindow(size int) Window {
	if size < 0 {
		size = 0
	}
	return Window{size: size, moods: make([]Mood, 0, size)}
}

// WindowOf builds a window from moods, keeping the newest size entries.
func WindowOf(size int, moods ...Mood) Window {
	w := NewWindow(size)
	for _, m := range moods {
		w.Push(m)
	}
	return w
}

// Size is the capacity of the window.
func (w Window) Size() int { return w.size }

// Len is the number of moods currently held.
func (w Window) Len() int { return len(w.moods) }

// Moods returns a copy of the window contents, oldest first.
func (w Window) Moods() []Mood {
	out := make([]Mood, len(w.moods))
	copy(out, w.moods)
	return out
}

// Push appends m and evicts from the front until the window fits.
func (w *Window) Push(m Mood) {
	if w.size == 0 {
		return
	}
	w.moods = append(w.moods, m)
	if over := len(w.moods) - w.size; over > 0 {
		w.moods = append(w.moods[:0:0], w.moods[over:]...)
	}
}

// Appended returns a copy of w with m pushed. w itself is not modified.
func (w Window) Appended(m Mood) Window {
	next := w.Resized(w.size)
	next.Push(m)
	return next
}

// Resized returns a copy with capacity size, dropping the oldest entries if
// the current contents do not fit.
func (w Window) Resized(size int) Window {
	return WindowOf(size, w.moods...)
}

// Count returns how many times m appears in the window.
func (w Window) Count(m Mood) int {
	n := 0
	for _, v := range w.moods {
		if v == m {
			n++
		}
	}
	return n
}

// Reset empties the window, keeping its capacity.
func (w *Window) Reset() {
	w.moods = make([]Mood, 0, w.size)
}

// Smooth returns the most frequent mood in the window and its count.
// Labels are visited in order of first appearance, seeded with seed, and a
// label replaces the running candidate only with a strictly higher count.
func (w Window) Smooth(seed Mood) (Mood, int) {
	counts := make(map[Mood]int, len(All))
	order := make([]Mood, 0, len(All))
	for _, m := range w.moods {
		if _, seen := counts[m]; !seen {
			order = append(order, m)
		}
		counts[m]++
	}

	best := seed
	for _, m := range order {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best, counts[best]
}
