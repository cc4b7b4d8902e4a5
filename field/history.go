package field

import "math"

const HistoryCapacity = 21

// History is a fixed-capacity ring of recent harmony samples plus the
// lifetime peak. The peak never decreases, even as samples are evicted.
type History struct {
	samples []float64
	head    int
	full    bool
	peak    float64
}

func NewHistory() *History {
	return &History{
		samples: make([]float64, HistoryCapacity),
	}
}

// NewHistoryWithPeak restores the lifetime peak from a persisted session.
func NewHistoryWithPeak(peak float64) *History {
	h := NewHistory()
	h.peak = clamp(peak, 0, 1.0)
	return h
}

func (h *History) Append(harmony float64) {
	h.samples[h.head] = harmony
	h.head++
	if h.head == len(h.samples) {
		h.head = 0
		h.full = true
	}
	if harmony > h.peak {
		h.peak = harmony
	}
}

func (h *History) Len() int {
	if h.full {
		return len(h.samples)
	}
	return h.head
}

// Window returns the recorded samples oldest first.
func (h *History) Window() []float64 {
	n := h.Len()
	out := make([]float64, 0, n)
	if h.full {
		out = append(out, h.samples[h.head:]...)
	}
	out = append(out, h.samples[:h.head]...)
	return out
}

func (h *History) Peak() float64 {
	return h.peak
}

// Trend is the mean of the newer half of the window minus the mean of the
// older half. Positive means harmony is rising.
func (h *History) Trend() float64 {
	window := h.Window()
	if len(window) < 2 {
		return 0
	}
	mid := len(window) / 2
	older := mean(window[:mid])
	newer := mean(window[mid:])
	return newer - older
}

// Volatility is the mean absolute deviation over the window.
func (h *History) Volatility() float64 {
	window := h.Window()
	if len(window) == 0 {
		return 0
	}
	m := mean(window)
	sum := 0.0
	for _, v := range window {
		sum += math.Abs(v - m)
	}
	return sum / float64(len(window))
}

// Stability is bounded in (0, 1]: 1 for a flat window, falling as
// volatility grows.
func (h *History) Stability() float64 {
	return 1.0 / (1.0 + h.Volatility()*10.0)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
