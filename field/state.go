package field

import "math"

// Initial field constants. These are the resting values every session
// starts from and the point the attractor begins at.
var (
	Phi = (1.0 + math.Sqrt(5.0)) / 2.0

	L0 = 1.0 / Phi
	J0 = math.Sqrt2 - 1.0
	P0 = math.E - 2.0
	W0 = math.Ln2
)

type State struct {
	L       float64 `json:"l"`
	J       float64 `json:"j"`
	P       float64 `json:"p"`
	W       float64 `json:"w"`
	Harmony float64 `json:"harmony"`
	Ticks   uint64  `json:"ticks"`
}

func NewState() *State {
	s := &State{
		L: L0,
		J: J0,
		P: P0,
		W: W0,
	}
	return s
}

func (s *State) Clone() *State {
	clone := *s
	return &clone
}

// HarmonyAgainst is the normalized inverse distance between the state and
// the ideal point (1,1,1,1), with the metric scaled by how far the
// attractor has drifted. A home attractor gives the plain measure; as the
// attractor closes on the ideal the same distance costs less harmony, so
// the attainable ceiling rises across sessions. Always in (0, 1].
func (s *State) HarmonyAgainst(attractor Attractor) float64 {
	distance := math.Sqrt(
		(1.0-s.L)*(1.0-s.L) +
			(1.0-s.J)*(1.0-s.J) +
			(1.0-s.P)*(1.0-s.P) +
			(1.0-s.W)*(1.0-s.W))
	return 1.0 / (1.0 + attractor.Scale()*distance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampDim keeps a field component inside its invariant band. The floor
// is 0.01, not 0, so ratios elsewhere never degenerate.
func clampDim(v float64) float64 {
	return clamp(v, 0.01, 1.0)
}
