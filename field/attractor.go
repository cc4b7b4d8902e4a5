package field

import "math"

// Attractor is the home state harmony is measured against. It starts at
// the initial field constants and may drift slightly toward the ideal
// point (1,1,1,1) after a strong session. Drift is the only field state
// that survives across sessions.
type Attractor struct {
	L float64 `json:"l"`
	J float64 `json:"j"`
	P float64 `json:"p"`
	W float64 `json:"w"`
}

const (
	// Mean session harmony required before the attractor is allowed to move.
	strongSessionHarmony = 0.72

	// Per-session drift bounds: at most maxDriftStep per component, and
	// never more than driftFraction of the remaining gap to the ideal.
	maxDriftStep  = 0.005
	driftFraction = 0.01
)

func HomeAttractor() Attractor {
	return Attractor{L: L0, J: J0, P: P0, W: W0}
}

// Scale is the metric factor the harmony measure applies to raw distance:
// 1 while the attractor sits at home, shrinking toward 0 as it drifts to
// the ideal. Smaller scale means the same state reads as higher harmony.
func (a Attractor) Scale() float64 {
	home := HomeAttractor()
	homeGap := distanceToIdeal(home)
	if homeGap == 0 {
		return 1.0
	}
	return clamp(distanceToIdeal(a)/homeGap, 0, 1.0)
}

func distanceToIdeal(a Attractor) float64 {
	return math.Sqrt((1.0-a.L)*(1.0-a.L) + (1.0-a.J)*(1.0-a.J) +
		(1.0-a.P)*(1.0-a.P) + (1.0-a.W)*(1.0-a.W))
}

// Drift returns the attractor after one end-of-session update. Movement
// only happens when the session's mean harmony cleared the strong-session
// bar, is always toward the ideal, and never overshoots it.
func (a Attractor) Drift(sessionMeanHarmony float64) Attractor {
	if sessionMeanHarmony < strongSessionHarmony {
		return a
	}
	a.L = driftComponent(a.L)
	a.J = driftComponent(a.J)
	a.P = driftComponent(a.P)
	a.W = driftComponent(a.W)
	return a
}

func driftComponent(v float64) float64 {
	gap := 1.0 - v
	if gap <= 0 {
		return 1.0
	}
	step := gap * driftFraction
	if step > maxDriftStep {
		step = maxDriftStep
	}
	return clamp(v+step, 0, 1.0)
}
