package field

import "testing"

func TestAttractor_NoDriftOnWeakSession(t *testing.T) {
	a := HomeAttractor()
	if got := a.Drift(strongSessionHarmony - 0.01); got != a {
		t.Errorf("Attractor moved after weak session: %+v", got)
	}
}

func TestAttractor_DriftStepsAreSmallAndTowardIdeal(t *testing.T) {
	a := HomeAttractor()
	b := a.Drift(0.95)

	for _, pair := range [][2]float64{{a.L, b.L}, {a.J, b.J}, {a.P, b.P}, {a.W, b.W}} {
		step := pair[1] - pair[0]
		if step <= 0 {
			t.Errorf("Component did not move toward ideal: %f -> %f", pair[0], pair[1])
		}
		if step > maxDriftStep+1e-12 {
			t.Errorf("Step exceeds per-session bound: %g", step)
		}
	}
}

func TestAttractor_NeverPassesIdeal(t *testing.T) {
	a := Attractor{L: 0.9999, J: 0.9999, P: 0.9999, W: 0.9999}
	for i := 0; i < 1000; i++ {
		a = a.Drift(0.99)
	}
	if a.L > 1.0 || a.J > 1.0 || a.P > 1.0 || a.W > 1.0 {
		t.Errorf("Attractor overshot the ideal: %+v", a)
	}
}

func TestAttractor_ScaleShrinksWithDrift(t *testing.T) {
	a := HomeAttractor()
	if s := a.Scale(); s != 1.0 {
		t.Fatalf("Home scale must be 1, got %f", s)
	}

	prev := a.Scale()
	for i := 0; i < 50; i++ {
		a = a.Drift(0.95)
		s := a.Scale()
		if s > prev {
			t.Fatalf("Scale rose after drift %d: %f -> %f", i, prev, s)
		}
		prev = s
	}
	if prev >= 1.0 {
		t.Error("Expected scale below 1 after sustained drift")
	}
}
