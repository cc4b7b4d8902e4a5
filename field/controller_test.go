package field

import (
	"testing"
	"time"
)

func TestController_BootstrapMovesState(t *testing.T) {
	c := NewController(nil)
	s := c.State()

	if s.Ticks != BootstrapTicks {
		t.Errorf("Expected %d bootstrap ticks, got %d", BootstrapTicks, s.Ticks)
	}
	if almostEqual(s.L, L0) && almostEqual(s.J, J0) && almostEqual(s.P, P0) && almostEqual(s.W, W0) {
		t.Error("Bootstrap left the state at the cold initial constants")
	}
	t.Logf("post-bootstrap harmony: %f", s.Harmony)
}

func TestController_BootstrapDeterministic(t *testing.T) {
	a := NewController(nil)
	b := NewController(nil)
	if *a.State() != *b.State() {
		t.Errorf("Bootstrap not deterministic: %+v vs %+v", a.State(), b.State())
	}
}

func TestController_Determinism(t *testing.T) {
	texts := []string{"a draft line", "", "why? because together.", "and more; so on"}

	a := NewController(nil)
	b := NewController(nil)
	for i := 0; i < 100; i++ {
		sa := a.Evaluate(texts[i%len(texts)])
		sb := b.Evaluate(texts[i%len(texts)])
		if *sa != *sb {
			t.Fatalf("Controllers diverged at evaluate %d", i)
		}
	}
}

func TestController_SelfSignalInterleave(t *testing.T) {
	c := NewController(nil)
	for i := 0; i < 12; i++ {
		c.Evaluate("hello world.")
	}
	// 13 bootstrap + 12 user ticks + 2 interleaved self ticks.
	if got := c.State().Ticks; got != 27 {
		t.Errorf("Expected 27 engine ticks, got %d", got)
	}
}

func TestController_EmptyInputTicksSelf(t *testing.T) {
	c := NewController(nil)
	before := c.State().Ticks
	c.Evaluate("   \n ")
	if got := c.State().Ticks; got != before+1 {
		t.Errorf("Expected one engine tick on empty input, got %d -> %d", before, got)
	}
}

func TestController_EmptyInputConverges(t *testing.T) {
	c := NewController(nil)
	for i := 0; i < 400; i++ {
		c.Evaluate("")
	}
	a := c.Evaluate("").Harmony
	b := c.Evaluate("").Harmony
	if diff := b - a; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Empty input did not converge: delta %g", diff)
	}
}

// Sustained connective-heavy writing should carry harmony well above the
// mid band and settle the autosave cadence at its calmest setting.
func TestController_ConnectiveWritingScenario(t *testing.T) {
	const text = "and so, because together we grow"

	c := NewController(nil)
	prev := 0.0
	var last float64
	for i := 0; i < 50; i++ {
		last = c.Evaluate(text).Harmony
		if last < prev-0.01 {
			t.Errorf("Tick %d: harmony dipped %f -> %f", i, prev, last)
		}
		prev = last
	}

	if last < 0.65 {
		t.Errorf("Expected harmony above 0.65 after 50 ticks, got %f", last)
	}
	if cadence := c.AutosaveInterval(text); cadence < 14*time.Second {
		t.Errorf("Expected settled cadence >= 14s, got %s", cadence)
	}
	if tint := c.HarmonyTint(); tint != TintNone {
		t.Errorf("Expected no tint at settled harmony, got %q", tint)
	}
}

func TestAutosaveIntervalFor_BandsMonotone(t *testing.T) {
	harmonies := []float64{0.95, 0.83, 0.75, 0.65, 0.50, 0.20}

	prev := AutosaveMax + time.Second
	for _, h := range harmonies {
		got := AutosaveIntervalFor(h, 50)
		if got > prev {
			t.Errorf("Cadence rose as harmony fell: %s at h=%f", got, h)
		}
		if got < AutosaveMin || got > AutosaveMax {
			t.Errorf("Cadence out of range at h=%f: %s", h, got)
		}
		prev = got
	}
}

func TestAutosaveIntervalFor_LongDraftsSaveSooner(t *testing.T) {
	short := AutosaveIntervalFor(0.75, 50)
	medium := AutosaveIntervalFor(0.75, 300)
	long := AutosaveIntervalFor(0.75, 600)

	if !(long < medium && medium < short) {
		t.Errorf("Expected cadence to shorten with length: %s / %s / %s", short, medium, long)
	}
	if low := AutosaveIntervalFor(0.10, 9999); low < AutosaveMin {
		t.Errorf("Cadence fell below floor: %s", low)
	}
}

func TestController_AutosaveIdleOnEmpty(t *testing.T) {
	c := NewController(nil)
	if got := c.AutosaveInterval("  \n"); got != AutosaveIdle {
		t.Errorf("Expected idle cadence for empty text, got %s", got)
	}
}

func TestTintFor_Bands(t *testing.T) {
	cases := []struct {
		h    float64
		want Tint
	}{
		{0.10, TintLow},
		{0.5799, TintLow},
		{0.58, TintMid},
		{0.6999, TintMid},
		{0.70, TintNone},
		{0.99, TintNone},
	}
	for _, tc := range cases {
		if got := TintFor(tc.h); got != tc.want {
			t.Errorf("TintFor(%f) = %q, want %q", tc.h, got, tc.want)
		}
	}
}

func TestPlaceholderFor_Bands(t *testing.T) {
	low := PlaceholderFor(0.40)
	mid := PlaceholderFor(0.65)
	high := PlaceholderFor(0.90)

	if low != placeholders[0] || mid != placeholders[1] || high != placeholders[2] {
		t.Errorf("Placeholder bands wrong: %q / %q / %q", low, mid, high)
	}
	if low == mid || mid == high {
		t.Error("Placeholder prompts must differ across bands")
	}
}

func TestController_GuidanceEmptyText(t *testing.T) {
	c := NewController(nil)
	if got := c.Guidance("  "); got != placeholders[0] {
		t.Errorf("Unexpected guidance for empty text: %q", got)
	}
	if got := c.Guidance("some words here"); got == "" {
		t.Error("Expected guidance for non-empty text")
	}
}

func TestController_DischargePolling(t *testing.T) {
	c := NewController(nil)
	const text = "and so, because together we grow, and the page holds"
	var fired *Discharge
	for i := 0; i < 300 && fired == nil; i++ {
		c.Evaluate(text)
		fired = c.PollDischarge()
	}
	if fired == nil {
		t.Fatal("Expected a discharge during sustained high harmony")
	}
	if fired.ID == "" {
		t.Error("Discharge missing ID")
	}
	t.Logf("discharge at engine tick %d, harmony %f", fired.Tick, fired.Harmony)
}

func TestController_DischargeCallbackDrainsPending(t *testing.T) {
	c := NewController(nil)
	const text = "and so, because together we grow, and the page holds"
	for i := 0; i < 300; i++ {
		c.Evaluate(text)
	}

	var seen []*Discharge
	c.OnDischarge(func(d *Discharge) { seen = append(seen, d) })
	if len(seen) == 0 {
		t.Fatal("Expected pending discharges delivered on registration")
	}
	if c.PollDischarge() != nil {
		t.Error("Pending queue should be empty after callback registration")
	}
}

func TestController_CloseSessionDriftsAfterStrongSession(t *testing.T) {
	c := NewController(nil)
	const text = "and so, because together we grow"
	for i := 0; i < 100; i++ {
		c.Evaluate(text)
	}
	if mean := c.SessionMeanHarmony(); mean < strongSessionHarmony {
		t.Fatalf("Scenario assumption broken: mean harmony %f", mean)
	}

	before := c.Attractor()
	after := c.CloseSession()
	if !(after.L > before.L && after.J > before.J && after.P > before.P && after.W > before.W) {
		t.Errorf("Expected attractor to drift toward ideal: %+v -> %+v", before, after)
	}
	if after.Scale() >= before.Scale() {
		t.Errorf("Expected metric scale to shrink: %f -> %f", after.Scale(), before.Scale())
	}
}

func TestController_RestoredPeakSurvives(t *testing.T) {
	c := NewController(nil, WithPeak(0.97))
	c.Evaluate("a few words")
	if peak := c.History().Peak(); peak < 0.97 {
		t.Errorf("Restored peak regressed: %f", peak)
	}
}
