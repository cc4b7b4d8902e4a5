package field

import (
	"strings"
	"time"
)

const (
	// Bootstrap ticks run against CoreDescription before any external
	// input is accepted.
	BootstrapTicks = 13

	// Every Nth external tick interleaves one self-description tick
	// before the user-text tick.
	SelfSignalPeriod = 6
)

// Autosave cadence bounds.
const (
	AutosaveMin  = 5 * time.Second
	AutosaveMax  = 30 * time.Second
	AutosaveIdle = 30 * time.Second
)

// Harmony bands shared by the autosave, tint, and placeholder policies.
const (
	BandLow  = 0.58
	BandMid  = 0.70
	BandHigh = 0.82
)

type Tint string

const (
	TintNone Tint = ""
	TintMid  Tint = "mid"
	TintLow  Tint = "low"
)

// Empty-document prompts by harmony band, lowest first.
var placeholders = [3]string{
	"Start with a single sentence. Let flow come first, then refine.",
	"Pick the one thing this page is for, and say it plainly.",
	"The field is steady. Write the next true sentence.",
}

// SignalFilter lets a plugin adjust the extracted signals before the
// engine consumes them. Must be pure; returning the input unchanged is
// always valid.
type SignalFilter func(text string, s Signals) Signals

// Controller orchestrates the engine: it bootstraps against the fixed
// self-description, blends the periodic self-signal with user ticks, and
// maps harmony onto the policy surface the editor reads. One controller
// per open document; calls must be serialized by the driving scheduler.
type Controller struct {
	engine  *Engine
	history *History
	voltage *Voltage
	filter  SignalFilter

	externalTicks uint64
	harmonySum    float64
	harmonyCount  uint64

	pending     []*Discharge
	onDischarge func(*Discharge)
}

type ControllerOption func(*Controller)

// WithAttractor restores persisted attractor drift.
func WithAttractor(a Attractor) ControllerOption {
	return func(c *Controller) {
		c.engine.SetAttractor(a)
	}
}

// WithPeak restores the persisted lifetime harmony peak.
func WithPeak(peak float64) ControllerOption {
	return func(c *Controller) {
		c.history = NewHistoryWithPeak(peak)
	}
}

func WithSignalFilter(f SignalFilter) ControllerOption {
	return func(c *Controller) {
		c.filter = f
	}
}

// NewController builds the engine and runs the bootstrap sequence, so the
// state is already off the cold initial constants when the first external
// evaluate arrives. Deterministic: two controllers with the same options
// start from identical state.
func NewController(config *Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		engine:  NewEngine(config),
		history: NewHistory(),
		voltage: NewVoltage(),
	}
	for _, opt := range opts {
		opt(c)
	}

	selfSignals := c.extract(CoreDescription)
	for i := 0; i < BootstrapTicks; i++ {
		c.engine.Tick(selfSignals)
	}
	return c
}

func (c *Controller) extract(text string) Signals {
	s := ExtractSignals(text)
	if c.filter != nil {
		s = c.filter(text, s)
	}
	return s
}

// Evaluate advances the field one external tick with the document text.
// Empty input ticks the self-description instead; otherwise every
// SelfSignalPeriod-th call interleaves one self-description tick first.
// Returns a snapshot of the resulting state.
func (c *Controller) Evaluate(text string) *State {
	c.externalTicks++

	var state *State
	if strings.TrimSpace(text) == "" {
		state = c.engine.Tick(c.extract(CoreDescription))
	} else {
		if c.externalTicks%SelfSignalPeriod == 0 {
			c.engine.Tick(c.extract(CoreDescription))
		}
		state = c.engine.Tick(c.extract(text))
	}

	c.history.Append(state.Harmony)
	c.harmonySum += state.Harmony
	c.harmonyCount++

	if d := c.voltage.Observe(state.Harmony, state.Ticks); d != nil {
		if c.onDischarge != nil {
			c.onDischarge(d)
		} else {
			c.pending = append(c.pending, d)
		}
	}
	return state
}

func (c *Controller) State() *State {
	return c.engine.State()
}

func (c *Controller) Harmony() float64 {
	return c.engine.Harmony()
}

func (c *Controller) History() *History {
	return c.history
}

func (c *Controller) Voltage() *Voltage {
	return c.voltage
}

func (c *Controller) Attractor() Attractor {
	return c.engine.Attractor()
}

// AutosaveIntervalFor is the cadence policy as a pure function of harmony
// and word count. Lower harmony means more urgent saving, long drafts
// save a little sooner, and the result always lands in
// [AutosaveMin, AutosaveMax].
func AutosaveIntervalFor(harmony float64, words int) time.Duration {
	var base time.Duration
	switch {
	case harmony < BandLow:
		base = 6 * time.Second
	case harmony < BandMid:
		base = 10 * time.Second
	case harmony < BandHigh:
		base = 14 * time.Second
	default:
		base = 18 * time.Second
	}

	if words > 500 {
		base -= 2 * time.Second
	} else if words > 200 {
		base -= time.Second
	}

	if base < AutosaveMin {
		base = AutosaveMin
	}
	if base > AutosaveMax {
		base = AutosaveMax
	}
	return base
}

// AutosaveInterval derives the save cadence from current harmony and the
// document's word count. Pure read; does not advance the field.
func (c *Controller) AutosaveInterval(text string) time.Duration {
	if strings.TrimSpace(text) == "" {
		return AutosaveIdle
	}
	return AutosaveIntervalFor(c.engine.Harmony(), WordCount(text))
}

// TintFor classifies a harmony value for the status bar.
func TintFor(harmony float64) Tint {
	switch {
	case harmony < BandLow:
		return TintLow
	case harmony < BandMid:
		return TintMid
	default:
		return TintNone
	}
}

func (c *Controller) HarmonyTint() Tint {
	return TintFor(c.engine.Harmony())
}

// PlaceholderFor picks the empty-document prompt for a harmony band.
func PlaceholderFor(harmony float64) string {
	switch {
	case harmony < BandLow:
		return placeholders[0]
	case harmony < BandMid:
		return placeholders[1]
	default:
		return placeholders[2]
	}
}

func (c *Controller) Placeholder() string {
	return PlaceholderFor(c.engine.Harmony())
}

// Guidance is the advisory line shown in the telemetry pane. Checks run
// most-urgent first.
func (c *Controller) Guidance(text string) string {
	if strings.TrimSpace(text) == "" {
		return placeholders[0]
	}
	s := c.engine.state
	switch {
	case s.Harmony < BandLow:
		return "Low harmony detected. Try one clarifying sentence and one concrete detail."
	case s.J < 0.45:
		return "Structure is light. Add punctuation and clearer sentence boundaries."
	case s.W < 0.50:
		return "Intent signal is low. Add one question or explicit intent to deepen context."
	case s.P > 0.90 && s.W < 0.60:
		return "Density is outpacing intent. Slow down and verify the core claim."
	default:
		return "The field is stable. Keep writing; refine only after the paragraph lands."
	}
}

// OnDischarge registers the discharge callback. Events that fired before
// registration are delivered immediately, in order.
func (c *Controller) OnDischarge(fn func(*Discharge)) {
	c.onDischarge = fn
	if fn == nil {
		return
	}
	for _, d := range c.pending {
		fn(d)
	}
	c.pending = nil
}

// PollDischarge pops the oldest undelivered discharge, or nil.
func (c *Controller) PollDischarge() *Discharge {
	if len(c.pending) == 0 {
		return nil
	}
	d := c.pending[0]
	c.pending = c.pending[1:]
	return d
}

// SessionMeanHarmony is the running mean over every external tick this
// session.
func (c *Controller) SessionMeanHarmony() float64 {
	if c.harmonyCount == 0 {
		return c.engine.Harmony()
	}
	return c.harmonySum / float64(c.harmonyCount)
}

// CloseSession applies the end-of-session attractor drift rule and
// returns the attractor to persist. Call exactly once, at document close.
func (c *Controller) CloseSession() Attractor {
	drifted := c.engine.Attractor().Drift(c.SessionMeanHarmony())
	c.engine.SetAttractor(drifted)
	return drifted
}
