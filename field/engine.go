package field

// Config carries the engine's tunable constants. The defaults are the
// reference tuning; equivalence runs against the original cadence model
// depend on them, so change with care.
type Config struct {
	// Per-dimension decay rates. Decay scales with absolute state value,
	// which is what keeps the update bounded.
	DecayL float64
	DecayJ float64
	DecayP float64
	DecayW float64

	// Harmony-dependent coupling weights, applied as 1 + k*H.
	CouplingLJ float64
	CouplingLW float64
	CouplingLP float64

	// Integration step size.
	StepSize float64
}

func DefaultConfig() *Config {
	return &Config{
		DecayL:     0.05,
		DecayJ:     0.05,
		DecayP:     0.05,
		DecayW:     0.06,
		CouplingLJ: 0.4,
		CouplingLW: 0.5,
		CouplingLP: 0.3,
		StepSize:   0.08,
	}
}

// Engine owns the field state and evolves it one bounded step per Tick.
// Single implicit state, no discrete modes. Not safe for concurrent use;
// the driving scheduler serializes calls.
type Engine struct {
	config    *Config
	state     *State
	attractor Attractor
}

func NewEngine(config *Config) *Engine {
	return NewEngineAt(config, HomeAttractor())
}

// NewEngineAt starts the engine with a restored attractor, for sessions
// resuming persisted drift.
func NewEngineAt(config *Config, attractor Attractor) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	e := &Engine{
		config:    config,
		state:     NewState(),
		attractor: attractor,
	}
	e.state.Harmony = e.state.HarmonyAgainst(e.attractor)
	return e
}

func (e *Engine) State() *State {
	return e.state.Clone()
}

func (e *Engine) Harmony() float64 {
	return e.state.Harmony
}

func (e *Engine) Attractor() Attractor {
	return e.attractor
}

func (e *Engine) SetAttractor(a Attractor) {
	e.attractor = a
	e.state.Harmony = e.state.HarmonyAgainst(e.attractor)
}

// Tick advances the field one step toward the signal targets. Each
// dimension gains from the other dimensions' signal values scaled by a
// harmony-weighted coupling, and loses proportionally to its own current
// value. Total, deterministic, always leaves every component in
// [0.01, 1.0]. Returns a snapshot of the new state.
func (e *Engine) Tick(target Signals) *State {
	s := e.state
	c := e.config
	h := s.Harmony

	kLJ := 1.0 + c.CouplingLJ*h
	kLW := 1.0 + c.CouplingLW*h
	kLP := 1.0 + c.CouplingLP*h

	dL := 0.12*target.J*kLJ + 0.12*target.W*kLW - c.DecayL*s.L
	dJ := 0.14*(target.L/(0.70+target.L)) + 0.14*target.W - c.DecayJ*s.J
	dP := 0.12*target.L*kLP + 0.12*target.J - c.DecayP*s.P
	dW := 0.10*target.L*kLW + 0.10*target.J + 0.10*target.P - c.DecayW*s.W

	dt := c.StepSize
	s.L = clampDim(s.L + dt*dL)
	s.J = clampDim(s.J + dt*dJ)
	s.P = clampDim(s.P + dt*dP)
	s.W = clampDim(s.W + dt*dW)
	s.Harmony = s.HarmonyAgainst(e.attractor)
	s.Ticks++

	return s.Clone()
}
