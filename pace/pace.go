package pace

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"resonant/field"
)

type Mode int

const (
	// Active: recent keystrokes, fast tick period.
	Active Mode = iota
	// Autonomous: no recent input; the field idles on the slow period.
	Autonomous
)

func (m Mode) String() string {
	if m == Autonomous {
		return "autonomous"
	}
	return "active"
}

const (
	// Tick period while the user is typing.
	ActivePeriod = 300 * time.Millisecond

	// Idle period: the active period stretched by phi^3.5, landing near
	// 1.6 s.
	idleStretch = 5.394

	// No input for this long flips the scheduler to Autonomous.
	idleAfter = 4 * time.Second

	// Autonomous ticks are skipped while CPU usage is above this.
	cpuCeiling = 80.0
)

func AutonomousPeriod() time.Duration {
	return time.Duration(float64(ActivePeriod) * idleStretch)
}

// LoadGate reports whether background work may run right now. Swappable
// so tests do not depend on host CPU readings.
type LoadGate func() bool

// CPULoadGate samples instantaneous CPU usage. Fails closed: if the
// reading is unavailable, background ticking is skipped.
func CPULoadGate() bool {
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		return false
	}
	return usage[0] < cpuCeiling
}

// Scheduler owns the tick cadence for one document. It serializes tick
// delivery (one scheduled callback, never overlapping intervals) and is
// the only component that knows about wall-clock periods; the field
// engine just processes whatever it is handed, whenever it is handed it.
type Scheduler struct {
	mode      Mode
	lastInput time.Time
	gate      LoadGate
}

func NewScheduler(gate LoadGate) *Scheduler {
	if gate == nil {
		gate = CPULoadGate
	}
	return &Scheduler{
		mode:      Active,
		lastInput: time.Now(),
		gate:      gate,
	}
}

func (s *Scheduler) Mode() Mode {
	return s.mode
}

// NoteInput records a keystroke and snaps the scheduler back to Active.
func (s *Scheduler) NoteInput(at time.Time) {
	s.lastInput = at
	s.mode = Active
}

// Period returns the tick period for the next scheduled callback,
// updating the mode from the idle clock.
func (s *Scheduler) Period(now time.Time) time.Duration {
	if now.Sub(s.lastInput) >= idleAfter {
		s.mode = Autonomous
	} else {
		s.mode = Active
	}
	if s.mode == Autonomous {
		return AutonomousPeriod()
	}
	return ActivePeriod
}

// ShouldTick reports whether the tick that just fired should reach the
// engine. Active ticks always run; autonomous ticks defer to the load
// gate so idle ticking never competes with a busy machine.
func (s *Scheduler) ShouldTick() bool {
	if s.mode == Active {
		return true
	}
	return s.gate()
}

// Tick runs one scheduled engine tick if the gate allows it. Returns the
// new state, or nil when the tick was skipped.
func (s *Scheduler) Tick(c *field.Controller, text string) *field.State {
	if !s.ShouldTick() {
		return nil
	}
	return c.Evaluate(text)
}
