package field

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Harmony must hold at or above this level for charge to build.
	SustainThreshold = 0.80

	// Charge added per sustained tick.
	chargeStep = 0.04

	// Charge level that fires a discharge.
	DischargeThreshold = 0.88

	voltageCap = 1.0

	// Ticks after a discharge during which charging is suppressed.
	cooldownTicks = 34

	// Passive charge bleed per tick while harmony is below sustain.
	chargeBleed = 0.01
)

// Discharge is the one-shot event emitted when accumulated charge crosses
// the threshold. The UI renders it as a transient glow.
type Discharge struct {
	ID      string
	Charge  float64
	Harmony float64
	Tick    uint64
	At      time.Time
}

// Voltage accumulates charge while harmony stays high and fires exactly
// one discharge per threshold crossing, then cools down.
type Voltage struct {
	charge   float64
	streak   int
	cooldown int
}

func NewVoltage() *Voltage {
	return &Voltage{}
}

func (v *Voltage) Charge() float64 {
	return v.charge
}

func (v *Voltage) Streak() int {
	return v.streak
}

func (v *Voltage) CoolingDown() bool {
	return v.cooldown > 0
}

// Observe feeds one harmony sample. Returns a non-nil Discharge on the
// tick the charge crosses the threshold, nil otherwise.
func (v *Voltage) Observe(harmony float64, tick uint64) *Discharge {
	if v.cooldown > 0 {
		v.cooldown--
		return nil
	}

	if harmony < SustainThreshold {
		v.streak = 0
		v.charge = clamp(v.charge-chargeBleed, 0, voltageCap)
		return nil
	}

	v.streak++
	v.charge = clamp(v.charge+chargeStep, 0, voltageCap)

	if v.charge < DischargeThreshold {
		return nil
	}

	fired := &Discharge{
		ID:      uuid.New().String(),
		Charge:  v.charge,
		Harmony: harmony,
		Tick:    tick,
		At:      time.Now().UTC(),
	}
	v.charge = 0
	v.streak = 0
	v.cooldown = cooldownTicks
	return fired
}
