// Package tissue models each attractor as a muscle fibre whose contraction
// force scales the attractor's pull. Held keys pump energy into their muscle
// and a capped share into keyboard neighbours; sustained contraction burns
// ATP faster than pumping restores it, so the pull fades while a key is held.
package tissue

import "math"

const (
	DefaultRestingForce = 0.2
	DefaultMaxForce     = 1.0
	DefaultFatigueRate  = 0.1
	DefaultRegenRate    = 0.002
	DefaultMyosinHeads  = 100

	forcePerHead = 0.01
	atpFloor     = 0.01
	restDecay    = 0.05
	// minDrive is the weakest drive that counts as contracting.
	minDrive = 1e-3
)

type Muscle struct {
	RestingForce float64
	MaxForce     float64
	FatigueRate  float64
	RegenRate    float64
	MyosinHeads  int

	Activation float64
	Force      float64
	Calcium    float64
	ATP        float64
	Damage     float64
}

func NewMuscle() Muscle {
	return Muscle{
		RestingForce: DefaultRestingForce,
		MaxForce:     DefaultMaxForce,
		FatigueRate:  DefaultFatigueRate,
		RegenRate:    DefaultRegenRate,
		MyosinHeads:  DefaultMyosinHeads,
		Force:        DefaultRestingForce,
		ATP:          DefaultRestingForce,
	}
}

// Pump adds energy from outside: ATP and, at half rate, calcium.
func (m *Muscle) Pump(amount float64) {
	if amount <= 0 {
		return
	}
	m.ATP = math.Min(1, m.ATP+amount)
	m.Calcium = math.Min(1, m.Calcium+amount*0.5)
}

// Update advances the muscle one tick under the given drive in [0, 1].
func (m *Muscle) Update(drive float64) {
	m.Activation = clamp01(drive)
	if m.Activation < minDrive {
		m.Activation = 0
	}

	if m.ATP > atpFloor && m.Activation > 0 {
		wave := math.Sin(m.Activation*math.Pi)/2 + 0.5
		m.Calcium = clamp01(m.RestingForce + m.Activation*wave)
	} else {
		m.Calcium = math.Max(0, m.Calcium-math.Max(0.02, math.Min(0.04, m.Calcium*0.05)))
	}

	if m.Activation > 0 && m.ATP < 1 {
		m.ATP = math.Max(0, m.ATP-math.Min(0.005, (1-m.ATP)*0.01))
	}

	m.Force = m.RestingForce
	if m.ATP > atpFloor {
		bound := math.Floor(math.Min(float64(m.MyosinHeads), (m.Calcium+m.Activation)*float64(m.MyosinHeads)/2))
		m.Force = m.RestingForce + m.ATP*bound*forcePerHead
		m.ATP = math.Max(0, m.ATP-math.Min(0.002, 0.4*m.FatigueRate)*bound)
	}

	if m.Activation == 0 {
		if m.ATP < m.RestingForce {
			m.ATP = math.Min(m.RestingForce, m.ATP+math.Min(0.03, (1-m.ATP)*m.RegenRate))
		} else {
			m.ATP = math.Max(m.RestingForce, m.ATP-restDecay)
		}
	}

	if (m.Force > m.MaxForce*1.2 && m.Activation > 0.8) || (m.Activation > 0 && m.ATP < 0.05) {
		m.Damage += 0.001
	} else {
		m.Damage -= 0.0005
	}
	m.Damage = clamp01(m.Damage)
}

// Gain is the active force above resting tone, normalized to the largest
// force the myosin pool can produce and reduced by accumulated damage.
func (m *Muscle) Gain() float64 {
	span := float64(m.MyosinHeads) * forcePerHead
	if span <= 0 {
		return 0
	}
	return clamp01((m.Force-m.RestingForce)/span) * (1 - m.Damage)
}

// excess is the force above resting tone.
func (m *Muscle) excess() float64 { return math.Max(0, m.Force-m.RestingForce) }

// Fatigue is the spent share of the ATP pool.
func (m *Muscle) Fatigue() float64 { return 1 - m.ATP }

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
