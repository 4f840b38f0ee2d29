package tissue

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/layout"
)

func TestMuscleAtRest(t *testing.T) {
	m := NewMuscle()
	for i := 0; i < 200; i++ {
		m.Update(0)
	}
	if g := m.Gain(); g != 0 {
		t.Errorf("resting gain = %v, want 0", g)
	}
	if math.Abs(m.ATP-DefaultRestingForce) > 1e-9 {
		t.Errorf("resting ATP = %v, want %v", m.ATP, DefaultRestingForce)
	}
	if m.Damage != 0 {
		t.Errorf("resting damage = %v", m.Damage)
	}
}

func TestHoldFatiguesAndReleaseRecovers(t *testing.T) {
	tis := New(1, nil, DefaultParams())
	down := []float64{1}
	up := []float64{0}

	tis.Update(down)
	fresh := tis.Gain(0)
	if fresh < 0.5 {
		t.Fatalf("gain after press = %v, want > 0.5", fresh)
	}

	for i := 0; i < 300; i++ {
		tis.Update(down)
	}
	tired := tis.Gain(0)
	if tired > fresh*0.5 {
		t.Errorf("gain after long hold = %v, want well below %v", tired, fresh)
	}

	for i := 0; i < 50; i++ {
		tis.Update(up)
	}
	if g := tis.Gain(0); g > 0.05 {
		t.Errorf("gain after release = %v, want ~0", g)
	}

	// a new press gets the boost again
	tis.Update(down)
	if g := tis.Gain(0); g <= tired {
		t.Errorf("gain after re-press = %v, want > %v", g, tired)
	}
}

func TestPropagationReachesNeighbours(t *testing.T) {
	l := layout.New(layout.QWERTY, dynamo.NewBounds(800, 600, 40, false))
	tis := New(l.Len(), l.Neighbors, DefaultParams())

	q, _ := l.Index('q')
	w, _ := l.Index('w')
	p, _ := l.Index('p')

	levels := make([]float64, l.Len())
	levels[q] = 1
	tis.Update(levels)
	tis.Update(levels)

	if got := tis.Muscle(w).ATP; got < 0.5 {
		t.Errorf("neighbour ATP = %v, want > 0.5", got)
	}
	if got := tis.Muscle(p).ATP; math.Abs(got-DefaultRestingForce) > 1e-9 {
		t.Errorf("far muscle ATP = %v, want resting %v", got, DefaultRestingForce)
	}
}

func TestGainBounded(t *testing.T) {
	l := layout.New(layout.QWERTY, dynamo.NewBounds(800, 600, 40, false))
	tis := New(l.Len(), l.Neighbors, DefaultParams())
	rng := rand.New(rand.NewSource(42))
	levels := make([]float64, l.Len())

	for step := 0; step < 2000; step++ {
		for i := range levels {
			if rng.Float64() < 0.05 {
				levels[i] = 1 - levels[i]
			}
		}
		tis.Update(levels)
		for i := 0; i < tis.Len(); i++ {
			g := tis.Gain(i)
			if g < 0 || g > 1 || math.IsNaN(g) {
				t.Fatalf("step %d: gain[%d] = %v", step, i, g)
			}
		}
	}
}

func TestReset(t *testing.T) {
	tis := New(3, nil, DefaultParams())
	tis.Update([]float64{1, 1, 1})
	tis.Reset()
	for i := 0; i < tis.Len(); i++ {
		if tis.Muscle(i) != NewMuscle() {
			t.Errorf("muscle %d not at rest after Reset", i)
		}
	}
	if f := tis.MeanForce(); math.Abs(f-DefaultRestingForce) > 1e-9 {
		t.Errorf("MeanForce = %v", f)
	}
}

func TestShortLevels(t *testing.T) {
	tis := New(4, nil, DefaultParams())
	tis.Update([]float64{1})
	if tis.Gain(0) == 0 {
		t.Error("pressed muscle has no gain")
	}
	if tis.Gain(3) != 0 {
		t.Error("muscle without a level contracted")
	}
}

func TestIdleTissueStaysAtRest(t *testing.T) {
	l := layout.New(layout.QWERTY, dynamo.NewBounds(800, 600, 40, false))
	idle := New(l.Len(), l.Neighbors, DefaultParams())
	levels := make([]float64, l.Len())
	for step := 0; step < 5000; step++ {
		idle.Update(levels)
	}
	for i := 0; i < idle.Len(); i++ {
		m := idle.Muscle(i)
		if m.Activation != 0 || m.Damage != 0 {
			t.Fatalf("idle muscle %d: activation %v damage %v", i, m.Activation, m.Damage)
		}
		if math.Abs(m.ATP-DefaultRestingForce) > 1e-9 {
			t.Fatalf("idle muscle %d: ATP %v, want %v", i, m.ATP, DefaultRestingForce)
		}
	}

	for i := 0; i < l.Len(); i++ {
		fresh := New(l.Len(), l.Neighbors, DefaultParams())
		levels[i] = 1
		fresh.Update(levels)
		idle.Update(levels)
		levels[i] = 0
		if got, want := idle.Gain(i), fresh.Gain(i); math.Abs(got-want) > 1e-9 {
			t.Errorf("node %d: gain after idle = %v, fresh = %v", i, got, want)
		}
		idle.Reset()
		for step := 0; step < 50; step++ {
			idle.Update(levels)
		}
	}
}

func TestReleasedNeighboursSettle(t *testing.T) {
	l := layout.New(layout.QWERTY, dynamo.NewBounds(800, 600, 40, false))
	tis := New(l.Len(), l.Neighbors, DefaultParams())
	g, _ := l.Index('g')
	levels := make([]float64, l.Len())
	levels[g] = 1
	for step := 0; step < 60; step++ {
		tis.Update(levels)
	}
	levels[g] = 0
	for step := 0; step < 3000; step++ {
		tis.Update(levels)
	}
	for i := 0; i < tis.Len(); i++ {
		m := tis.Muscle(i)
		if m.Activation != 0 {
			t.Errorf("muscle %d still contracting after release", i)
		}
		if m.Damage > 0 {
			t.Errorf("muscle %d damage %v did not heal", i, m.Damage)
		}
		if tis.Gain(i) > 1e-9 {
			t.Errorf("muscle %d gain %v after release", i, tis.Gain(i))
		}
	}
}
