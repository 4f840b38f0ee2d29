package tissue

const (
	DefaultCoupling = 0.1
	DefaultCap      = 0.66
	DefaultBoost    = 1.0
	DefaultSustain  = 0.16

	// couplingEpsilon is the smallest neighbour force excess that drives a
	// muscle; below it the difference is rounding noise.
	couplingEpsilon = 1e-6
)

type Params struct {
	Enabled  bool
	Coupling float64
	// Cap is the share of a held muscle's force its neighbours are topped up
	// to, compounding per BFS level.
	Cap float64
	// Boost is pumped on the tick a key goes down, Sustain on every tick it
	// stays down.
	Boost   float64
	Sustain float64
}

func DefaultParams() Params {
	return Params{
		Coupling: DefaultCoupling,
		Cap:      DefaultCap,
		Boost:    DefaultBoost,
		Sustain:  DefaultSustain,
	}
}

// Tissue is a network of muscles, one per attractor node, connected by a
// fixed neighbour graph.
type Tissue struct {
	Params    Params
	muscles   []Muscle
	neighbors func(i int) []int
	held      []bool
	drive     []float64
	queue     []hop
	visited   []bool
}

type hop struct{ node, level int }

// New creates n resting muscles. neighbors returns the adjacency of node i;
// nil means the muscles are independent.
func New(n int, neighbors func(i int) []int, p Params) *Tissue {
	t := &Tissue{
		Params:    p,
		muscles:   make([]Muscle, n),
		neighbors: neighbors,
		held:      make([]bool, n),
		drive:     make([]float64, n),
		visited:   make([]bool, n),
	}
	for i := range t.muscles {
		t.muscles[i] = NewMuscle()
	}
	return t
}

func (t *Tissue) adjacent(i int) []int {
	if t.neighbors == nil {
		return nil
	}
	return t.neighbors(i)
}

// Update advances every muscle one tick. levels holds the binary input
// activation per node and must have one entry per muscle.
func (t *Tissue) Update(levels []float64) {
	for i := range t.muscles {
		down := i < len(levels) && levels[i] > 0
		if down {
			amount := t.Params.Sustain
			if !t.held[i] {
				amount = t.Params.Boost
			}
			t.muscles[i].Pump(amount)
			t.propagate(i, t.muscles[i].Force)
		}
		t.held[i] = down
	}

	for i := range t.muscles {
		level := 0.0
		if i < len(levels) {
			level = levels[i]
		}
		nb := t.adjacent(i)
		if len(nb) > 0 && t.Params.Coupling != 0 {
			sum := 0.0
			for _, j := range nb {
				sum += t.muscles[j].excess()
			}
			if d := sum/float64(len(nb)) - t.muscles[i].excess(); d > couplingEpsilon {
				level += d * t.Params.Coupling
			}
		}
		t.drive[i] = clamp01(level)
	}

	for i := range t.muscles {
		t.muscles[i].Update(t.drive[i])
	}
}

// propagate tops up muscles reachable from src so that a muscle k hops away
// holds at least force*Cap^k, visiting each muscle once in BFS order.
func (t *Tissue) propagate(src int, force float64) {
	for i := range t.visited {
		t.visited[i] = false
	}
	t.visited[src] = true
	t.queue = append(t.queue[:0], hop{src, 0})

	for len(t.queue) > 0 {
		cur := t.queue[0]
		t.queue = t.queue[1:]
		target := force * pow(t.Params.Cap, cur.level+1)
		for _, j := range t.adjacent(cur.node) {
			if t.visited[j] {
				continue
			}
			t.visited[j] = true
			if m := &t.muscles[j]; m.Force < target {
				m.Pump(target - m.Force)
			}
			t.queue = append(t.queue, hop{j, cur.level + 1})
		}
	}
}

func pow(x float64, n int) float64 {
	out := 1.0
	for ; n > 0; n-- {
		out *= x
	}
	return out
}

// Gain returns the pull multiplier of node i in [0, 1].
func (t *Tissue) Gain(i int) float64 { return t.muscles[i].Gain() }

func (t *Tissue) Len() int { return len(t.muscles) }

func (t *Tissue) Muscle(i int) Muscle { return t.muscles[i] }

// MeanForce is the average force across the network.
func (t *Tissue) MeanForce() float64 {
	if len(t.muscles) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range t.muscles {
		sum += m.Force
	}
	return sum / float64(len(t.muscles))
}

// Reset returns every muscle to rest.
func (t *Tissue) Reset() {
	for i := range t.muscles {
		t.muscles[i] = NewMuscle()
		t.held[i] = false
	}
}
