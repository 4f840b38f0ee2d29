package metrics

import "github.com/san-kum/musclemesh/internal/sim"

// Balance measures how evenly the partition spreads samples over its sites:
// the smallest cell over the largest, 1 for a perfectly even split. Ticks
// without a partition are skipped.
type Balance struct {
	name    string
	current float64
	sum     float64
	samples int
}

func NewBalance() *Balance {
	return &Balance{name: "partition_balance"}
}

func (b *Balance) Name() string { return b.name }

func (b *Balance) Observe(f *sim.Frame) {
	if f.Partition == nil || len(f.Partition.Cells) == 0 {
		return
	}
	lo, hi := -1, 0
	for i := 0; i < f.Layout.Len(); i++ {
		n := f.Partition.Size(i)
		if lo < 0 || n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if hi == 0 {
		return
	}
	b.current = float64(lo) / float64(hi)
	b.sum += b.current
	b.samples++
}

func (b *Balance) Current() float64 { return b.current }

func (b *Balance) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.sum / float64(b.samples)
}

func (b *Balance) Reset() {
	b.current, b.sum, b.samples = 0, 0, 0
}
