package swarm

import "time"

// Shuffler turns wall-clock time into reshuffle events at a fixed interval,
// independent of how often it is polled.
type Shuffler struct {
	Interval time.Duration
	last     time.Time
	started  bool
}

// Due returns how many intervals elapsed since the last event, capped at
// MaxCatchUp. The first call only records the start time. The event clock
// advances by whole intervals so a jittery poll cadence does not drift.
func (s *Shuffler) Due(now time.Time) int {
	if s.Interval <= 0 {
		return 0
	}
	if !s.started {
		s.last, s.started = now, true
		return 0
	}
	elapsed := now.Sub(s.last)
	if elapsed < s.Interval {
		return 0
	}
	k := int(elapsed / s.Interval)
	if k > MaxCatchUp {
		s.last = now
		return MaxCatchUp
	}
	s.last = s.last.Add(time.Duration(k) * s.Interval)
	return k
}

// Reset forgets the start time.
func (s *Shuffler) Reset() { s.started = false }
