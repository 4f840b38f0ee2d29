package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/musclemesh/internal/metrics"
)

// Registry maps metric names to constructors so runs can select metrics by
// name from the command line.
type Registry struct {
	metrics map[string]func() metrics.Sampler
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() metrics.Sampler),
	}

	r.metrics["energy"] = metrics.NewEnergy
	r.metrics["displacement"] = metrics.NewDisplacement
	r.metrics["swarm_speed"] = metrics.NewSwarmSpeed
	r.metrics["activity"] = metrics.NewActivity
	r.metrics["tissue_force"] = metrics.NewTissueForce
	r.metrics["partition_balance"] = func() metrics.Sampler { return metrics.NewBalance() }
	r.metrics["stability"] = func() metrics.Sampler { return metrics.NewStability() }

	return r
}

func (r *Registry) GetMetric(name string) (metrics.Sampler, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics builds the named metrics, or every registered one when names is
// empty.
func (r *Registry) Metrics(names ...string) ([]metrics.Sampler, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]metrics.Sampler, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
