package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kart-io/naughty-assistant/pkg/infra/pool"
)

// poolCollector reads pool counters at scrape time.
type poolCollector struct {
	pools []*pool.Pool

	running, submitted, rejected, panics *prometheus.Desc
}

// RegisterPools exposes the counters of pools on reg, labelled by pool name.
func RegisterPools(reg prometheus.Registerer, pools ...*pool.Pool) error {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "pool", name), help, []string{"pool"}, nil)
	}
	return reg.Register(&poolCollector{
		pools:     pools,
		running:   desc("running_workers", "Workers currently executing a task."),
		submitted: desc("tasks_started_total", "Tasks picked up by a worker."),
		rejected:  desc("tasks_rejected_total", "Tasks refused because the pool was saturated."),
		panics:    desc("task_panics_total", "Task panics recovered by the pool."),
	})
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.running
	ch <- c.submitted
	ch <- c.rejected
	ch <- c.panics
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.pools {
		s := p.Stats()
		ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, float64(s.Running), p.Name())
		ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(s.Submitted), p.Name())
		ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(s.Rejected), p.Name())
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(s.Panics), p.Name())
	}
}
