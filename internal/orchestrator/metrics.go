package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors the orchestrator's ~500ms
// poll loop updates (spec.md §4.6, SPEC_FULL.md §A). A fresh registry
// is created per orchestrator instance so tests never collide with a
// process-wide default registry.
type Metrics struct {
	Registry     *prometheus.Registry
	KeyRate      prometheus.Gauge   // smoothed aggregate Mkeys/sec.
	TotalKeys    prometheus.Counter // cumulative candidates visited.
	ActiveWorkers prometheus.Gauge
	Rekeys       prometheus.Counter
	Matches      prometheus.Counter
}

// NewMetrics registers and returns a fresh Metrics set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		KeyRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "btc_bruteforce_key_rate_mkeys_per_sec",
			Help: "Smoothed aggregate key-generation rate in millions of keys per second.",
		}),
		TotalKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btc_bruteforce_total_keys",
			Help: "Cumulative candidate scalars visited across all workers.",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "btc_bruteforce_active_workers",
			Help: "Number of workers currently in the Running phase.",
		}),
		Rekeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btc_bruteforce_rekeys_total",
			Help: "Total number of rekey events issued across all workers.",
		}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btc_bruteforce_matches_total",
			Help: "Total number of reconstructed, verified matches reported.",
		}),
	}
	reg.MustRegister(m.KeyRate, m.TotalKeys, m.ActiveWorkers, m.Rekeys, m.Matches)
	return m
}

// movingAverage is an 8-sample moving average of the key rate, per
// spec.md §4.6.
type movingAverage struct {
	samples [8]float64
	count   int
	next    int
}

func (m *movingAverage) add(v float64) float64 {
	m.samples[m.next] = v
	m.next = (m.next + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	var sum float64
	for i := 0; i < m.count; i++ {
		sum += m.samples[i]
	}
	return sum / float64(m.count)
}
