package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector reports hub state at scrape time.
type Collector struct {
	state    func() string
	services func() int

	stateDesc    *prometheus.Desc
	servicesDesc *prometheus.Desc
}

// NewCollector creates a collector reading the core state name and the
// number of registered services through the given functions. Either may be
// nil, in which case the corresponding metric is omitted.
func NewCollector(state func() string, services func() int) *Collector {
	return &Collector{
		state:    state,
		services: services,
		stateDesc: prometheus.NewDesc(
			"hub_core_state",
			"Current core state; the series for the active state is 1.",
			[]string{"state"}, nil,
		),
		servicesDesc: prometheus.NewDesc(
			"hub_services_registered",
			"Number of registered services.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stateDesc
	ch <- c.servicesDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.state != nil {
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, 1, c.state())
	}
	if c.services != nil {
		ch <- prometheus.MustNewConstMetric(c.servicesDesc, prometheus.GaugeValue, float64(c.services()))
	}
}
