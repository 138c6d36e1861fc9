package store

import "github.com/prometheus/client_golang/prometheus"

var recordsDesc = prometheus.NewDesc(
	"medisync_store_records",
	"Records currently held by the store, by kind.",
	[]string{"kind"}, nil,
)

// Collector exposes the store's record counts to Prometheus. Values are read
// at scrape time.
type Collector struct {
	store *Store
}

func NewCollector(s *Store) *Collector {
	return &Collector{store: s}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counts := c.store.Counts()
	for _, kind := range Kinds() {
		ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(counts[kind]), kind.String())
	}
}
