package metric

import "github.com/prometheus/client_golang/prometheus"

// StoreSource is read at scrape time.
type StoreSource interface {
	Len() int
}

// LogSource is read at scrape time.
type LogSource interface {
	Size() int64
	Enabled() bool
}

// StoreCollector reports key count and log state without hooks in the
// write path.
type StoreCollector struct {
	store StoreSource
	log   LogSource

	keys       *prometheus.Desc
	aofBytes   *prometheus.Desc
	aofEnabled *prometheus.Desc
}

// NewStoreCollector creates a collector. log may be nil when persistence
// is disabled.
func NewStoreCollector(store StoreSource, log LogSource) *StoreCollector {
	return &StoreCollector{
		store: store,
		log:   log,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Entries held in memory, including expired keys not yet accessed.",
			nil, nil),
		aofBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "aof", "size_bytes"),
			"Current append-only log size.",
			nil, nil),
		aofEnabled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "aof", "enabled"),
			"1 if appends can succeed.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.aofBytes
	ch <- c.aofEnabled
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))

	var size, enabled float64
	if c.log != nil {
		size = float64(c.log.Size())
		if c.log.Enabled() {
			enabled = 1
		}
	}
	ch <- prometheus.MustNewConstMetric(c.aofBytes, prometheus.GaugeValue, size)
	ch <- prometheus.MustNewConstMetric(c.aofEnabled, prometheus.GaugeValue, enabled)
}
