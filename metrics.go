package simdjson

import "github.com/prometheus/client_golang/prometheus"

// streamMetrics holds the Stream Driver's optional counters. A Stream
// defaults to counters that are not registered with any registry (see
// WithMetricsRegisterer), so importing this package never has global side
// effects on the default prometheus registry.
type streamMetrics struct {
	docsEmitted   prometheus.Counter
	bytesConsumed prometheus.Counter
	batchRewinds  prometheus.Counter
}

func newStreamMetrics(reg prometheus.Registerer) *streamMetrics {
	m := &streamMetrics{
		docsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdjson_docs_emitted_total",
			Help: "Total number of documents yielded by the stream driver.",
		}),
		bytesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdjson_bytes_consumed_total",
			Help: "Total number of input bytes consumed by completed batches.",
		}),
		batchRewinds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdjson_batch_rewinds_total",
			Help: "Total number of times a batch boundary was rewound to a top-level document boundary.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.docsEmitted, m.bytesConsumed, m.batchRewinds)
	}
	return m
}
