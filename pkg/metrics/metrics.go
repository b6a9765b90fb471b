// Package metrics exposes the session/CRC/throughput numbers the CLI
// prints per-run as Prometheus collectors too, for a server running in
// persistent-listen mode over a long soak test. It is additive: nothing
// in the protocol packages depends on it, and a caller that never wires
// it up pays nothing beyond the registration cost.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/librescoot/serlink/pkg/protocol"
	"github.com/librescoot/serlink/pkg/report"
)

// Metrics bundles the collectors a client or server run updates after
// each session. Construct with New and register with a
// prometheus.Registerer (prometheus.DefaultRegisterer in the common case).
type Metrics struct {
	sessionsTotal *prometheus.CounterVec
	crcErrors     prometheus.Counter
	bytesTotal    *prometheus.CounterVec
	rttSeconds    prometheus.Histogram
}

// New constructs Metrics for the given role ("client" or "server") and
// registers its collectors with reg.
func New(reg prometheus.Registerer, role protocol.Role) *Metrics {
	roleLabel := role.String()

	m := &Metrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "serlink_sessions_total",
			Help:        "Total completed sessions by outcome.",
			ConstLabels: prometheus.Labels{"role": roleLabel},
		}, []string{"outcome"}),
		crcErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "serlink_crc_errors_total",
			Help:        "Total CRC mismatches observed across all sessions.",
			ConstLabels: prometheus.Labels{"role": roleLabel},
		}),
		bytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "serlink_bytes_total",
			Help:        "Total bytes moved across all sessions, by direction.",
			ConstLabels: prometheus.Labels{"role": roleLabel},
		}, []string{"direction"}),
		rttSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "serlink_rtt_seconds",
			Help:        "Round-trip time of CRC-OK data rounds, client only.",
			ConstLabels: prometheus.Labels{"role": roleLabel},
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
	}

	reg.MustRegister(m.sessionsTotal, m.crcErrors, m.bytesTotal, m.rttSeconds)
	return m
}

// Observe records one completed session's result.
func (m *Metrics) Observe(r report.SessionResult) {
	outcome := "success"
	if !r.Success {
		outcome = "failure"
	} else if r.CRCPassRate() < 100.0 {
		outcome = "crc_errors"
	}
	m.sessionsTotal.WithLabelValues(outcome).Inc()

	m.crcErrors.Add(float64(r.CRCErrors))
	m.bytesTotal.WithLabelValues("sent").Add(float64(r.BytesSent))
	m.bytesTotal.WithLabelValues("received").Add(float64(r.BytesReceived))

	for _, rtt := range r.RTTSamples {
		m.rttSeconds.Observe(time.Duration(rtt).Seconds())
	}
}
