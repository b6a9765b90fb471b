// Package report holds the reporting value types: LatencyStats and
// SessionResult are computed, immutable value types with methods rather
// than memoized attributes (per spec.md §9's "dataclass reports with
// computed properties" design note); PeeringReport and SessionReport are
// print-only views over them.
package report

import (
	"sort"
	"time"
)

// LatencyStats is derived from a set of RTT samples. It is never
// constructed directly outside this package; use ComputeLatencyStats.
type LatencyStats struct {
	Count  int
	MinMs  float64
	MaxMs  float64
	AvgMs  float64
	P50Ms  float64
	P95Ms  float64
	P99Ms  float64
}

// ComputeLatencyStats computes LatencyStats from RTT samples. It returns
// nil for an empty slice. Percentiles use nearest-rank on sorted samples:
// index = floor(p/100 * (n-1)).
func ComputeLatencyStats(samples []time.Duration) *LatencyStats {
	if len(samples) == 0 {
		return nil
	}

	ms := make([]float64, len(samples))
	for i, s := range samples {
		ms[i] = float64(s) / float64(time.Millisecond)
	}
	sort.Float64s(ms)

	percentile := func(p float64) float64 {
		idx := int(p / 100 * float64(len(ms)-1))
		return ms[idx]
	}

	var sum float64
	for _, v := range ms {
		sum += v
	}

	return &LatencyStats{
		Count: len(ms),
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: sum / float64(len(ms)),
		P50Ms: percentile(50),
		P95Ms: percentile(95),
		P99Ms: percentile(99),
	}
}

// SessionResult accumulates during the session engine. RTTSamples is
// populated client-side only, and only for CRC-OK responses.
type SessionResult struct {
	Success        bool
	Sent           uint32
	Received       uint32
	CRCOk          uint32
	CRCErrors      uint32
	BytesSent      uint64
	BytesReceived  uint64
	RTTSamples     []time.Duration
	Elapsed        time.Duration
	Err            error
	FinAckReceived bool // client
	FinReceived    bool // server
}

// CRCPassRate returns the percentage (0-100) of received messages whose
// CRC matched.
func (r SessionResult) CRCPassRate() float64 {
	if r.Received == 0 {
		return 0
	}
	return (float64(r.CRCOk) / float64(r.Received)) * 100
}

// LatencyStats computes latency statistics from RTTSamples, or nil if
// there are none.
func (r SessionResult) LatencyStats() *LatencyStats {
	return ComputeLatencyStats(r.RTTSamples)
}

// TotalBytes is bytes sent plus bytes received.
func (r SessionResult) TotalBytes() uint64 {
	return r.BytesSent + r.BytesReceived
}

// ThroughputBps returns total bytes per elapsed second, or 0 if Elapsed is
// not positive.
func (r SessionResult) ThroughputBps() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.TotalBytes()) / secs
}

// ThroughputBaud returns throughput in baud (bits/second including
// start/stop framing), default bitsPerByte=10 for 8N1.
func (r SessionResult) ThroughputBaud(bitsPerByte int) float64 {
	if bitsPerByte <= 0 {
		bitsPerByte = 10
	}
	return r.ThroughputBps() * float64(bitsPerByte)
}

// ThroughputKbps returns throughput in kilobits per second (8 bits/byte,
// no start/stop framing overhead).
func (r SessionResult) ThroughputKbps() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return (float64(r.TotalBytes()) * 8 / secs) / 1000
}

// ThroughputMinDuration is the minimum elapsed time below which throughput
// numbers are flagged as unreliable.
const ThroughputMinDuration = 30 * time.Second
