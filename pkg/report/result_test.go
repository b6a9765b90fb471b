package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/serlink/pkg/report"
)

func TestComputeLatencyStatsEmpty(t *testing.T) {
	assert.Nil(t, report.ComputeLatencyStats(nil))
	assert.Nil(t, report.ComputeLatencyStats([]time.Duration{}))
}

func TestComputeLatencyStatsNearestRank(t *testing.T) {
	samples := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
	}

	stats := report.ComputeLatencyStats(samples)
	require.NotNil(t, stats)

	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, 10.0, stats.MinMs)
	assert.Equal(t, 50.0, stats.MaxMs)
	assert.Equal(t, 30.0, stats.AvgMs)
	assert.Equal(t, 30.0, stats.P50Ms)
	assert.Equal(t, 40.0, stats.P95Ms)
	assert.Equal(t, 40.0, stats.P99Ms)
}

func TestCRCPassRate(t *testing.T) {
	r := report.SessionResult{Received: 10, CRCOk: 8}
	assert.InDelta(t, 80.0, r.CRCPassRate(), 0.0001)

	empty := report.SessionResult{}
	assert.Equal(t, 0.0, empty.CRCPassRate())
}

func TestThroughputComputations(t *testing.T) {
	r := report.SessionResult{
		BytesSent:     1000,
		BytesReceived: 1000,
		Elapsed:       1 * time.Second,
	}

	assert.InDelta(t, 2000.0, r.ThroughputBps(), 0.0001)
	assert.InDelta(t, 20000.0, r.ThroughputBaud(10), 0.0001)
	assert.InDelta(t, 16.0, r.ThroughputKbps(), 0.0001)
}

func TestThroughputZeroElapsedIsZero(t *testing.T) {
	r := report.SessionResult{BytesSent: 100, Elapsed: 0}
	assert.Equal(t, 0.0, r.ThroughputBps())
	assert.Equal(t, 0.0, r.ThroughputKbps())
}

func TestTotalBytes(t *testing.T) {
	r := report.SessionResult{BytesSent: 5, BytesReceived: 7}
	assert.Equal(t, uint64(12), r.TotalBytes())
}
