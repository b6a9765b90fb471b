package report

import (
	"fmt"

	"github.com/librescoot/serlink/pkg/protocol"
)

// Report is the small interface every printable report satisfies, per
// spec.md §9: reports are print-only and never mutate.
type Report interface {
	Print()
	Success() bool
}

// PeeringReport is printed once the handshake finishes, success or not.
type PeeringReport struct {
	Connected bool
	ConnID    protocol.ConnID
	Role      protocol.Role
	Err       error
	MsgCount  *uint32 // server only, when known
}

func (r PeeringReport) Print() {
	if r.Connected {
		fmt.Printf("Peering: SUCCESS (id=%x, role=%s)\n", r.ConnID, r.Role)
		if r.MsgCount != nil {
			fmt.Printf("Session params: msg_count=%d\n", *r.MsgCount)
		}
		return
	}
	fmt.Printf("Peering: FAILED (%v)\n", r.Err)
}

func (r PeeringReport) Success() bool {
	return r.Connected
}

// SessionReport is printed once the session engine finishes, success or
// not.
type SessionReport struct {
	Result SessionResult
}

func (r SessionReport) Print() {
	res := r.Result

	if res.Success {
		fmt.Printf("Session: SUCCESS (%d sent, %d received, %d ok, %d errors)\n",
			res.Sent, res.Received, res.CRCOk, res.CRCErrors)
	} else {
		fmt.Printf("Session: FAILED (%v)\n", res.Err)
		if res.Sent > 0 || res.Received > 0 {
			fmt.Printf("         (%d sent, %d received, %d ok, %d errors)\n",
				res.Sent, res.Received, res.CRCOk, res.CRCErrors)
		}
		return
	}

	if res.Elapsed > 0 && (res.BytesSent > 0 || res.BytesReceived > 0) {
		baud := res.ThroughputBaud(10)
		kbps := res.ThroughputKbps()
		fmt.Printf("Throughput: %.0f baud (%.2f Kbps) over %.1fs\n", baud, kbps, res.Elapsed.Seconds())
		if res.Elapsed < ThroughputMinDuration {
			fmt.Println("(Note: throughput from short test may not reflect sustained performance)")
		}
	}

	if latency := res.LatencyStats(); latency != nil {
		fmt.Printf("Latency: avg=%.2fms min=%.2fms max=%.2fms\n", latency.AvgMs, latency.MinMs, latency.MaxMs)
		fmt.Printf("         p50=%.2fms p95=%.2fms p99=%.2fms (n=%d)\n", latency.P50Ms, latency.P95Ms, latency.P99Ms, latency.Count)
	}
}

func (r SessionReport) Success() bool {
	return r.Result.Success && r.Result.CRCPassRate() == 100.0
}
