package session

import (
	"time"

	"github.com/librescoot/serlink/pkg/report"
)

// sessionStats is the internal accumulator built up during an exchange,
// converted to a report.SessionResult only once the loop is done.
type sessionStats struct {
	sent          uint32
	received      uint32
	crcOk         uint32
	crcErrors     uint32
	bytesSent     uint64
	bytesReceived uint64
	rtt           []time.Duration
	elapsed       time.Duration
}

func (s sessionStats) result(success bool, err error, finAckReceived, finReceived bool) report.SessionResult {
	return report.SessionResult{
		Success:        success,
		Sent:           s.sent,
		Received:       s.received,
		CRCOk:          s.crcOk,
		CRCErrors:      s.crcErrors,
		BytesSent:      s.bytesSent,
		BytesReceived:  s.bytesReceived,
		RTTSamples:     s.rtt,
		Elapsed:        s.elapsed,
		Err:            err,
		FinAckReceived: finAckReceived,
		FinReceived:    finReceived,
	}
}
