// Package session implements the request/response exchange described in
// spec.md §4.4/§4.5: after handshake, the client drives msg_count rounds
// measuring RTT, the server echoes payloads, and either side may see the
// exchange end early via FIN. It is a direct port of the original tool's
// session/exchange.py.
package session

import (
	"fmt"
	"log"
	"time"

	"github.com/librescoot/serlink/pkg/entropy"
	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
	"github.com/librescoot/serlink/pkg/report"
	"github.com/librescoot/serlink/pkg/shutdown"
)

// ClientExchange sends msg_count DATA messages, waits for an echo to
// each, and measures RTT for CRC-OK responses. msg_count=0 skips straight
// to shutdown. It always runs shutdown.Client before returning, whether
// the loop completed cleanly or not, except when it aborts due to a
// received FIN (the peer already hung up, so there is nothing to tear
// down beyond what already happened).
func ClientExchange(p port.Port, conn protocol.Connection, cfg protocol.Config, rnd entropy.Source, logger *log.Logger) report.SessionResult {
	var stats sessionStats
	start := time.Now()

	msgCount := conn.SessionParams.MsgCount
	logger.Printf("Client: starting session exchange (msg_count=%d)", msgCount)

	if msgCount == 0 {
		logger.Printf("Client: msg_count=0, skipping exchange")
		stats.elapsed = time.Since(start)
		finAck := shutdown.Client(p, conn, cfg, logger)
		return stats.result(true, nil, finAck, false)
	}

	for i := uint32(0); i < msgCount; i++ {
		payload := rnd.Payload(cfg.MinPayload, cfg.MaxPayload)

		rttStart := time.Now()
		n, err := sendData(p, conn, payload, cfg)
		if err == nil {
			stats.sent++
			stats.bytesSent += uint64(n)
		}

		data, crcOK, msgType, err := recvData(p, conn, cfg)
		if err != nil {
			stats.elapsed = time.Since(start)
			logger.Printf("Client: timeout waiting for response to message %d: %v", i+1, err)
			finAck := shutdown.Client(p, conn, cfg, logger)
			return stats.result(false, errTimeout(i+1), finAck, false)
		}

		switch msgType {
		case message.DATA:
			stats.received++
			if len(data) > 0 {
				stats.bytesReceived += uint64(len(data))
			}
			if crcOK {
				stats.crcOk++
				rtt := time.Since(rttStart)
				stats.rtt = append(stats.rtt, rtt)
				if cfg.LogProgressInterval > 0 && (i+1)%cfg.LogProgressInterval == 0 {
					logger.Printf("Client: progress %d/%d (RTT=%.2fms)", i+1, msgCount, float64(rtt)/float64(time.Millisecond))
				}
			} else {
				stats.crcErrors++
				logger.Printf("Client: CRC error on response %d/%d", i+1, msgCount)
			}
		case message.FIN:
			stats.elapsed = time.Since(start)
			logger.Printf("Client: server sent FIN during exchange")
			return stats.result(false, protocol.ErrPeerFin, false, false)
		}
	}

	stats.elapsed = time.Since(start)
	logger.Printf("Client: exchange complete (%d sent, %d received, %d ok, %d errors)",
		stats.sent, stats.received, stats.crcOk, stats.crcErrors)

	logger.Printf("Client: initiating shutdown")
	finAck := shutdown.Client(p, conn, cfg, logger)

	return stats.result(true, nil, finAck, false)
}

func errTimeout(round uint32) error {
	return fmt.Errorf("%w: round %d", protocol.ErrSessionTimeout, round)
}
