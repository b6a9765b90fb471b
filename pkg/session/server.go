package session

import (
	"log"
	"time"

	"github.com/librescoot/serlink/pkg/entropy"
	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
	"github.com/librescoot/serlink/pkg/report"
	"github.com/librescoot/serlink/pkg/shutdown"
)

// ServerExchange receives msg_count DATA messages from the client,
// echoing each back (substituting a fresh random payload if the client's
// data was empty, so the response direction always exercises the wire).
// msg_count=0 skips straight to waiting for FIN. After the loop, the
// server waits for the client's FIN and answers with a single FIN-ACK.
func ServerExchange(p port.Port, conn protocol.Connection, cfg protocol.Config, rnd entropy.Source, logger *log.Logger) report.SessionResult {
	var stats sessionStats
	start := time.Now()

	msgCount := conn.SessionParams.MsgCount
	logger.Printf("Server: starting session exchange (msg_count=%d)", msgCount)

	if msgCount == 0 {
		logger.Printf("Server: msg_count=0, waiting for FIN")
		stats.elapsed = time.Since(start)
		finReceived := shutdown.WaitForFin(p, conn, cfg.FinWaitTimeout, cfg, logger)
		if finReceived {
			if err := shutdown.Server(p, conn, cfg, logger); err != nil {
				logger.Printf("Server: failed to send FIN-ACK: %v", err)
			}
		}
		return stats.result(true, nil, false, finReceived)
	}

	for i := uint32(0); i < msgCount; i++ {
		data, crcOK, msgType, err := recvData(p, conn, cfg)
		if err != nil {
			stats.elapsed = time.Since(start)
			logger.Printf("Server: timeout waiting for message %d: %v", i+1, err)
			return stats.result(false, errTimeout(i+1), false, false)
		}

		switch msgType {
		case message.DATA:
			handleServerData(p, conn, cfg, rnd, &stats, data, crcOK, i, msgCount, logger)
		case message.FIN:
			stats.elapsed = time.Since(start)
			logger.Printf("Server: client sent FIN after %d messages", stats.received)
			if err := shutdown.Server(p, conn, cfg, logger); err != nil {
				logger.Printf("Server: failed to send FIN-ACK: %v", err)
			}
			return stats.result(false, protocol.ErrPeerFin, false, true)
		}
	}

	stats.elapsed = time.Since(start)
	logger.Printf("Server: exchange complete (%d sent, %d received, %d ok, %d errors)",
		stats.sent, stats.received, stats.crcOk, stats.crcErrors)

	logger.Printf("Server: waiting for client FIN")
	finReceived := shutdown.WaitForFin(p, conn, cfg.FinWaitTimeout, cfg, logger)
	if finReceived {
		if err := shutdown.Server(p, conn, cfg, logger); err != nil {
			logger.Printf("Server: failed to send FIN-ACK: %v", err)
		}
	} else {
		logger.Printf("Server: FIN timeout, closing anyway")
	}

	return stats.result(true, nil, false, finReceived)
}

func handleServerData(p port.Port, conn protocol.Connection, cfg protocol.Config, rnd entropy.Source, stats *sessionStats, data []byte, crcOK bool, i, msgCount uint32, logger *log.Logger) {
	stats.received++
	if len(data) > 0 {
		stats.bytesReceived += uint64(len(data))
	}

	if crcOK {
		stats.crcOk++
	} else {
		stats.crcErrors++
		logger.Printf("Server: CRC error on message %d/%d", i+1, msgCount)
	}

	payload := data
	if len(payload) == 0 {
		payload = rnd.Payload(cfg.MinPayload, cfg.MaxPayload)
	}

	n, err := sendData(p, conn, payload, cfg)
	if err == nil {
		stats.sent++
		stats.bytesSent += uint64(n)
		if cfg.LogProgressInterval > 0 && (i+1)%cfg.LogProgressInterval == 0 {
			logger.Printf("Server: progress %d/%d", i+1, msgCount)
		}
	}
}
