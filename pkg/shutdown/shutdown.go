// Package shutdown implements the symmetric FIN/FIN-ACK teardown from
// spec.md §4.6: the client retransmits FIN until FIN-ACK arrives or it
// gives up, and the server fires FIN-ACK once for the first matching FIN.
// The server does not answer later FINs, so a lost FIN-ACK ends with the
// client's wait timing out.
package shutdown

import (
	"log"
	"time"

	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// Client sends FIN and waits for FIN-ACK, retransmitting FIN every
// cfg.FinInterval until it arrives or cfg.FinWaitTimeout elapses. It
// returns whether FIN-ACK was received; a timeout is not an error here,
// since the caller closes the port regardless.
func Client(p port.Port, conn protocol.Connection, cfg protocol.Config, logger *log.Logger) bool {
	logger.Printf("Client: initiating shutdown")

	finFrame, err := message.EncodeControl(message.FIN, conn.ConnID, cfg)
	if err != nil {
		logger.Printf("Client: failed to encode FIN: %v", err)
		return false
	}

	deadline := time.Now().Add(cfg.FinWaitTimeout)
	var lastFin time.Time

	for time.Now().Before(deadline) {
		if time.Since(lastFin) > cfg.FinInterval {
			if _, err := p.Write(finFrame); err != nil {
				logger.Printf("Client: failed to write FIN: %v", err)
			}
			lastFin = time.Now()
			logger.Printf("Client: sent FIN")
		}

		t, recvID, _, crcOK, err := message.Decode(p, cfg)
		if err != nil {
			continue
		}

		if t == message.FINACK && recvID == conn.ConnID && crcOK {
			logger.Printf("Client: received FIN-ACK, shutdown complete")
			return true
		}
		// Ignore everything else while waiting for FIN-ACK.
	}

	logger.Printf("Client: FIN-ACK timeout, closing anyway")
	return false
}

// Server replies to a received FIN with a single FIN-ACK.
func Server(p port.Port, conn protocol.Connection, cfg protocol.Config, logger *log.Logger) error {
	logger.Printf("Server: responding to FIN")
	finAckFrame, err := message.EncodeControl(message.FINACK, conn.ConnID, cfg)
	if err != nil {
		return err
	}
	if _, err := p.Write(finAckFrame); err != nil {
		return err
	}
	logger.Printf("Server: shutdown complete")
	return nil
}

// WaitForFin waits for a FIN message matching conn's id, ignoring
// everything else (DATA included, per spec.md §9's ignore-during-FIN-wait
// decision) until timeout elapses. Used by the server both after
// msg_count=0 exchanges and after the normal exchange loop completes.
func WaitForFin(p port.Port, conn protocol.Connection, timeout time.Duration, cfg protocol.Config, logger *log.Logger) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		t, recvID, _, crcOK, err := message.Decode(p, cfg)
		if err != nil {
			continue
		}

		if t == message.FIN && recvID == conn.ConnID && crcOK {
			logger.Printf("Server: received FIN from peer")
			return true
		}
	}

	logger.Printf("Server: timeout (%s) waiting for FIN", timeout)
	return false
}
