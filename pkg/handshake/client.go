// Package handshake drives the three-way SYN/SYN-ACK/ACK handshake on
// both sides to completion or timeout, per spec.md §4.3. It is a direct
// Go port of the original tool's client/handshake.py and
// server/handshake.py, restructured as one polling loop per handshake
// phase, each calling message.Decode directly.
package handshake

import (
	"fmt"
	"log"
	"time"

	"github.com/librescoot/serlink/pkg/entropy"
	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// Client performs the client-side three-way handshake:
//  1. Drain stale input.
//  2. Generate a random connection id.
//  3. Send SYN every cfg.SynInterval until a matching SYN-ACK arrives or
//     cfg.ClientTimeout elapses.
//  4. Send ACK carrying params. ACK is fire-and-forget and never
//     retransmitted: if it is lost, the server keeps sending SYN-ACK until
//     cfg.AckTimeout elapses and its handshake fails.
//
// Returns a Connection on success or a wrapped protocol.ErrPeeringTimeout.
func Client(p port.Port, cfg protocol.Config, params protocol.SessionParams, rnd entropy.Source, logger *log.Logger) (protocol.Connection, error) {
	if err := p.DrainInput(); err != nil {
		return protocol.Connection{}, fmt.Errorf("handshake: drain input: %w", err)
	}

	connID := rnd.ConnID()
	logger.Printf("Client: initiating connection (id=%x)", connID)

	if err := clientSendSynWaitSynAck(p, cfg, connID, logger); err != nil {
		return protocol.Connection{}, err
	}

	ackFrame, err := message.EncodeAckWithParams(connID, params, cfg)
	if err != nil {
		return protocol.Connection{}, fmt.Errorf("handshake: encode ack: %w", err)
	}
	if _, err := p.Write(ackFrame); err != nil {
		return protocol.Connection{}, fmt.Errorf("%w: write ack: %v", protocol.ErrTransport, err)
	}
	logger.Printf("Client: sent ACK with session params (msg_count=%d), connection established (id=%x)", params.MsgCount, connID)

	return protocol.Connection{
		ConnID:        connID,
		Role:          protocol.RoleClient,
		SessionParams: params,
	}, nil
}

func clientSendSynWaitSynAck(p port.Port, cfg protocol.Config, connID protocol.ConnID, logger *log.Logger) error {
	synFrame, err := message.EncodeControl(message.SYN, connID, cfg)
	if err != nil {
		return fmt.Errorf("handshake: encode syn: %w", err)
	}

	deadline := time.Now().Add(cfg.ClientTimeout)
	var lastSyn time.Time

	for time.Now().Before(deadline) {
		if time.Since(lastSyn) > cfg.SynInterval {
			if _, err := p.Write(synFrame); err != nil {
				return fmt.Errorf("%w: write syn: %v", protocol.ErrTransport, err)
			}
			lastSyn = time.Now()
			logger.Printf("Client: sent SYN")
		}

		t, recvID, _, crcOK, err := message.Decode(p, cfg)
		if err != nil {
			// No frame this tick, or a malformed one: absorbed, not
			// propagated. The loop just keeps polling until deadline.
			continue
		}

		if t == message.SYNACK && recvID == connID && crcOK {
			logger.Printf("Client: received SYN-ACK")
			return nil
		}
		// Wrong conn_id, CRC failure, or an unrelated type: discarded as
		// noise from a prior or unrelated session.
	}

	return fmt.Errorf("%w: client timeout (%s) waiting for SYN-ACK", protocol.ErrPeeringTimeout, cfg.ClientTimeout)
}
