package handshake

import (
	"fmt"
	"log"
	"time"

	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// Server performs the server-side three-way handshake:
//  1. Drain stale input.
//  2. Listen for a first SYN (up to cfg.ClientTimeout), adopting its
//     connection id.
//  3. Send SYN-ACK every cfg.SynInterval until a matching ACK with
//     well-formed session params arrives, or cfg.AckTimeout elapses.
//
// Returns a Connection on success or a wrapped protocol.ErrPeeringTimeout.
func Server(p port.Port, cfg protocol.Config, logger *log.Logger) (protocol.Connection, error) {
	if err := p.DrainInput(); err != nil {
		return protocol.Connection{}, fmt.Errorf("handshake: drain input: %w", err)
	}

	connID, err := serverWaitForSyn(p, cfg, logger)
	if err != nil {
		return protocol.Connection{}, err
	}

	params, err := serverSendSynAckWaitAck(p, cfg, connID, logger)
	if err != nil {
		return protocol.Connection{}, err
	}

	return protocol.Connection{
		ConnID:        connID,
		Role:          protocol.RoleServer,
		SessionParams: params,
	}, nil
}

func serverWaitForSyn(p port.Port, cfg protocol.Config, logger *log.Logger) (protocol.ConnID, error) {
	deadline := time.Now().Add(cfg.ClientTimeout)

	for time.Now().Before(deadline) {
		t, recvID, _, crcOK, err := message.Decode(p, cfg)
		if err != nil {
			continue
		}

		if t == message.SYN && crcOK {
			logger.Printf("Server: received SYN (id=%x)", recvID)
			return recvID, nil
		}
		// Any other type is ignored while listening.
	}

	return protocol.ConnID{}, fmt.Errorf("%w: server timeout (%s) waiting for client SYN", protocol.ErrPeeringTimeout, cfg.ClientTimeout)
}

func serverSendSynAckWaitAck(p port.Port, cfg protocol.Config, connID protocol.ConnID, logger *log.Logger) (protocol.SessionParams, error) {
	synAckFrame, err := message.EncodeControl(message.SYNACK, connID, cfg)
	if err != nil {
		return protocol.SessionParams{}, fmt.Errorf("handshake: encode syn-ack: %w", err)
	}

	deadline := time.Now().Add(cfg.AckTimeout)
	var lastSynAck time.Time

	for time.Now().Before(deadline) {
		if time.Since(lastSynAck) > cfg.SynInterval {
			if _, err := p.Write(synAckFrame); err != nil {
				return protocol.SessionParams{}, fmt.Errorf("%w: write syn-ack: %v", protocol.ErrTransport, err)
			}
			lastSynAck = time.Now()
			logger.Printf("Server: sent SYN-ACK")
		}

		t, recvID, tail, crcOK, err := message.Decode(p, cfg)
		if err != nil {
			continue
		}

		if recvID != connID {
			// Noise from a prior or unrelated session.
			continue
		}

		switch {
		case t == message.ACK && crcOK:
			params, err := message.DecodeAckParams(tail)
			if err != nil {
				// Session params are mandatory: an ACK without them is
				// treated as not received at all. The client won't
				// retransmit ACK, so this deliberately becomes a timeout.
				logger.Printf("Server: received ACK without session params, ignoring")
				continue
			}
			logger.Printf("Server: received ACK, connection established (id=%x)", connID)
			logger.Printf("Server: session params: msg_count=%d", params.MsgCount)
			return params, nil

		case t == message.SYN:
			// Duplicate SYN: client may not have seen our SYN-ACK yet.
			// The next retransmit tick covers it.
			logger.Printf("Server: received duplicate SYN, will retransmit SYN-ACK")
			continue
		}
	}

	return protocol.SessionParams{}, fmt.Errorf("%w: server timeout (%s) waiting for ACK", protocol.ErrPeeringTimeout, cfg.AckTimeout)
}
