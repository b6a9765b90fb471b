package session

import (
	"fmt"

	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// sendData writes one DATA frame for conn and returns the number of wire
// bytes written (payload length plus frame overhead).
func sendData(p port.Port, conn protocol.Connection, payload []byte, cfg protocol.Config) (int, error) {
	f, err := message.EncodeData(conn.ConnID, payload, cfg)
	if err != nil {
		return 0, fmt.Errorf("session: encode data: %w", err)
	}
	n, err := p.Write(f)
	if err != nil {
		return 0, fmt.Errorf("%w: write data: %v", protocol.ErrTransport, err)
	}
	return n, nil
}

// recvData reads one frame and classifies it as a DATA response or an
// early FIN, filtering by connection id. It mirrors the original tool's
// recv_data: DATA and FIN are expected; anything else is
// protocol.ErrUnexpectedMessage, and a foreign connection id is
// protocol.ErrConnectionMismatch.
func recvData(p port.Port, conn protocol.Connection, cfg protocol.Config) (data []byte, crcOK bool, t message.Type, err error) {
	msgType, recvID, tail, ok, err := message.Decode(p, cfg)
	if err != nil {
		return nil, false, 0, err
	}

	if recvID != conn.ConnID {
		return nil, false, 0, fmt.Errorf("%w: expected conn_id=%x, got %x", protocol.ErrConnectionMismatch, conn.ConnID, recvID)
	}

	switch msgType {
	case message.DATA:
		return tail, ok, message.DATA, nil
	case message.FIN:
		return nil, false, message.FIN, nil
	default:
		return nil, false, 0, fmt.Errorf("%w: expected DATA or FIN, got %s", protocol.ErrUnexpectedMessage, msgType)
	}
}
