// Package message is the thin typed layer over pkg/frame: it prepends a
// type byte and connection id to every encoded frame, and splits a
// decoded frame's payload back into (type, conn id, tail) on the way in.
package message

import (
	"encoding/binary"
	"fmt"

	"github.com/librescoot/serlink/pkg/frame"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// Type is the single-byte message type tag from spec.md §3.
type Type byte

const (
	SYN    Type = 0x01
	SYNACK Type = 0x02
	ACK    Type = 0x03
	DATA   Type = 0x10
	FIN    Type = 0x20
	FINACK Type = 0x21
)

func (t Type) String() string {
	switch t {
	case SYN:
		return "SYN"
	case SYNACK:
		return "SYN-ACK"
	case ACK:
		return "ACK"
	case DATA:
		return "DATA"
	case FIN:
		return "FIN"
	case FINACK:
		return "FIN-ACK"
	default:
		return fmt.Sprintf("Type(0x%02x)", byte(t))
	}
}

func isKnownType(t Type) bool {
	switch t {
	case SYN, SYNACK, ACK, DATA, FIN, FINACK:
		return true
	default:
		return false
	}
}

// minimum payload: 1 type byte + ConnIDSize
const minPayloadLen = 1 + protocol.ConnIDSize

// EncodeControl builds a frame for a type with no tail (SYN, SYN-ACK, FIN,
// FIN-ACK).
func EncodeControl(t Type, connID protocol.ConnID, cfg protocol.Config) ([]byte, error) {
	payload := make([]byte, 0, minPayloadLen)
	payload = append(payload, byte(t))
	payload = append(payload, connID[:]...)
	return frame.Encode(payload, cfg)
}

// EncodeAckWithParams builds the ACK frame carrying the negotiated session
// parameters: [ACK][conn_id][msg_count_le].
func EncodeAckWithParams(connID protocol.ConnID, params protocol.SessionParams, cfg protocol.Config) ([]byte, error) {
	payload := make([]byte, 0, minPayloadLen+4)
	payload = append(payload, byte(ACK))
	payload = append(payload, connID[:]...)
	var mc [4]byte
	binary.LittleEndian.PutUint32(mc[:], params.MsgCount)
	payload = append(payload, mc[:]...)
	return frame.Encode(payload, cfg)
}

// EncodeData builds a DATA frame carrying an opaque payload.
func EncodeData(connID protocol.ConnID, data []byte, cfg protocol.Config) ([]byte, error) {
	payload := make([]byte, 0, minPayloadLen+len(data))
	payload = append(payload, byte(DATA))
	payload = append(payload, connID[:]...)
	payload = append(payload, data...)
	return frame.Encode(payload, cfg)
}

// Decode reads one frame via pkg/frame and splits its payload into
// (type, conn id, tail, crcOK). It wraps protocol.ErrEncoding for a
// too-short payload or an unrecognized type byte; callers are expected to
// treat an unknown type as discardable noise, per spec.md §3.
func Decode(r port.Reader, cfg protocol.Config) (t Type, connID protocol.ConnID, tail []byte, crcOK bool, err error) {
	payload, crcOK, err := frame.Decode(r, cfg)
	if err != nil {
		return 0, connID, nil, false, err
	}

	if len(payload) < minPayloadLen {
		return 0, connID, nil, false, fmt.Errorf("%w: payload too short (%d bytes)", protocol.ErrEncoding, len(payload))
	}

	t = Type(payload[0])
	if !isKnownType(t) {
		return 0, connID, nil, false, fmt.Errorf("%w: unknown type 0x%02x", protocol.ErrEncoding, payload[0])
	}

	copy(connID[:], payload[1:1+protocol.ConnIDSize])
	if len(payload) > minPayloadLen {
		tail = payload[minPayloadLen:]
	}
	return t, connID, tail, crcOK, nil
}

// DecodeAckParams extracts SessionParams from an ACK message's tail. The
// tail must contain at least 4 bytes for msg_count; a shorter tail is a
// protocol.ErrEncoding (the ACK is treated as mandatory-params-missing by
// callers, per spec.md §4.3).
func DecodeAckParams(tail []byte) (protocol.SessionParams, error) {
	if len(tail) < 4 {
		return protocol.SessionParams{}, fmt.Errorf("%w: ACK tail too short for msg_count (%d bytes)", protocol.ErrEncoding, len(tail))
	}
	return protocol.SessionParams{MsgCount: binary.LittleEndian.Uint32(tail[:4])}, nil
}
