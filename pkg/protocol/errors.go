package protocol

import "errors"

// Error kinds named in the specification. Handshake, session and shutdown
// loops pattern-match on these rather than catching broadly, per the
// "multiple exception types for control flow" design note: the original
// tool's separate exception hierarchy collapses here into a single sum of
// sentinel-wrapped errors.
var (
	// ErrTransport covers a port read/write failure, a write/read timeout,
	// or a frame decode that failed on incomplete bytes.
	ErrTransport = errors.New("protocol: transport error")

	// ErrEncoding covers a frame that decoded fine but whose typed payload
	// is malformed: unknown type byte, truncated ACK.
	ErrEncoding = errors.New("protocol: encoding error")

	// ErrConnectionMismatch means a decoded frame named a different conn_id
	// than the one this call is bound to.
	ErrConnectionMismatch = errors.New("protocol: connection id mismatch")

	// ErrUnexpectedMessage means a valid typed frame arrived that is not
	// expected in the current state, e.g. a SYN-ACK during a session.
	ErrUnexpectedMessage = errors.New("protocol: unexpected message type")

	// ErrPeeringTimeout means a handshake phase exceeded its budget.
	ErrPeeringTimeout = errors.New("protocol: peering timeout")

	// ErrSessionTimeout means a round-trip wait during the session engine
	// exceeded its budget.
	ErrSessionTimeout = errors.New("protocol: session timeout")

	// ErrPeerFin means the peer sent FIN before the expected count of
	// messages completed.
	ErrPeerFin = errors.New("protocol: peer sent FIN early")
)
