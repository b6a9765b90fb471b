// Package protocol holds the shared types and tunables consumed by every
// other package in serlink: the connection state, the peer role, and the
// configuration struct that replaces the original tool's global state and
// environment variables.
package protocol

import (
	"os"
	"strconv"
	"time"
)

// ConnIDSize is the length in bytes of a connection identifier.
const ConnIDSize = 4

// ConnID identifies one client/server session. It is random, not
// authenticating: it only disambiguates concurrent or stale sessions.
type ConnID [ConnIDSize]byte

// Role distinguishes the two halves of the protocol.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// SessionParams is negotiated once, in the client's ACK. Its only field
// today is MsgCount; the server uses the received value verbatim for the
// duration of the session.
type SessionParams struct {
	MsgCount uint32
}

// Connection is produced by either handshake half on success and is
// immutable afterward.
type Connection struct {
	ConnID         ConnID
	Role           Role
	SessionParams  SessionParams
}

// Config collects every tunable the core needs. It replaces the original
// tool's module-level logger level and SERIAL_LOG_INTERVAL environment
// variable with a single typed value passed explicitly by callers.
type Config struct {
	// LogProgressInterval is how often (in rounds) the session engine logs
	// progress. Zero disables progress logging.
	LogProgressInterval uint32

	// MaxMessageLength bounds a frame's declared payload length; a longer
	// declared length triggers resync instead of allocation.
	MaxMessageLength uint32

	// MaxResyncBytes bounds how far the frame decoder scans for sync magic
	// before giving up.
	MaxResyncBytes uint32

	// MinPayload and MaxPayload bound the length of a randomly generated
	// session payload.
	MinPayload uint16
	MaxPayload uint16

	// ClientTimeout is how long the client waits for SYN-ACK, and how long
	// the server waits for the first SYN, during handshake.
	ClientTimeout time.Duration
	// SynInterval is how often SYN (client) or SYN-ACK (server) is
	// retransmitted while waiting for the next handshake message.
	SynInterval time.Duration
	// AckTimeout is how long the server waits for ACK once SYN-ACK has been
	// sent.
	AckTimeout time.Duration

	// FinWaitTimeout bounds how long either side waits for FIN/FIN-ACK
	// during shutdown.
	FinWaitTimeout time.Duration
	// FinInterval is how often the client retransmits FIN while waiting
	// for FIN-ACK.
	FinInterval time.Duration

	// ReadPollInterval is not read by the handshake, session or shutdown
	// loops: each poll uses the port's own internal read timeout
	// (port.DefaultReadTimeout for the ports in pkg/port).
	ReadPollInterval time.Duration
}

// DefaultConfig mirrors the recommended defaults in the specification.
func DefaultConfig() Config {
	return Config{
		LogProgressInterval: logIntervalFromEnv(100),
		MaxMessageLength:    4096,
		MaxResyncBytes:      8192,
		MinPayload:          16,
		MaxPayload:          256,
		ClientTimeout:       60 * time.Second,
		SynInterval:         2 * time.Second,
		AckTimeout:          10 * time.Second,
		FinWaitTimeout:      5 * time.Second,
		FinInterval:         500 * time.Millisecond,
		ReadPollInterval:    100 * time.Millisecond,
	}
}

// logIntervalFromEnv reads SERLINK_LOG_INTERVAL the way the original tool
// read SERIAL_LOG_INTERVAL, falling back to def on absence or parse error.
func logIntervalFromEnv(def uint32) uint32 {
	v := os.Getenv("SERLINK_LOG_INTERVAL")
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}
