// Package frame implements the self-delimiting wire envelope described in
// spec.md §3/§4.1: a sync-magic-prefixed, length-prefixed, CRC32-suffixed
// frame that can resynchronize after buffer corruption or a mid-stream
// join. It knows nothing about message types; pkg/message builds on
// top of it.
package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

// SyncMagic is the 4-byte little-endian magic that opens every frame:
// 0x5E5A1000, i.e. the wire bytes 00 10 5A 5E.
const SyncMagic uint32 = 0x5E5A1000

// HeaderSize is sync(4) + length(4); TrailerSize is crc32(4).
const (
	HeaderSize  = 8
	TrailerSize = 4
	Overhead    = HeaderSize + TrailerSize
)

var syncMagicBytes = func() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], SyncMagic)
	return b
}()

// Encode produces sync || len_le(len(payload)) || payload ||
// crc32_le(crc32(payload)). It fails if payload exceeds cfg.MaxMessageLength.
func Encode(payload []byte, cfg protocol.Config) ([]byte, error) {
	if uint32(len(payload)) > cfg.MaxMessageLength {
		return nil, fmt.Errorf("%w: payload length %d exceeds max %d", protocol.ErrEncoding, len(payload), cfg.MaxMessageLength)
	}

	out := make([]byte, 0, Overhead+len(payload))
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], SyncMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	out = append(out, hdr[:]...)
	out = append(out, payload...)

	var crcBytes [TrailerSize]byte
	binary.LittleEndian.PutUint32(crcBytes[:], crc32.ChecksumIEEE(payload))
	out = append(out, crcBytes[:]...)
	return out, nil
}

// Decode reads one frame from r, scanning for sync magic to resynchronize
// if the stream is misaligned. It returns (payload, crcOK) on success.
// A CRC mismatch is not an error: the payload is still returned so the
// caller can count it as a corrupt-but-arrived message. Any short read,
// an unrecoverable resync scan, or an over-length declared size returns a
// wrapped protocol.ErrTransport; callers retry on their next poll tick,
// which naturally resynchronizes past the bad length field.
func Decode(r port.Reader, cfg protocol.Config) (payload []byte, crcOK bool, err error) {
	var window [4]byte
	n, err := r.Read(window[:])
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	if n < 4 {
		return nil, false, fmt.Errorf("%w: short read scanning for sync", protocol.ErrTransport)
	}

	var scanned uint32
	for window != syncMagicBytes {
		if scanned >= cfg.MaxResyncBytes {
			return nil, false, fmt.Errorf("%w: failed to resync after %d bytes", protocol.ErrTransport, scanned)
		}

		var next [1]byte
		nn, err := r.Read(next[:])
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
		}
		if nn < 1 {
			return nil, false, fmt.Errorf("%w: short read during resync", protocol.ErrTransport)
		}

		window[0], window[1], window[2], window[3] = window[1], window[2], window[3], next[0]
		scanned++
	}

	var lenBytes [4]byte
	n, err = r.Read(lenBytes[:])
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	if n < 4 {
		return nil, false, fmt.Errorf("%w: short read for length", protocol.ErrTransport)
	}

	length := binary.LittleEndian.Uint32(lenBytes[:])
	if length > cfg.MaxMessageLength {
		return nil, false, fmt.Errorf("%w: declared length %d exceeds max %d", protocol.ErrTransport, length, cfg.MaxMessageLength)
	}

	payload = make([]byte, length)
	if length > 0 {
		n, err = r.Read(payload)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
		}
		if uint32(n) < length {
			return nil, false, fmt.Errorf("%w: short read for payload", protocol.ErrTransport)
		}
	}

	var crcBytes [4]byte
	n, err = r.Read(crcBytes[:])
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	if n < 4 {
		return nil, false, fmt.Errorf("%w: short read for crc", protocol.ErrTransport)
	}

	declaredCRC := binary.LittleEndian.Uint32(crcBytes[:])
	actualCRC := crc32.ChecksumIEEE(payload)
	return payload, declaredCRC == actualCRC, nil
}
