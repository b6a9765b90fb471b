// Package entropy provides the single injected randomness source used for
// connection ids and session payloads. Per spec.md §9, connection ids are
// security-neutral and payload randomness is non-cryptographic; what
// matters is a single injection point so tests can get reproducible
// output with a seeded source instead of crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/librescoot/serlink/pkg/protocol"
)

// Source draws bytes from an underlying io.Reader.
type Source struct {
	r io.Reader
}

// New wraps r as a Source. r must never return an error on Read for the
// lengths used here (4 bytes for a connection id, MinPayload..MaxPayload
// bytes for a payload); math/rand's Read and crypto/rand.Reader both
// satisfy this.
func New(r io.Reader) Source {
	return Source{r: r}
}

// Default returns a Source backed by crypto/rand.Reader, suitable for
// production use.
func Default() Source {
	return New(rand.Reader)
}

// ConnID generates a random 4-byte connection identifier.
func (s Source) ConnID() protocol.ConnID {
	var id protocol.ConnID
	if _, err := io.ReadFull(s.r, id[:]); err != nil {
		panic("entropy: source exhausted generating connection id: " + err.Error())
	}
	return id
}

// Payload generates a random byte slice whose length is uniformly
// distributed in [min, max].
func (s Source) Payload(min, max uint16) []byte {
	size := min
	if max > min {
		span := uint32(max-min) + 1
		var lenBuf [4]byte
		if _, err := io.ReadFull(s.r, lenBuf[:]); err != nil {
			panic("entropy: source exhausted generating payload length: " + err.Error())
		}
		size = min + uint16(binary.LittleEndian.Uint32(lenBuf[:])%span)
	}

	buf := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(s.r, buf); err != nil {
			panic("entropy: source exhausted generating payload: " + err.Error())
		}
	}
	return buf
}
