package frame_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/librescoot/serlink/pkg/frame"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

func testConfig() protocol.Config {
	cfg := protocol.DefaultConfig()
	cfg.MaxMessageLength = 1024
	cfg.MaxResyncBytes = 4096
	return cfg
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := testConfig()
		payload := rapid.SliceOfN(rapid.Byte(), 0, int(cfg.MaxMessageLength)).Draw(rt, "payload")

		encoded, err := frame.Encode(payload, cfg)
		require.NoError(rt, err)

		l := port.NewLoopback()
		l.Feed(encoded)

		decoded, crcOK, err := frame.Decode(l, cfg)
		require.NoError(rt, err)
		assert.True(rt, crcOK)
		assert.Equal(rt, payload, decoded)
	})
}

func TestEncodeRejectsOverLongPayload(t *testing.T) {
	cfg := testConfig()
	payload := make([]byte, cfg.MaxMessageLength+1)

	_, err := frame.Encode(payload, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrEncoding)
}

func TestDecodeResyncsPastGarbagePrefix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := testConfig()
		garbage := rapid.SliceOfN(rapid.Byte(), 0, int(cfg.MaxResyncBytes/2)).Draw(rt, "garbage")
		payload := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "payload")

		encoded, err := frame.Encode(payload, cfg)
		require.NoError(rt, err)

		l := port.NewLoopback()
		l.Feed(garbage)
		l.Feed(encoded)

		decoded, crcOK, err := frame.Decode(l, cfg)
		require.NoError(rt, err)
		assert.True(rt, crcOK)
		assert.Equal(rt, payload, decoded)
	})
}

func TestDecodeDetectsFlippedCRC(t *testing.T) {
	cfg := testConfig()
	payload := []byte("a serial frame payload")

	encoded, err := frame.Encode(payload, cfg)
	require.NoError(t, err)

	// Flip every bit of the last byte of the trailing CRC32 field.
	encoded[len(encoded)-1] ^= 0xFF

	l := port.NewLoopback()
	l.Feed(encoded)

	decoded, crcOK, err := frame.Decode(l, cfg)
	require.NoError(t, err)
	assert.False(t, crcOK)
	assert.Equal(t, payload, decoded)
}

func TestDecodeGivesUpPastMaxResyncBytes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxResyncBytes = 16

	l := port.NewLoopback()
	l.Feed(make([]byte, 64)) // all zero bytes, never matches sync magic

	_, _, err := frame.Decode(l, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrTransport)
}

func TestDecodeRejectsOverLongDeclaredLength(t *testing.T) {
	cfg := testConfig()

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], frame.SyncMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], cfg.MaxMessageLength+1)

	l := port.NewLoopback()
	l.Feed(hdr[:])

	_, _, err := frame.Decode(l, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrTransport)
}
