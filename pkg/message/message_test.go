package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/librescoot/serlink/pkg/frame"
	"github.com/librescoot/serlink/pkg/message"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

func testConfig() protocol.Config {
	cfg := protocol.DefaultConfig()
	cfg.MaxMessageLength = 1024
	return cfg
}

func connIDDraw(t *rapid.T) protocol.ConnID {
	var id protocol.ConnID
	bytes := rapid.SliceOfN(rapid.Byte(), protocol.ConnIDSize, protocol.ConnIDSize).Draw(t, "connID")
	copy(id[:], bytes)
	return id
}

func TestControlRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := testConfig()
		connID := connIDDraw(rt)
		typ := rapid.SampledFrom([]message.Type{message.SYN, message.SYNACK, message.FIN, message.FINACK}).Draw(rt, "type")

		encoded, err := message.EncodeControl(typ, connID, cfg)
		require.NoError(rt, err)

		l := port.NewLoopback()
		l.Feed(encoded)

		gotType, gotID, tail, crcOK, err := message.Decode(l, cfg)
		require.NoError(rt, err)
		assert.True(rt, crcOK)
		assert.Equal(rt, typ, gotType)
		assert.Equal(rt, connID, gotID)
		assert.Empty(rt, tail)
	})
}

func TestAckWithParamsRoundTrip(t *testing.T) {
	cfg := testConfig()
	connID := protocol.ConnID{1, 2, 3, 4}
	params := protocol.SessionParams{MsgCount: 42}

	encoded, err := message.EncodeAckWithParams(connID, params, cfg)
	require.NoError(t, err)

	l := port.NewLoopback()
	l.Feed(encoded)

	typ, gotID, tail, crcOK, err := message.Decode(l, cfg)
	require.NoError(t, err)
	assert.True(t, crcOK)
	assert.Equal(t, message.ACK, typ)
	assert.Equal(t, connID, gotID)

	gotParams, err := message.DecodeAckParams(tail)
	require.NoError(t, err)
	assert.Equal(t, params, gotParams)
}

func TestDataRoundTrip(t *testing.T) {
	cfg := testConfig()
	connID := protocol.ConnID{9, 9, 9, 9}
	payload := []byte("hello over serial")

	encoded, err := message.EncodeData(connID, payload, cfg)
	require.NoError(t, err)

	l := port.NewLoopback()
	l.Feed(encoded)

	typ, gotID, tail, crcOK, err := message.Decode(l, cfg)
	require.NoError(t, err)
	assert.True(t, crcOK)
	assert.Equal(t, message.DATA, typ)
	assert.Equal(t, connID, gotID)
	assert.Equal(t, payload, tail)
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	cfg := testConfig()
	// A frame whose payload is too short to contain a type byte + conn id.
	l := port.NewLoopback()
	encoded, err := frame.Encode([]byte{byte(message.DATA)}, cfg)
	require.NoError(t, err)
	l.Feed(encoded)

	_, _, _, _, err = message.Decode(l, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrEncoding)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	cfg := testConfig()
	connID := protocol.ConnID{1, 1, 1, 1}
	raw := append([]byte{0xEE}, connID[:]...)

	encoded, err := frame.Encode(raw, cfg)
	require.NoError(t, err)

	l := port.NewLoopback()
	l.Feed(encoded)

	_, _, _, _, err = message.Decode(l, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrEncoding)
}

func TestDecodeAckParamsRejectsShortTail(t *testing.T) {
	_, err := message.DecodeAckParams([]byte{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrEncoding)
}
