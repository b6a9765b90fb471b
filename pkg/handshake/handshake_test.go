package handshake_test

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/serlink/pkg/entropy"
	"github.com/librescoot/serlink/pkg/handshake"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
)

func testConfig() protocol.Config {
	cfg := protocol.DefaultConfig()
	cfg.ClientTimeout = 2 * time.Second
	cfg.AckTimeout = 2 * time.Second
	cfg.SynInterval = 20 * time.Millisecond
	return cfg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestHandshakeCompletesOverPipe(t *testing.T) {
	clientPort, serverPort := port.NewPipe()
	cfg := testConfig()
	rnd := entropy.Default()
	logger := quietLogger()

	var serverConn protocol.Connection
	var serverErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		serverConn, serverErr = handshake.Server(serverPort, cfg, logger)
	}()

	params := protocol.SessionParams{MsgCount: 7}
	clientConn, clientErr := handshake.Client(clientPort, cfg, params, rnd, logger)
	require.NoError(t, clientErr)

	<-done
	require.NoError(t, serverErr)

	assert.Equal(t, clientConn.ConnID, serverConn.ConnID)
	assert.Equal(t, protocol.RoleClient, clientConn.Role)
	assert.Equal(t, protocol.RoleServer, serverConn.Role)
	assert.Equal(t, uint32(7), serverConn.SessionParams.MsgCount)
}

func TestClientHandshakeTimesOutWithNoServer(t *testing.T) {
	clientPort, _ := port.NewPipe()
	cfg := testConfig()
	cfg.ClientTimeout = 100 * time.Millisecond
	cfg.SynInterval = 10 * time.Millisecond

	_, err := handshake.Client(clientPort, cfg, protocol.SessionParams{MsgCount: 1}, entropy.Default(), quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrPeeringTimeout)
}

func TestServerHandshakeTimesOutWithNoSyn(t *testing.T) {
	_, serverPort := port.NewPipe()
	cfg := testConfig()
	cfg.ClientTimeout = 100 * time.Millisecond

	_, err := handshake.Server(serverPort, cfg, quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrPeeringTimeout)
}
