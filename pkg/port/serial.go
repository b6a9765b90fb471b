package port

import (
	"fmt"

	"go.bug.st/serial"
)

// serialPort adapts go.bug.st/serial to the Port interface. Device opening
// and configuration are collaborators per the specification's scope note;
// this is the thin real implementation the CLI entry points construct.
type serialPort struct {
	p serial.Port
}

// Open opens devicePath at baudRate, 8 data bits, no parity, one stop bit
// (8N1), with the recommended internal read timeout. For
// FlowControlRTSCTS it only asserts the RTS line, ignoring any error from
// doing so; no hardware-handshake mode is set on the port.
func Open(devicePath string, baudRate int, flowControl FlowControl) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, fmt.Errorf("port: open %s: %w", devicePath, err)
	}

	if err := p.SetReadTimeout(DefaultReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("port: set read timeout: %w", err)
	}

	if flowControl == FlowControlRTSCTS {
		// Best-effort: assert RTS so the peer's CTS-gated transmitter is
		// allowed to send. go.bug.st/serial does not expose a persistent
		// hardware-handshake mode toggle on every platform.
		_ = p.SetRTS(true)
	}

	return &serialPort{p: p}, nil
}

func (s *serialPort) Write(p []byte) (int, error) {
	return s.p.Write(p)
}

func (s *serialPort) Read(p []byte) (int, error) {
	n, err := s.p.Read(p)
	if n == 0 && err == nil {
		// go.bug.st/serial returns (0, nil) on read timeout; treat it the
		// same as a short read rather than an error.
		return 0, nil
	}
	return n, err
}

// InWaiting always reports 0: go.bug.st/serial does not expose in-flight
// byte counts portably across platforms. See the Port interface's
// InWaiting doc for why no caller depends on an exact count.
func (s *serialPort) InWaiting() (int, error) {
	return 0, nil
}

func (s *serialPort) DrainInput() error {
	buf := make([]byte, 4096)
	for {
		n, err := s.p.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (s *serialPort) Close() error {
	return s.p.Close()
}
