// Command serlink-client drives one client-side reliability test run
// against a serlink-server peer: handshake, msg-count rounds of
// request/response, clean shutdown, then a printed report. Exit codes are
// documented in spec.md §6.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/librescoot/serlink/pkg/entropy"
	"github.com/librescoot/serlink/pkg/handshake"
	"github.com/librescoot/serlink/pkg/metrics"
	"github.com/librescoot/serlink/pkg/port"
	"github.com/librescoot/serlink/pkg/protocol"
	"github.com/librescoot/serlink/pkg/report"
	"github.com/librescoot/serlink/pkg/session"
)

// Exit codes, per spec.md §6.
const (
	exitSuccess       = 0
	exitPeeringFailed = 1
	exitNoData        = 2
	exitCRCErrors     = 3
)

var (
	device           = flag.String("device", "", "Serial device path (required)")
	role             = flag.String("role", "client", "Role, must be \"client\"")
	baudRate         = flag.Int("baudrate", 115200, "Serial baud rate")
	msgCount         = flag.Uint("msg-count", 100, "Number of request/response rounds")
	handshakeTimeout = flag.Int("handshake-timeout", 60, "Handshake timeout in seconds")
	flowControl      = flag.String("flow-control", "none", "Flow control: none|rtscts")
	metricsAddr      = flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	logger := log.Default()

	if *role != "client" {
		logger.Fatalf("--role must be \"client\", got %q", *role)
	}
	if *device == "" {
		logger.Fatalf("--device is required")
	}

	fc, err := parseFlowControl(*flowControl)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	var m *metrics.Metrics
	if *metricsAddr != "" {
		m = metrics.New(prometheus.DefaultRegisterer, protocol.RoleClient)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			logger.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	os.Exit(run(logger, m, fc))
}

func run(logger *log.Logger, m *metrics.Metrics, fc port.FlowControl) int {
	logger.Printf("Starting serlink client")
	logger.Printf("Device: %s", *device)
	logger.Printf("Baud rate: %d", *baudRate)
	logger.Printf("Message count: %d", *msgCount)

	p, err := port.Open(*device, *baudRate, fc)
	if err != nil {
		logger.Printf("Failed to open serial port: %v", err)
		return exitPeeringFailed
	}
	defer func() {
		p.Close()
		logger.Printf("Closed %s", *device)
	}()

	cfg := protocol.DefaultConfig()
	cfg.ClientTimeout = time.Duration(*handshakeTimeout) * time.Second
	rnd := entropy.Default()

	params := protocol.SessionParams{MsgCount: uint32(*msgCount)}
	logger.Printf("Client: connecting to server (msg_count=%d)...", *msgCount)

	conn, err := handshake.Client(p, cfg, params, rnd, logger)
	if err != nil {
		logger.Printf("Peering failed: %v", err)
	}
	if !printReport(report.PeeringReport{Connected: err == nil, ConnID: conn.ConnID, Role: protocol.RoleClient, Err: err}) {
		return exitPeeringFailed
	}
	logger.Printf("Peering successful (id=%x, msg_count=%d)", conn.ConnID, *msgCount)

	result := session.ClientExchange(p, conn, cfg, rnd, logger)
	sessionOK := printReport(report.SessionReport{Result: result})

	if m != nil {
		m.Observe(result)
	}

	switch {
	case !result.Success:
		return exitPeeringFailed
	case result.Received == 0:
		return exitNoData
	case !sessionOK:
		return exitCRCErrors
	default:
		return exitSuccess
	}
}

// printReport prints r through the common Report interface and returns
// whether it reports success, so callers can fold report printing and
// outcome checks into one call instead of inspecting fields directly.
func printReport(r report.Report) bool {
	r.Print()
	return r.Success()
}

func parseFlowControl(s string) (port.FlowControl, error) {
	switch s {
	case "", "none":
		return port.FlowControlNone, nil
	case "rtscts":
		return port.FlowControlRTSCTS, nil
	default:
		return 0, fmt.Errorf("--flow-control must be none or rtscts, got %q", s)
	}
}
