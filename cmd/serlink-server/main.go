// Command serlink-server listens for serlink-client peers on a serial
// device and serves one reliability-test session at a time, forever,
// until interrupted. It never exits non-zero on a failed session: a bad
// session is logged and reported, and the server goes back to listening,
// per spec.md §5's persistent-listen design.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

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

var (
	device      = flag.String("device", "", "Serial device path (required)")
	role        = flag.String("role", "server", "Role, must be \"server\"")
	baudRate    = flag.Int("baudrate", 115200, "Serial baud rate")
	flowControl = flag.String("flow-control", "none", "Flow control: none|rtscts")
	metricsAddr = flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	logger := log.Default()

	if *role != "server" {
		logger.Fatalf("--role must be \"server\", got %q", *role)
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
		m = metrics.New(prometheus.DefaultRegisterer, protocol.RoleServer)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			logger.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	logger.Printf("Starting serlink server")
	logger.Printf("Device: %s", *device)
	logger.Printf("Baud rate: %d", *baudRate)

	p, err := port.Open(*device, *baudRate, fc)
	if err != nil {
		logger.Fatalf("Failed to open serial port: %v", err)
	}
	defer p.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go serveLoop(p, logger, m, done)

	sig := <-stop
	logger.Printf("Received signal %v, shutting down", sig)
	close(done)
}

func serveLoop(p port.Port, logger *log.Logger, m *metrics.Metrics, done <-chan struct{}) {
	cfg := protocol.DefaultConfig()
	rnd := entropy.Default()

	for {
		select {
		case <-done:
			return
		default:
		}

		logger.Printf("Server: waiting for client...")
		conn, err := handshake.Server(p, cfg, logger)
		if err != nil {
			logger.Printf("Peering failed: %v", err)
		}
		msgCount := conn.SessionParams.MsgCount
		if !printReport(report.PeeringReport{Connected: err == nil, ConnID: conn.ConnID, Role: protocol.RoleServer, Err: err, MsgCount: &msgCount}) {
			continue
		}

		result := session.ServerExchange(p, conn, cfg, rnd, logger)
		printReport(report.SessionReport{Result: result})

		if m != nil {
			m.Observe(result)
		}

		logger.Printf("Server: session complete, returning to listen")
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
		return 0, &flowControlError{s}
	}
}

type flowControlError struct{ value string }

func (e *flowControlError) Error() string {
	return "flag --flow-control must be none or rtscts, got " + e.value
}
