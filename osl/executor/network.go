package executor

import (
	"context"
	"net"
	"runtime"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
)

// NetworkExecutor performs TCP/UDP/unix connect and listen effects, plus a
// [GO] HTTP health-probe sub-kind built on valyala/fasthttp (teacher's
// direct dependency) per SPEC_FULL.md §4.1.
type NetworkExecutor struct{}

func NewNetworkExecutor() *NetworkExecutor { return &NetworkExecutor{} }

func (*NetworkExecutor) Name() string { return "network" }

func (*NetworkExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeNetwork}
}

func (*NetworkExecutor) ValidateOperation(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) error {
	if op.Kind() != operation.TypeNetwork {
		return osl.NewExecutionFailed("network executor received non-network operation")
	}
	n := op.Network
	if n.Address == "" {
		return osl.NewNetworkError("validate", "empty address")
	}
	if n.Protocol == operation.NetUnix && runtime.GOOS == "windows" {
		return osl.NewNetworkError("validate", "unix sockets are not supported on windows")
	}
	return nil
}

func socketNetwork(p operation.NetworkProtocol) string {
	switch p {
	case operation.NetTCP, operation.NetHTTP:
		return "tcp"
	case operation.NetUDP:
		return "udp"
	case operation.NetUnix:
		return "unix"
	default:
		return "tcp"
	}
}

func (e *NetworkExecutor) Execute(ctx context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	started := nowUTC()
	n := op.Network

	if n.Protocol == operation.NetHTTP {
		return e.executeHTTP(ctx, n, started)
	}

	switch n.Action {
	case operation.NetConnect:
		d := net.Dialer{}
		timeout := n.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		dctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		conn, err := d.DialContext(dctx, socketNetwork(n.Protocol), n.Address)
		if err != nil {
			if dctx.Err() != nil {
				return operation.ExecutionResult{}, osl.NewNetworkError("connect", "Connection timeout")
			}
			return operation.ExecutionResult{}, osl.NewNetworkError("connect", err.Error())
		}
		defer conn.Close()
		return operation.NewExecutionResult(started, nowUTC()), nil

	case operation.NetListen:
		backlog := n.Backlog
		_ = backlog // net.Listen does not expose backlog tuning portably; recorded in metadata.
		ln, err := net.Listen(socketNetwork(n.Protocol), n.Address)
		if err != nil {
			return operation.ExecutionResult{}, osl.NewNetworkError("listen", err.Error())
		}
		defer ln.Close()
		res := operation.NewExecutionResult(started, nowUTC())
		res.Metadata["local_addr"] = ln.Addr().String()
		res.Metadata["backlog"] = itoa(backlog)
		return res, nil

	default:
		return operation.ExecutionResult{}, osl.NewNetworkError("execute", "unknown action")
	}
}

func (e *NetworkExecutor) executeHTTP(_ context.Context, n operation.NetworkFields, started time.Time) (operation.ExecutionResult, error) {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(n.Address)
	req.Header.SetMethod("GET")

	client := &fasthttp.Client{}
	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return operation.ExecutionResult{}, osl.NewNetworkError("connect", err.Error())
	}
	res := operation.NewExecutionResult(started, nowUTC())
	res.ExitCode = intPtr(resp.StatusCode())
	res.Stdout = append([]byte(nil), resp.Body()...)
	return res, nil
}

func intPtr(i int) *int { return &i }
