package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/github-mcp-http/mcp-test-client/client"
	"github.com/github-mcp-http/mcp-test-client/framework"
	"github.com/github-mcp-http/mcp-test-client/stream"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultIdleTimeout   = time.Second * 5
	DefaultClientName    = "mcp-test-client"
	DefaultClientVersion = "1.0.0"

	// PlaceholderSessionID is sent to the event stream when no session has been established.
	PlaceholderSessionID = "test-session"

	tracerName = "github.com/github-mcp-http/mcp-test-client/harness"
)

// Step names, which are also the names used in outcomes and matched by filters.
const (
	StepHealth      = "Health Check"
	StepConnect     = "Connect"
	StepEventStream = "Event Stream"
	StepDisconnect  = "Disconnect"
	rpcStepPrefix   = "RPC: "
)

// DefaultRPCMethods are the calls made by RunAll after a successful connect.
var DefaultRPCMethods = []string{"ping", "tools/list", "resources/list"}

// RPCStepName returns the step name used for an RPC call.
func RPCStepName(method string) string {
	return rpcStepPrefix + method
}

// Options configures a Harness. Only BaseURL is required.
type Options struct {
	BaseURL        string
	ClientName     string
	ClientVersion  string
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	RPCMethods     []string

	// Filter selects which steps to run; nil means all of them.
	Filter framework.Filter

	// OutcomeLogger is notified of every outcome as it is recorded.
	OutcomeLogger framework.OutcomeLogger

	// DebugLogger, if set, receives all debug output in addition to the per-step capture.
	DebugLogger framework.Logger

	// SummaryOutput is where RunAll prints its summary. Nil means no summary is printed.
	SummaryOutput io.Writer
	NoColor       bool

	// TracerProvider defaults to the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// Transport, if set, is used for all HTTP requests.
	Transport http.RoundTripper
}

// Harness runs a fixed sequence of checks against an MCP server, recording one outcome for each.
// The session obtained by Connect is held by the Harness instance, not globally, so independent
// harnesses can run side by side.
type Harness struct {
	opts     Options
	client   *client.Client
	probe    *stream.Probe
	recorder *framework.Recorder
	tracer   trace.Tracer
}

// New validates the options and creates a Harness.
func New(opts Options) (*Harness, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: must be an absolute http or https URL", opts.BaseURL)
	}
	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = DefaultClientVersion
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = client.DefaultRequestTimeout
	}
	if opts.RPCMethods == nil {
		opts.RPCMethods = DefaultRPCMethods
	}
	if opts.SummaryOutput == nil {
		opts.SummaryOutput = ioutil.Discard
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	userAgent := fmt.Sprintf("%s/%s", opts.ClientName, opts.ClientVersion)
	return &Harness{
		opts:     opts,
		client:   client.NewClient(opts.BaseURL, &http.Client{Timeout: opts.RequestTimeout, Transport: opts.Transport}, userAgent),
		probe:    stream.NewProbe(&http.Client{Transport: opts.Transport}),
		recorder: framework.NewRecorder(opts.Filter, opts.OutcomeLogger, opts.DebugLogger),
		tracer:   opts.TracerProvider.Tracer(tracerName),
	}, nil
}

// Session returns the session identifier, or "" if there is none.
func (h *Harness) Session() string {
	return h.client.Session()
}

// Results returns the outcomes recorded so far, in execution order.
func (h *Harness) Results() framework.Results {
	return h.recorder.Results()
}

// RunAll runs health check, connect, event stream check, the RPC calls (only if connect
// succeeded), and disconnect, in that order. It prints a summary and returns all outcomes.
func (h *Harness) RunAll(ctx context.Context) framework.Results {
	ctx, span := h.tracer.Start(ctx, "RunAll")
	defer span.End()

	h.CheckHealth(ctx)
	connected := h.Connect(ctx, h.opts.ClientName, h.opts.ClientVersion)
	h.CheckEventStream(ctx)
	if connected {
		for _, method := range h.opts.RPCMethods {
			h.CallRPC(ctx, method, nullParams)
		}
	}
	h.Disconnect(ctx)

	results := h.Results()
	counts := results.Counts()
	span.SetAttributes(
		attribute.Int("mcp.outcomes.passed", counts.Passed),
		attribute.Int("mcp.outcomes.failed", counts.Failed),
		attribute.Int("mcp.outcomes.info", counts.Info),
	)
	framework.PrintSummary(h.opts.SummaryOutput, results, h.opts.NoColor)
	return results
}

// runStep runs one step inside a tracing span. The span is marked as an error if the step fails.
func (h *Harness) runStep(ctx context.Context, name string, action func(context.Context, *framework.Step)) bool {
	return h.recorder.Run(name, func(s *framework.Step) {
		stepCtx, span := h.tracer.Start(ctx, name)
		defer func() {
			endStepSpan(span, s)
		}()
		action(stepCtx, s)
	})
}

func endStepSpan(span trace.Span, s *framework.Step) {
	status, ok := s.Status()
	if ok {
		span.SetAttributes(attribute.String("mcp.outcome", string(status)))
	}
	if !ok || status == framework.StatusFail {
		span.SetStatus(codes.Error, "step failed")
	}
	span.End()
}

// failRequest records the failure of a request that did not produce the expected response.
func failRequest(s *framework.Step, err error, resp *client.Response) {
	var payload framework.Decoded
	if resp != nil {
		payload = resp.Decoded
	}
	var decodeErr *client.DecodeError
	if errors.As(err, &decodeErr) {
		payload = framework.Raw(decodeErr.Body)
	}
	s.FailWithError(err, payload)
}
