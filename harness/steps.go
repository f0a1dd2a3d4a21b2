package harness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/github-mcp-http/mcp-test-client/client"
	"github.com/github-mcp-http/mcp-test-client/framework"
	"github.com/github-mcp-http/mcp-test-client/servicedef"
	"github.com/github-mcp-http/mcp-test-client/stream"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxErrorBodyBytes = 64 * 1024

var nullParams = ldvalue.Null()

// CheckHealth queries the health endpoint. It succeeds if and only if the status is 200.
func (h *Harness) CheckHealth(ctx context.Context) bool {
	healthy := false
	h.runStep(ctx, StepHealth, func(ctx context.Context, s *framework.Step) {
		resp, err := h.client.Do(ctx, client.Request{
			Method: http.MethodGet,
			Path:   servicedef.PathHealth,
			Logger: s.DebugLogger(),
		})
		if err != nil {
			failRequest(s, err, nil)
			return
		}
		if err := resp.RequireStatus(http.StatusOK); err != nil {
			failRequest(s, err, resp)
			return
		}
		s.Pass("Health endpoint accessible", resp.Decoded)
		healthy = true
	})
	return healthy
}

// Connect starts a session. On success the session identifier is stored and sent with all
// later requests.
func (h *Harness) Connect(ctx context.Context, clientName, clientVersion string) bool {
	connected := false
	h.runStep(ctx, StepConnect, func(ctx context.Context, s *framework.Step) {
		params := servicedef.ConnectParams{
			ClientInfo: servicedef.ClientInfo{Name: clientName, Version: clientVersion},
		}
		resp, err := h.client.Do(ctx, client.Request{
			Method: http.MethodPost,
			Path:   servicedef.PathConnect,
			Body:   params,
			Logger: s.DebugLogger(),
		})
		if err != nil {
			failRequest(s, err, nil)
			return
		}
		if err := resp.RequireStatus(http.StatusOK); err != nil {
			failRequest(s, err, resp)
			return
		}
		if _, err := resp.RequireJSON(); err != nil {
			failRequest(s, err, resp)
			return
		}
		var connectResp servicedef.ConnectResponse
		if err := resp.UnmarshalBody(&connectResp); err != nil {
			failRequest(s, err, resp)
			return
		}
		if connectResp.SessionID == "" {
			s.Fail("response did not include a sessionId", resp.Decoded)
			return
		}

		h.client.SetSession(connectResp.SessionID)
		s.Debug("session established: %s", connectResp.SessionID)

		message := "Connected successfully"
		if name := connectResp.ServerName(); name.IsDefined() {
			message = fmt.Sprintf("Connected successfully to %s", name.StringValue())
		}
		s.Pass(message, framework.JSON(ldvalue.ObjectBuild().
			Set("sessionId", ldvalue.String(connectResp.SessionID)).
			Set("response", resp.Decoded.Value()).
			Build()))
		connected = true
	})
	return connected
}

// CallRPC sends a JSON-RPC request with the current session, and returns the decoded response
// body. It never fails with an error: any problem is recorded as a FAIL outcome, and the
// returned flag is false.
func (h *Harness) CallRPC(ctx context.Context, method string, params ldvalue.Value) (ldvalue.Value, bool) {
	ret := ldvalue.Null()
	ok := false
	h.runStep(ctx, RPCStepName(method), func(ctx context.Context, s *framework.Step) {
		envelope := servicedef.NewRPCRequest(h.client.NextRPCID(), method, params)
		resp, err := h.client.Do(ctx, client.Request{
			Method: http.MethodPost,
			Path:   servicedef.PathRPC,
			Body:   envelope,
			Logger: s.DebugLogger(),
		})
		if err != nil {
			failRequest(s, err, nil)
			return
		}
		if err := resp.RequireStatus(http.StatusOK); err != nil {
			failRequest(s, err, resp)
			return
		}
		decoded, err := resp.RequireJSON()
		if err != nil {
			failRequest(s, err, resp)
			return
		}
		var rpcResp servicedef.RPCResponse
		if err := resp.UnmarshalBody(&rpcResp); err == nil && rpcResp.Error != nil {
			s.Fail(rpcResp.Error.Error(), decoded)
			return
		}

		s.Pass(rpcSuccessMessage(s, method, decoded.Value()), decoded)
		ret = decoded.Value()
		ok = true
	})
	return ret, ok
}

func rpcSuccessMessage(s *framework.Step, method string, body ldvalue.Value) string {
	const message = "RPC call successful"
	switch method {
	case servicedef.MethodToolsList:
		tools, err := servicedef.DecodeToolsList(body)
		if err != nil {
			s.Debug("could not decode tools list: %s", err)
			return message
		}
		return fmt.Sprintf("%s: %d tools available", message, len(tools.Tools))
	case servicedef.MethodResourcesList:
		resources, err := servicedef.DecodeResourcesList(body)
		if err != nil {
			s.Debug("could not decode resources list: %s", err)
			return message
		}
		return fmt.Sprintf("%s: %d resources available", message, len(resources.Resources))
	}
	return message
}

// CheckEventStream opens the event stream and waits for the first chunk of data, up to the idle
// timeout, which starts when the request is sent. Receiving data and receiving nothing are both normal; only a failure to open the
// stream, or an I/O error, is a failure. The connection is always closed before returning.
func (h *Harness) CheckEventStream(ctx context.Context) bool {
	ok := false
	h.runStep(ctx, StepEventStream, func(ctx context.Context, s *framework.Step) {
		headers := h.client.DefaultHeaders()
		headers.Set("Accept", servicedef.ContentTypeEventStream)
		headers.Set("Cache-Control", "no-cache")
		if !h.client.HasSession() {
			headers.Set(servicedef.HeaderSessionID, PlaceholderSessionID)
		}

		conn, err := h.probe.Open(ctx, h.client.URL(servicedef.PathEvents), headers, h.opts.IdleTimeout,
			s.DebugLogger())
		if errors.Is(err, stream.ErrIdleTimeout) {
			s.Info(h.idleMessage(), framework.NoPayload())
			ok = true
			return
		}
		if err != nil {
			s.FailWithError(err, framework.NoPayload())
			return
		}
		if conn.StatusCode != http.StatusOK {
			body := conn.ReadBody(maxErrorBodyBytes)
			failRequest(s, &client.HTTPStatusError{StatusCode: conn.StatusCode, Body: string(body)},
				&client.Response{StatusCode: conn.StatusCode, Body: body, Decoded: framework.Decode(body)})
			return
		}
		if contentType := conn.Header.Get("Content-Type"); !strings.HasPrefix(contentType, servicedef.ContentTypeEventStream) {
			s.Debug("unexpected stream content type %q", contentType)
		}

		result := conn.AwaitFirstChunk()
		switch result.Kind {
		case stream.ChunkData:
			s.Pass("Received SSE data", framework.JSON(ldvalue.ObjectBuild().
				Set("data", ldvalue.String(strings.TrimSpace(string(result.Data)))).
				Build()))
		case stream.ChunkIdleTimeout:
			s.Info(h.idleMessage(), framework.NoPayload())
		case stream.ChunkEnded:
			s.Info("Stream ended without data", framework.NoPayload())
		default:
			s.FailWithError(result.Err, framework.NoPayload())
			return
		}
		ok = true
	})
	return ok
}

func (h *Harness) idleMessage() string {
	return fmt.Sprintf("No SSE data received within %s (this is normal)", h.opts.IdleTimeout)
}

// Disconnect asks the server to release the session. The response is not checked; the outcome
// is always INFO, and the session is forgotten either way.
func (h *Harness) Disconnect(ctx context.Context) {
	h.runStep(ctx, StepDisconnect, func(ctx context.Context, s *framework.Step) {
		resp, err := h.client.Do(ctx, client.Request{
			Method: http.MethodPost,
			Path:   servicedef.PathDisconnect,
			Logger: s.DebugLogger(),
		})
		if err != nil {
			s.Debug("disconnect request failed: %s", err)
		} else {
			s.Debug("disconnect returned HTTP %d", resp.StatusCode)
		}
		h.client.ClearSession()
		s.Info("Disconnect request sent", framework.NoPayload())
	})
}

// Catalog is what the server offers, as reported by tools/list and resources/list.
type Catalog struct {
	Tools     []servicedef.Tool     `json:"tools"`
	Resources []servicedef.Resource `json:"resources"`
}

// ListCatalog connects, lists the server's tools and resources, and disconnects.
func (h *Harness) ListCatalog(ctx context.Context) (Catalog, error) {
	if !h.Connect(ctx, h.opts.ClientName, h.opts.ClientVersion) {
		return Catalog{}, lastFailure(h.Results(), StepConnect)
	}
	defer h.Disconnect(ctx)

	var catalog Catalog
	toolsBody, ok := h.CallRPC(ctx, servicedef.MethodToolsList, nullParams)
	if !ok {
		return Catalog{}, lastFailure(h.Results(), RPCStepName(servicedef.MethodToolsList))
	}
	tools, err := servicedef.DecodeToolsList(toolsBody)
	if err != nil {
		return Catalog{}, fmt.Errorf("tools/list: %w", err)
	}
	catalog.Tools = tools.Tools

	resourcesBody, ok := h.CallRPC(ctx, servicedef.MethodResourcesList, nullParams)
	if !ok {
		return Catalog{}, lastFailure(h.Results(), RPCStepName(servicedef.MethodResourcesList))
	}
	resources, err := servicedef.DecodeResourcesList(resourcesBody)
	if err != nil {
		return Catalog{}, fmt.Errorf("resources/list: %w", err)
	}
	catalog.Resources = resources.Resources

	if catalog.Tools == nil {
		catalog.Tools = []servicedef.Tool{}
	}
	if catalog.Resources == nil {
		catalog.Resources = []servicedef.Resource{}
	}
	return catalog, nil
}

func lastFailure(results framework.Results, step string) error {
	outcomes := results.Find(step)
	if len(outcomes) == 0 {
		return fmt.Errorf("%s: step was not run", step)
	}
	o := outcomes[len(outcomes)-1]
	return errors.New(step + ": " + o.Message)
}
