// Package mcptest provides a fake MCP HTTP server for testing the harness and the command-line
// tool, in the manner of net/http/httptest.
package mcptest

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/github-mcp-http/mcp-test-client/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultSessionID is the session identifier returned by the default connect handler.
const DefaultSessionID = "abc123"

// Routes specifies a handler for each API endpoint. A nil field means the default behavior.
type Routes struct {
	Health     http.Handler
	Connect    http.Handler
	RPC        http.Handler
	Events     http.Handler
	Disconnect http.Handler
}

// Server is a running fake MCP server.
type Server struct {
	*httptest.Server
	Stream   *EventStream
	requests []RecordedRequest
	lock     sync.Mutex
}

// RecordedRequest contains information about a request received by the fake server.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// NewServer starts a fake server. Callers must Close it.
func NewServer(routes Routes) *Server {
	s := &Server{}
	if routes.Health == nil {
		routes.Health = httphelpers.HandlerWithJSONResponse(map[string]string{"status": "ok"}, nil)
	}
	if routes.Connect == nil {
		routes.Connect = ConnectHandler(DefaultSessionID, "demo")
	}
	if routes.RPC == nil {
		routes.RPC = RPCHandler(DefaultRPCResults())
	}
	if routes.Events == nil {
		s.Stream = NewEventStream()
		routes.Events = s.Stream
	}
	if routes.Disconnect == nil {
		routes.Disconnect = httphelpers.HandlerWithStatus(http.StatusNoContent)
	}

	mux := http.NewServeMux()
	mux.Handle(servicedef.PathHealth, routes.Health)
	mux.Handle(servicedef.PathConnect, routes.Connect)
	mux.Handle(servicedef.PathRPC, routes.RPC)
	mux.Handle(servicedef.PathEvents, routes.Events)
	mux.Handle(servicedef.PathDisconnect, routes.Disconnect)

	s.Server = httptest.NewServer(s.recording(mux))
	return s
}

// Requests returns all requests received so far, in order.
func (s *Server) Requests() []RecordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo returns the requests received for one path.
func (s *Server) RequestsTo(path string) []RecordedRequest {
	var ret []RecordedRequest
	for _, r := range s.Requests() {
		if r.Path == path {
			ret = append(ret, r)
		}
	}
	return ret
}

func (s *Server) recording(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body []byte
		if req.Body != nil {
			data, err := ioutil.ReadAll(req.Body)
			req.Body.Close()
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			body = data
			req.Body = ioutil.NopCloser(bytes.NewBuffer(body))
		}
		s.lock.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  req.Method,
			Path:    req.URL.Path,
			Headers: req.Header.Clone(),
			Body:    body,
		})
		s.lock.Unlock()
		handler.ServeHTTP(w, req)
	})
}

// ConnectHandler returns a successful connect response. If serverName is empty, the response
// has no serverInfo.
func ConnectHandler(sessionID string, serverName string) http.Handler {
	resp := map[string]interface{}{"sessionId": sessionID}
	if serverName != "" {
		resp["serverInfo"] = map[string]string{"name": serverName, "version": "1.0.0"}
	}
	return httphelpers.HandlerWithJSONResponse(resp, nil)
}

// DefaultRPCResults returns results for the methods the harness calls by default.
func DefaultRPCResults() map[string]ldvalue.Value {
	return map[string]ldvalue.Value{
		servicedef.MethodPing: ldvalue.ObjectBuild().Build(),
		servicedef.MethodToolsList: ldvalue.Parse([]byte(
			`{"tools":[{"name":"x","description":"does x"}]}`)),
		servicedef.MethodResourcesList: ldvalue.Parse([]byte(
			`{"resources":[{"uri":"github://user","name":"user","mimeType":"application/json"}]}`)),
	}
}

// RPCHandler answers JSON-RPC requests from a table of results. Unknown methods get a
// "method not found" error, as a real server would.
func RPCHandler(results map[string]ldvalue.Value) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var rpcReq struct {
			Method string        `json:"method"`
			ID     ldvalue.Value `json:"id"`
		}
		data, _ := ioutil.ReadAll(req.Body)
		if err := json.Unmarshal(data, &rpcReq); err != nil {
			httphelpers.HandlerWithResponse(http.StatusBadRequest, nil, []byte(`{"error":"Invalid RPC request"}`)).
				ServeHTTP(w, req)
			return
		}
		resp := servicedef.RPCResponse{JSONRPC: servicedef.JSONRPCVersion, ID: rpcReq.ID}
		if result, ok := results[rpcReq.Method]; ok {
			resp.Result = result
		} else {
			resp.Error = &servicedef.RPCError{Code: -32601, Message: "Method not found"}
		}
		httphelpers.HandlerWithJSONResponse(resp, nil).ServeHTTP(w, req)
	})
}
