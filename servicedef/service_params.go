package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

const (
	PathHealth     = "/api/v1/health"
	PathConnect    = "/api/v1/connect"
	PathRPC        = "/api/v1/rpc"
	PathEvents     = "/api/v1/events"
	PathDisconnect = "/api/v1/disconnect"
)

const (
	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"

	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
)

const JSONRPCVersion = "2.0"

const (
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodResourcesList = "resources/list"
)

// ClientInfo identifies the test client to the server when connecting.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ConnectParams struct {
	ClientInfo ClientInfo `json:"clientInfo"`
}

type ServerInfo struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// ConnectResponse is the body of a successful connect call. Only SessionID is required; servers
// are free to add capabilities and other fields, which we don't inspect.
type ConnectResponse struct {
	SessionID  string      `json:"sessionId"`
	ServerInfo *ServerInfo `json:"serverInfo,omitempty"`
}

// ServerName returns the server's self-reported name, if any.
func (r ConnectResponse) ServerName() ldvalue.OptionalString {
	if r.ServerInfo == nil || r.ServerInfo.Name == "" {
		return ldvalue.OptionalString{}
	}
	return ldvalue.NewOptionalString(r.ServerInfo.Name)
}
