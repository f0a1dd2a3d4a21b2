package servicedef

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  ldvalue.Value `json:"params"`
}

// NewRPCRequest builds an envelope. Null params are sent as an empty object, since some servers
// reject a missing or null params member.
func NewRPCRequest(id int64, method string, params ldvalue.Value) RPCRequest {
	if params.IsNull() {
		params = ldvalue.ObjectBuild().Build()
	}
	return RPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

type RPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      ldvalue.Value `json:"id"`
	Result  ldvalue.Value `json:"result"`
	Error   *RPCError     `json:"error,omitempty"`
}

type RPCError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    ldvalue.Value `json:"data"`
}

func (e RPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}
