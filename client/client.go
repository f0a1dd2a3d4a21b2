package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/github-mcp-http/mcp-test-client/framework"
	"github.com/github-mcp-http/mcp-test-client/servicedef"

	"github.com/google/uuid"
)

const DefaultRequestTimeout = time.Second * 30

// Client sends requests to the MCP server under test. It holds the session identifier returned by
// the connect call, and attaches it to every subsequent request.
//
// A Client is meant to be used by one sequence of steps at a time; the session is not guarded
// against concurrent modification.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	session    string
	lastRPCID  int64
}

// Request describes one call to the server.
type Request struct {
	Method  string
	Path    string
	Body    interface{} // marshaled as JSON if non-nil
	Headers http.Header
	Logger  framework.Logger
}

// Response is a fully read response. Decoded holds the body interpreted as JSON if possible.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Decoded    framework.Decoded
}

// NewClient creates a Client for the server at baseURL. If httpClient is nil, a client with
// DefaultRequestTimeout is used.
func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL of a server path.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

func (c *Client) Session() string {
	return c.session
}

func (c *Client) HasSession() bool {
	return c.session != ""
}

func (c *Client) SetSession(id string) {
	c.session = id
}

func (c *Client) ClearSession() {
	c.session = ""
}

// NextRPCID returns a request identifier that has not been used before by this Client.
func (c *Client) NextRPCID() int64 {
	return atomic.AddInt64(&c.lastRPCID, 1)
}

// DefaultHeaders returns the headers that are sent with every request.
func (c *Client) DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", c.userAgent)
	h.Set(servicedef.HeaderRequestID, uuid.NewString())
	if c.session != "" {
		h.Set(servicedef.HeaderSessionID, c.session)
	}
	return h
}

// Do sends a request and reads the entire response. The returned error is always a
// *TransportError; a non-2xx status is not treated as an error here.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	logger := r.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.URL(r.Path)

	var bodyData []byte
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("could not encode request body: %w", err)}
		}
		bodyData = data
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyData))
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	for k, vv := range c.DefaultHeaders() {
		req.Header[k] = vv
	}
	req.Header.Set("Content-Type", servicedef.ContentTypeJSON)
	for k, vv := range r.Headers {
		req.Header[http.CanonicalHeaderKey(k)] = vv
	}

	logger.Printf(">> %s %s", method, url)
	if bodyData != nil {
		logger.Printf(">> body: %s", string(bodyData))
	}
	logger.Printf(">> curl: %s", CurlCommand(method, url, req.Header, bodyData))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Printf("<< error: %s", err)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		logger.Printf("<< error reading body: %s", err)
		return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	logger.Printf("<< HTTP %d (%s): %s", resp.StatusCode, resp.Header.Get("Content-Type"), string(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Decoded:    framework.Decode(data),
	}, nil
}

// RequireStatus returns an *HTTPStatusError if the response status is not the expected one.
func (r *Response) RequireStatus(expected int) error {
	if r.StatusCode != expected {
		return &HTTPStatusError{StatusCode: r.StatusCode, Body: string(r.Body)}
	}
	return nil
}

// RequireJSON returns the decoded body, or a *DecodeError if the body was not JSON.
func (r *Response) RequireJSON() (framework.Decoded, error) {
	if !r.Decoded.IsJSON() {
		return r.Decoded, &DecodeError{Body: string(r.Body)}
	}
	return r.Decoded, nil
}

// UnmarshalBody decodes the body into a struct, returning a *DecodeError on failure.
func (r *Response) UnmarshalBody(target interface{}) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return &DecodeError{Body: string(r.Body), Err: err}
	}
	return nil
}

