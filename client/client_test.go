package client

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/github-mcp-http/mcp-test-client/framework"
	"github.com/github-mcp-http/mcp-test-client/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   string
}

func captureRequests(handler http.Handler, requests chan<- capturedRequest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		requests <- capturedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: string(body)}
		handler.ServeHTTP(w, r)
	})
}

func TestDoSendsDefaultHeadersAndBody(t *testing.T) {
	requests := make(chan capturedRequest, 10)
	handler := captureRequests(httphelpers.HandlerWithJSONResponse(map[string]string{"sessionId": "abc123"}, nil), requests)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewClient(server.URL+"/", nil, "mcp-test-client/1.0.0")
		resp, err := c.Do(context.Background(), Request{
			Method: http.MethodPost,
			Path:   servicedef.PathConnect,
			Body:   map[string]string{"a": "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, resp.Decoded.IsJSON())
		assert.Equal(t, "abc123", resp.Decoded.Value().GetByKey("sessionId").StringValue())

		r := <-requests
		assert.Equal(t, http.MethodPost, r.method)
		assert.Equal(t, servicedef.PathConnect, r.path)
		assert.Equal(t, `{"a":"b"}`, r.body)
		assert.Equal(t, servicedef.ContentTypeJSON, r.header.Get("Content-Type"))
		assert.Equal(t, "mcp-test-client/1.0.0", r.header.Get("User-Agent"))
		assert.NotEqual(t, "", r.header.Get(servicedef.HeaderRequestID))
		assert.Equal(t, "", r.header.Get(servicedef.HeaderSessionID))
	})
}

func TestSessionHeaderIsSentOnceSet(t *testing.T) {
	requests := make(chan capturedRequest, 10)
	handler := captureRequests(httphelpers.HandlerWithStatus(http.StatusNoContent), requests)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewClient(server.URL, nil, "ua")
		c.SetSession("abc123")
		assert.True(t, c.HasSession())

		_, err := c.Do(context.Background(), Request{Path: servicedef.PathHealth})
		require.NoError(t, err)
		r := <-requests
		assert.Equal(t, http.MethodGet, r.method)
		assert.Equal(t, "abc123", r.header.Get(servicedef.HeaderSessionID))

		c.ClearSession()
		assert.False(t, c.HasSession())
		_, err = c.Do(context.Background(), Request{Path: servicedef.PathHealth})
		require.NoError(t, err)
		r = <-requests
		assert.Equal(t, "", r.header.Get(servicedef.HeaderSessionID))
	})
}

func TestRequestIDsAreUnique(t *testing.T) {
	c := NewClient("http://localhost", nil, "ua")
	first := c.DefaultHeaders().Get(servicedef.HeaderRequestID)
	second := c.DefaultHeaders().Get(servicedef.HeaderRequestID)
	assert.NotEqual(t, first, second)
}

func TestNextRPCIDIsMonotonic(t *testing.T) {
	c := NewClient("http://localhost", nil, "ua")
	assert.Equal(t, int64(1), c.NextRPCID())
	assert.Equal(t, int64(2), c.NextRPCID())
	assert.Equal(t, int64(3), c.NextRPCID())
}

func TestNonSuccessStatusIsNotATransportError(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(http.StatusInternalServerError, nil, []byte("Internal Server Error"))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewClient(server.URL, nil, "ua")
		resp, err := c.Do(context.Background(), Request{Path: servicedef.PathHealth})
		require.NoError(t, err)

		statusErr := resp.RequireStatus(http.StatusOK)
		require.Error(t, statusErr)
		var httpErr *HTTPStatusError
		require.True(t, errors.As(statusErr, &httpErr))
		assert.Equal(t, 500, httpErr.StatusCode)
		assert.Equal(t, "HTTP 500", statusErr.Error())
		assert.Equal(t, "Internal Server Error", resp.Decoded.Text())

		_, err = resp.RequireJSON()
		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
	})
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(http.StatusOK))
	url := server.URL
	server.Close()

	c := NewClient(url, nil, "ua")
	logger := &framework.CapturingLogger{}
	_, err := c.Do(context.Background(), Request{Path: servicedef.PathHealth, Logger: logger})
	require.Error(t, err)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Equal(t, url+servicedef.PathHealth, transportErr.URL)
	assert.NotNil(t, errors.Unwrap(err))

	var messages []string
	for _, m := range logger.Output() {
		messages = append(messages, m.Message)
	}
	require.Len(t, messages, 3)
	assert.Equal(t, ">> GET "+url+servicedef.PathHealth, messages[0])
}

func TestUnmarshalBody(t *testing.T) {
	resp := &Response{Body: []byte(`{"sessionId":"abc123"}`)}
	var target servicedef.ConnectResponse
	require.NoError(t, resp.UnmarshalBody(&target))
	assert.Equal(t, "abc123", target.SessionID)

	resp = &Response{Body: []byte(`<html>`)}
	err := resp.UnmarshalBody(&target)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "<html>", decodeErr.Body)
}
