package main

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/github-mcp-http/mcp-test-client/mcptest"
	"github.com/github-mcp-http/mcp-test-client/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSuiteAgainstHealthyServer(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()

	out, _, err := runCommand(server.URL, "--idle-timeout", "100ms", "--no-color")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Starting MCP server tests", lines[0])
	assert.Equal(t, "Testing server: "+server.URL, lines[1])
	assert.Contains(t, out, "[PASS] Health Check: Health endpoint accessible\n")
	assert.Contains(t, out, "[PASS] Connect: Connected successfully to demo\n")
	assert.Contains(t, out, "[INFO] Event Stream: No SSE data received within 100ms (this is normal)\n")
	assert.Contains(t, out, "[PASS] RPC: tools/list: RPC call successful: 1 tools available\n")
	assert.Contains(t, out, "[INFO] Disconnect: Disconnect request sent\n")
	assert.Equal(t, "All tests passed.", lines[len(lines)-1])
}

func TestSuiteReportsFailure(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{
		Connect: httphelpers.HandlerWithStatus(http.StatusInternalServerError),
	})
	defer server.Close()

	out, _, err := runCommand(server.URL, "--idle-timeout", "100ms", "--no-color")
	assert.Equal(t, errTestsFailed, err)
	assert.Contains(t, out, "[FAIL] Connect: HTTP 500\n")
	assert.Contains(t, out, "Some tests failed:\n  Connect: HTTP 500\n")
	assert.NotContains(t, out, "RPC:")
}

func TestSuiteWithFilters(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()

	out, _, err := runCommand(server.URL, "--run", "Health", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "skip any not matching \"Health\"\n")
	assert.Contains(t, out, "[SKIP] Connect (excluded by filter parameters)\n")
	assert.Contains(t, out, "  Passed: 1\n  Failed: 0\n  Info:   0\n")
	assert.Len(t, server.Requests(), 1)
}

func TestSuiteReadsConfigFile(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(
		"serverUrl: "+server.URL+"\nidleTimeout: 100ms\nclient:\n  name: from-file\nrpcMethods: [ping]\n"), 0600))

	out, _, err := runCommand("--config", path, "--client-version", "9.9", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Testing server: "+server.URL+"\n")
	assert.NotContains(t, out, "tools/list")

	connectReqs := server.RequestsTo(servicedef.PathConnect)
	require.Len(t, connectReqs, 1)
	assert.Equal(t, `{"clientInfo":{"name":"from-file","version":"9.9"}}`, string(connectReqs[0].Body))
	assert.Equal(t, "from-file/9.9", connectReqs[0].Headers.Get("User-Agent"))
}

func TestInvalidServerURL(t *testing.T) {
	_, _, err := runCommand("not-a-url")
	require.Error(t, err)
	assert.NotEqual(t, errTestsFailed, err)
}

func TestInvalidFilter(t *testing.T) {
	_, _, err := runCommand("--run", "(")
	assert.Error(t, err)
}

func TestToolsCommand(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()

	out, errOut, err := runCommand("tools", server.URL, "--no-color")
	require.NoError(t, err)
	assert.Equal(t, `Available tools:
[
  {
    "name": "x",
    "description": "does x"
  }
]
Available resources:
[
  {
    "uri": "github://user",
    "name": "user",
    "mimeType": "application/json"
  }
]
`, out)
	assert.Contains(t, errOut, "[PASS] Connect: Connected successfully to demo\n")
	assert.Len(t, server.RequestsTo(servicedef.PathEvents), 0)
}

func TestToolsCommandFailsIfConnectFails(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{
		Connect: httphelpers.HandlerWithStatus(http.StatusUnauthorized),
	})
	defer server.Close()

	out, _, err := runCommand("tools", server.URL, "--no-color")
	require.Error(t, err)
	assert.Equal(t, "Connect: HTTP 401", err.Error())
	assert.Equal(t, "", out)
}

func TestSuiteWithDebugAllStreamsRequestDetails(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()

	out, _, err := runCommand(server.URL, "--run", "Health", "--debug-all", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "[Health Check] >> GET "+server.URL+servicedef.PathHealth+"\n")
	assert.Contains(t, out, "[Health Check] << HTTP 200")
	assert.NotContains(t, out, "    DEBUG [")
}

func TestSuiteWithDebugDumpsOnlyFailures(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{
		Connect: httphelpers.HandlerWithStatus(http.StatusInternalServerError),
	})
	defer server.Close()

	out, _, err := runCommand(server.URL, "--run", "Health|Connect", "--debug", "--no-color")
	assert.Equal(t, errTestsFailed, err)
	assert.Contains(t, out, "] >> POST "+server.URL+servicedef.PathConnect+"\n")
	assert.NotContains(t, out, "] >> GET "+server.URL+servicedef.PathHealth+"\n")
}

func TestToolsCommandDoesNotAcceptFilters(t *testing.T) {
	server := mcptest.NewServer(mcptest.Routes{})
	defer server.Close()

	_, _, err := runCommand("tools", server.URL, "--skip", "resources")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --skip")
	assert.Len(t, server.Requests(), 0)
}
