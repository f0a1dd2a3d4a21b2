package client

import (
	"net/http"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CurlCommand returns a shell command that would send the same request, for pasting into a
// terminal when a step fails.
func CurlCommand(method string, url string, headers http.Header, body []byte) string {
	var b commandBuilder
	b.add("curl", "-sS", "-X", method)
	for _, name := range sortedHeaderNames(headers) {
		for _, value := range headers[name] {
			b.add("-H", name+": "+value)
		}
	}
	if len(body) != 0 {
		b.add("--data", string(body))
	}
	b.add(url)
	return b.String()
}

func sortedHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
