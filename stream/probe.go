package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/github-mcp-http/mcp-test-client/framework"
)

const readBufferSize = 4096

// ChunkKind describes how a wait for stream data was resolved.
type ChunkKind int

const (
	// ChunkData means that some data was received.
	ChunkData ChunkKind = iota
	// ChunkIdleTimeout means that no data arrived before the idle timeout.
	ChunkIdleTimeout
	// ChunkEnded means that the server closed the stream before sending anything.
	ChunkEnded
	// ChunkError means that reading the stream failed.
	ChunkError
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkData:
		return "data"
	case ChunkIdleTimeout:
		return "idle timeout"
	case ChunkEnded:
		return "ended"
	default:
		return "error"
	}
}

// ErrIdleTimeout is returned by Open if the idle timeout elapses before the response headers
// arrive.
var ErrIdleTimeout = errors.New("no response headers received within idle timeout")

type ChunkResult struct {
	Kind ChunkKind
	Data []byte
	Err  error
}

// Probe opens streaming GET requests. Unlike a regular request, the response body is not read
// to completion; the caller waits for the first chunk and then closes the connection.
type Probe struct {
	httpClient *http.Client
}

// Connection is an open stream whose response headers have been received.
type Connection struct {
	StatusCode int
	Header     http.Header
	body       io.ReadCloser
	streamCtx  context.Context
	canceller  context.CancelFunc
	logger     framework.Logger
	closeOnce  sync.Once
}

// NewProbe creates a Probe. The http.Client should not have an overall Timeout, since that would
// also limit how long the stream can stay open; if httpClient is nil, a default client with no
// timeout is used.
func NewProbe(httpClient *http.Client) *Probe {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Probe{httpClient: httpClient}
}

// Open sends the request and waits for the response headers. The idle timeout starts now and
// covers the whole connection: if it elapses before the headers arrive, Open returns
// ErrIdleTimeout, and afterward it bounds AwaitFirstChunk and ReadBody. The connection stays
// open until Close is called, the server ends the stream, the idle timeout elapses, or ctx is
// cancelled.
func (p *Probe) Open(
	ctx context.Context,
	url string,
	headers http.Header,
	idleTimeout time.Duration,
	logger framework.Logger,
) (*Connection, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	streamCtx, canceller := context.WithTimeout(ctx, idleTimeout)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		canceller()
		return nil, err
	}
	for k, vv := range headers {
		req.Header[http.CanonicalHeaderKey(k)] = vv
	}

	logger.Printf(">> GET %s (stream)", url)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		idle := timedOut(ctx, streamCtx)
		canceller()
		if idle {
			logger.Printf("<< no response headers within %s", idleTimeout)
			return nil, ErrIdleTimeout
		}
		logger.Printf("<< error: %s", err)
		return nil, fmt.Errorf("stream request to %s failed: %w", url, err)
	}
	logger.Printf("<< HTTP %d (%s)", resp.StatusCode, resp.Header.Get("Content-Type"))

	return &Connection{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		body:       resp.Body,
		streamCtx:  streamCtx,
		canceller:  canceller,
		logger:     logger,
	}, nil
}

// AwaitFirstChunk waits until the first data arrives on the stream, the stream ends, or the idle
// timeout given to Open elapses, whichever comes first. In every case the connection is closed
// before returning.
func (c *Connection) AwaitFirstChunk() ChunkResult {
	resultCh := make(chan ChunkResult, 1) // buffered so the reader can always exit
	go c.readFirstChunk(resultCh)

	var result ChunkResult
	select {
	case result = <-resultCh:
	case <-c.streamCtx.Done():
		result = ChunkResult{Kind: ChunkIdleTimeout}
	}
	c.logger.Printf("stream resolved: %s", result.Kind)
	c.Close()
	return result
}

// ReadBody reads up to maxBytes of the response body and closes the connection. It is meant for
// responses that turned out not to be streams, such as error responses. If the idle timeout
// elapses first, it returns whatever was read by then.
func (c *Connection) ReadBody(maxBytes int64) []byte {
	defer c.Close()
	data, _ := ioutil.ReadAll(io.LimitReader(c.body, maxBytes))
	return data
}

// Close cancels the request, which aborts any pending read.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.canceller()
		_ = c.body.Close()
	})
}

func (c *Connection) readFirstChunk(resultCh chan<- ChunkResult) {
	var chunk [readBufferSize]byte
	for {
		n, err := c.body.Read(chunk[:])
		if n > 0 {
			data := append([]byte(nil), chunk[0:n]...)
			c.logger.Printf("<< chunk: %q", string(data))
			resultCh <- ChunkResult{Kind: ChunkData, Data: data}
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				resultCh <- ChunkResult{Kind: ChunkEnded}
			case c.streamCtx.Err() != nil:
				resultCh <- ChunkResult{Kind: ChunkIdleTimeout}
			default:
				resultCh <- ChunkResult{Kind: ChunkError, Err: fmt.Errorf("I/O error reading stream: %w", err)}
			}
			return
		}
	}
}

// timedOut is true if the stream context hit its deadline while the caller's context is still live.
func timedOut(ctx, streamCtx context.Context) bool {
	return errors.Is(streamCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
}
