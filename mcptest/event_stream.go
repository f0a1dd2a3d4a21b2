package mcptest

import (
	"net/http"
	"sync"
	"time"

	"github.com/github-mcp-http/mcp-test-client/servicedef"
)

// EventStream is a fake server-sent events endpoint. It does not have any event formatting
// logic; tests push chunks of raw data through it. Chunks sent before a client connects are
// queued and delivered once it does.
//
// By default it keeps the connection open without sending anything, which is how a real server
// behaves between events.
type EventStream struct {
	status      int
	dataCh      chan streamChunk
	connections int
	lock        sync.Mutex
}

type streamChunk struct {
	data       []byte
	delayAfter time.Duration
}

func NewEventStream() *EventStream {
	return &EventStream{
		status: http.StatusOK,
		dataCh: make(chan streamChunk, 100),
	}
}

// EventStreamWithStatus returns an endpoint that responds with a non-stream status.
func EventStreamWithStatus(status int) *EventStream {
	s := NewEventStream()
	s.status = status
	return s
}

// Send queues a chunk of data to be written and flushed.
func (s *EventStream) Send(data string) {
	s.SendThenWait(data, 0)
}

// SendThenWait queues a chunk of data, after which the stream pauses for an interval.
func (s *EventStream) SendThenWait(data string, delay time.Duration) {
	s.dataCh <- streamChunk{data: []byte(data), delayAfter: delay}
}

// End makes the server close the current connection.
func (s *EventStream) End() {
	s.dataCh <- streamChunk{data: nil}
}

// Connections returns the number of stream requests received so far.
func (s *EventStream) Connections() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.connections
}

func (s *EventStream) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.lock.Lock()
	s.connections++
	s.lock.Unlock()

	if s.status != http.StatusOK {
		w.Header().Set("Content-Type", servicedef.ContentTypeJSON)
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(`{"error":"stream unavailable"}`))
		return
	}

	closeNotifyCh := req.Context().Done()

	flusher := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

Loop:
	for {
		select {
		case chunk := <-s.dataCh:
			if chunk.data == nil { // indicates we want to break the connection
				break Loop
			}
			if _, err := w.Write(chunk.data); err != nil {
				break Loop
			}
			flusher.Flush()
			if chunk.delayAfter > 0 {
				time.Sleep(chunk.delayAfter)
			}
		case <-closeNotifyCh:
			break Loop
		}
	}
}
