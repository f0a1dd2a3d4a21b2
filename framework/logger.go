package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory, optionally forwarding each one to another
// logger as well.
type CapturingLogger struct {
	output  []CapturedMessage
	forward Logger
	lock    sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	text := fmt.Sprintf(message, args...)
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: text})
	forward := l.forward
	l.lock.Unlock()
	if forward != nil {
		forward.Printf("%s", text)
	}
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}

// PrefixedLogger returns a Logger that adds a prefix to every message.
func PrefixedLogger(logger Logger, prefix string) Logger {
	if logger == nil {
		return NullLogger()
	}
	return prefixedLogger{logger: logger, prefix: prefix}
}

type prefixedLogger struct {
	logger Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.logger.Printf("%s%s", p.prefix, fmt.Sprintf(message, args...))
}
