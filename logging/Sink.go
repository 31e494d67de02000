package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// TimeFormat is the format of the timestamp that prefixes each line
const TimeFormat = "2006-01-02 15:04:05"

// Levels of the logr.Logger installed by Init. klog.V(n) logs at
// level n.
const (
	InfoLevel  = 0
	DebugLevel = 1
)

// sink is a logr.LogSink which writes info level messages to a console
// writer and messages up to debug level to an optional file writer.
type sink struct {
	mu      *sync.Mutex
	console io.Writer
	file    io.Writer // nil if no file is attached
	now     func() time.Time

	name   string
	values []interface{}
}

func newSink(console, file io.Writer) *sink {
	return &sink{
		mu:      &sync.Mutex{},
		console: console,
		file:    file,
		now:     time.Now,
	}
}

// Init implements the logr.LogSink interface
func (s *sink) Init(logr.RuntimeInfo) {}

// Enabled implements the logr.LogSink interface
func (s *sink) Enabled(level int) bool {
	if level <= InfoLevel {
		return true
	}
	return s.file != nil && level <= DebugLevel
}

// Info implements the logr.LogSink interface
func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	line := s.format(msg, keysAndValues)

	s.mu.Lock()
	defer s.mu.Unlock()
	if level <= InfoLevel {
		io.WriteString(s.console, line)
	}
	if s.file != nil && level <= DebugLevel {
		io.WriteString(s.file, line)
	}
}

// Error implements the logr.LogSink interface
func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	if err != nil {
		keysAndValues = append([]interface{}{"err", err}, keysAndValues...)
	}
	s.Info(InfoLevel, msg, keysAndValues...)
}

// WithValues implements the logr.LogSink interface
func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	clone := *s
	clone.values = append(append([]interface{}(nil), s.values...),
		keysAndValues...)
	return &clone
}

// WithName implements the logr.LogSink interface
func (s *sink) WithName(name string) logr.LogSink {
	clone := *s
	if clone.name == "" {
		clone.name = name
	} else {
		clone.name += "/" + name
	}
	return &clone
}

// format formats a single log line
func (s *sink) format(msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%v] ", s.now().Format(TimeFormat))
	if s.name != "" {
		b.WriteString(s.name + ": ")
	}
	b.WriteString(strings.TrimSuffix(msg, "\n"))

	kvs := append(append([]interface{}(nil), s.values...), keysAndValues...)
	for i := 0; i < len(kvs); i += 2 {
		if i+1 < len(kvs) {
			fmt.Fprintf(&b, " %v=%v", kvs[i], kvs[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", kvs[i])
		}
	}
	b.WriteByte('\n')
	return b.String()
}
