//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package backend

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

const (
	// defaultErrorFormat is the format of INFO and more severe entries used by
	// the text sinks.
	defaultErrorFormat = `{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} {{if .Prefix}}{{.Prefix}}: {{end}}[{{.Level}}] {{.Logger}}: {{.Message}}{{if .Err}}: {{.Failure}}{{end}}`
	// defaultDebugFormat is the format of DEBUG and TRACE entries used by the
	// text sinks.
	defaultDebugFormat = `{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} {{if .Prefix}}{{.Prefix}}: {{end}}[{{.Level}}] {{.Logger}}: ({{.File}}:{{.Line}}) {{.Message}}{{if .Err}}: {{.Failure}}{{end}}`
)

// WriterSink is a simple sink implementation for logging to an io.Writer,
// by default the process' stderr.
type WriterSink struct {
	// sinkID is the internal id of this sink.
	sinkID string
	// config is a pointer to the generic Config interface implementation.
	config *sinkConfig
	// mu serializes writes so lines of concurrent entries don't interleave.
	mu sync.Mutex
	// writer by default it's set to use os.Stderr, tests might override it to a
	// local writer.
	writer io.Writer
}

// NewStderrSink returns a Sink implementation that will log out to the
// process' stderr.
func NewStderrSink() *WriterSink {
	return NewWriterSink("log-sink,stderr", os.Stderr)
}

// NewWriterSink returns a Sink implementation that will log out to writer.
func NewWriterSink(id string, writer io.Writer) *WriterSink {
	res := &WriterSink{
		sinkID: id,
		config: newSinkConfig(),
		writer: writer,
	}

	res.config.SetFormat(ErrorLevel, defaultErrorFormat)
	res.config.SetFormat(DebugLevel, defaultDebugFormat)

	return res
}

// ID returns the writer sink implementation's ID.
func (ws *WriterSink) ID() string {
	return ws.sinkID
}

// Log prints the log entry to the writer.
func (ws *WriterSink) Log(entry *LogEntry) error {
	format := ws.config.Format(entry.Level)

	message, err := entry.Format(format + "\n")
	if err != nil {
		return errors.Wrap(err, "failed to format log entry")
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	n, err := ws.writer.Write([]byte(message))
	if err != nil {
		return errors.Wrapf(err, "failed to write log to %s", ws.sinkID)
	}

	if n != len(message) {
		return errors.Errorf("failed to write the message, wrote %d bytes out of %d bytes", n, len(message))
	}

	return nil
}

// Config returns the sink configuration of the writer sink.
func (ws *WriterSink) Config() Config {
	return ws.config
}

// syncer is implemented by writers backed by a file descriptor.
type syncer interface {
	Sync() error
}

// Flush syncs the writer when it supports it.
func (ws *WriterSink) Flush() error {
	s, ok := ws.writer.(syncer)
	if !ok {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return errors.Wrapf(err, "failed to flush %s", ws.sinkID)
	}
	return nil
}
