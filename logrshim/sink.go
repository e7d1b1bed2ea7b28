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

// Package logrshim provides a logr.LogSink forwarding to the logbridge
// backend, and a process wide default logr.Logger.
package logrshim

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

var boundary = []string{
	"github.com/go-logr/logr.",
	"github.com/GoogleCloudPlatform/logbridge/logrshim.(*Sink).",
}

// noValue renders the value of a key without one.
const noValue = "<no-value>"

// MapLevel maps a logr verbosity to the canonical level. logr has no WARN,
// V(0) and below are INFO.
func MapLevel(v int) (backend.Level, bool) {
	switch {
	case v <= 0:
		return backend.InfoLevel, true
	case v == 1:
		return backend.DebugLevel, true
	default:
		return backend.TraceLevel, true
	}
}

// mapError maps logr's error calls.
func mapError(struct{}) (backend.Level, bool) {
	return backend.ErrorLevel, true
}

// Sink is a logr.LogSink forwarding to the backend logger of one name.
type Sink struct {
	fw     *shim.Forwarder
	values []any
	depth  int
}

var (
	_ logr.LogSink          = (*Sink)(nil)
	_ logr.CallDepthLogSink = (*Sink)(nil)
)

// NewSink returns the Sink of name.
func NewSink(name string) *Sink {
	return &Sink{fw: shim.NewForwarder(name, boundary...)}
}

// New returns a logr.Logger of name.
func New(name string) logr.Logger {
	return logr.New(NewSink(name))
}

// Name returns the logger identity.
func (s *Sink) Name() string {
	return s.fw.Name()
}

// Init does nothing, logr's own frames are skipped by name.
func (s *Sink) Init(logr.RuntimeInfo) {}

// Enabled asks the backend.
func (s *Sink) Enabled(level int) bool {
	canonical, ok := MapLevel(level)
	return ok && s.fw.Enabled(canonical)
}

// Info forwards msg at the level of verbosity v.
func (s *Sink) Info(v int, msg string, keysAndValues ...any) {
	shim.Log(s.fw, MapLevel, v, s.render(msg, nil, keysAndValues))
}

// Error forwards msg at ERROR with err as the failure.
func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	shim.Log(s.fw, mapError, struct{}{}, s.render(msg, err, keysAndValues))
}

func (s *Sink) render(msg string, err error, keysAndValues []any) func() shim.Record {
	return func() shim.Record {
		var sb strings.Builder
		sb.WriteString(shim.Message(msg))
		appendValues(&sb, s.values)
		appendValues(&sb, keysAndValues)
		return shim.Record{
			Message: sb.String(),
			Err:     err,
			Marker:  &backend.Marker{Skip: s.depth},
		}
	}
}

// appendValues renders key value pairs, a trailing key without value gets
// noValue.
func appendValues(sb *strings.Builder, kvs []any) {
	for i := 0; i < len(kvs); i += 2 {
		key := shim.Stringify(kvs[i])
		if i+1 < len(kvs) {
			shim.AppendField(sb, key, kvs[i+1])
		} else {
			shim.AppendField(sb, key, noValue)
		}
	}
}

// WithValues returns a Sink adding keysAndValues to every record.
func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	clone := *s
	clone.values = append(append([]any(nil), s.values...), keysAndValues...)
	return &clone
}

// WithName returns the Sink of the dotted child name.
func (s *Sink) WithName(name string) logr.LogSink {
	clone := *s
	child := name
	if parent := s.fw.Name(); parent != backend.RootLoggerName {
		child = parent + "." + name
	}
	clone.fw = shim.NewForwarder(child, boundary...)
	return &clone
}

// WithCallDepth returns a Sink skipping depth more frames when locating the
// caller.
func (s *Sink) WithCallDepth(depth int) logr.LogSink {
	clone := *s
	clone.depth += depth
	return &clone
}
