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

package logbridge

import (
	"fmt"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/internal/caller"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

// facadeBoundary are the frames of Log, skipped when locating the caller.
const facadeBoundary = "github.com/GoogleCloudPlatform/logbridge.(*Log)."

// Log is the logbridge logging facade. Messages are printf formatted and
// only rendered when their level is enabled.
type Log struct {
	fw *shim.Forwarder
}

var root = &Log{fw: shim.NewForwarder(backend.RootLoggerName, facadeBoundary)}

// Root returns the Log of the backend root logger.
func Root() *Log {
	return root
}

// New returns the Log named after the package of its caller.
func New() *Log {
	return NewNamed(caller.Identity(1))
}

// NewNamed returns the Log of name. An empty name is replaced by the package
// of the caller.
func NewNamed(name string) *Log {
	if name == "" {
		name = caller.Identity(1)
	}
	return &Log{fw: shim.NewForwarder(name, facadeBoundary)}
}

// NewFor returns the Log named after the type of v, a reflect.Type is
// accepted. A nil v is replaced by the package of the caller.
func NewFor(v any) *Log {
	if v == nil {
		return NewNamed(caller.Identity(1))
	}
	return NewNamed(caller.TypeName(v))
}

// Name returns the logger identity.
func (l *Log) Name() string {
	return l.fw.Name()
}

// String returns "logbridge.Log[name]".
func (l *Log) String() string {
	return "logbridge.Log[" + l.Name() + "]"
}

// Enabled reports whether level is currently enabled. Logging methods check
// it themselves.
func (l *Log) Enabled(level backend.Level) bool {
	return l.fw.Enabled(level)
}

// Trace logs at TRACE, see Error for the arguments.
func (l *Log) Trace(args ...any) {
	l.log(backend.TraceLevel, args)
}

// Tracef logs a printf formatted message at TRACE.
func (l *Log) Tracef(format string, args ...any) {
	l.logf(backend.TraceLevel, format, args)
}

// Debug logs at DEBUG, see Error for the arguments.
func (l *Log) Debug(args ...any) {
	l.log(backend.DebugLevel, args)
}

// Debugf logs a printf formatted message at DEBUG.
func (l *Log) Debugf(format string, args ...any) {
	l.logf(backend.DebugLevel, format, args)
}

// Info logs at INFO, see Error for the arguments.
func (l *Log) Info(args ...any) {
	l.log(backend.InfoLevel, args)
}

// Infof logs a printf formatted message at INFO.
func (l *Log) Infof(format string, args ...any) {
	l.logf(backend.InfoLevel, format, args)
}

// Warn logs at WARN, see Error for the arguments.
func (l *Log) Warn(args ...any) {
	l.log(backend.WarnLevel, args)
}

// Warnf logs a printf formatted message at WARN.
func (l *Log) Warnf(format string, args ...any) {
	l.logf(backend.WarnLevel, format, args)
}

// Error logs at ERROR. With more than one argument an error in first or
// last position is the failure, Error(err, "copy %s", f) and
// Error("copy %s", f, err) log the same record. Of the remaining arguments a
// leading string is the printf format of the others. A lone error is both the
// message and the failure.
func (l *Log) Error(args ...any) {
	l.log(backend.ErrorLevel, args)
}

// Errorf logs a printf formatted message at ERROR.
func (l *Log) Errorf(format string, args ...any) {
	l.logf(backend.ErrorLevel, format, args)
}

// canonical is the identity level mapping.
func canonical(level backend.Level) (backend.Level, bool) {
	return level, level != backend.OffLevel
}

func (l *Log) log(level backend.Level, args []any) {
	shim.Log(l.fw, canonical, level, func() shim.Record {
		msg, err := render(args)
		return shim.Record{Message: msg, Err: err}
	})
}

func (l *Log) logf(level backend.Level, format string, args []any) {
	shim.Log(l.fw, canonical, level, func() shim.Record {
		return shim.Record{Message: shim.Format(format, args...)}
	})
}

// render builds the message and the failure of the Error style methods.
func render(args []any) (string, error) {
	var failure error
	if len(args) > 1 {
		if err, ok := args[0].(error); ok {
			failure, args = err, args[1:]
		} else if err, ok := args[len(args)-1].(error); ok {
			failure, args = err, args[:len(args)-1]
		}
	}

	switch len(args) {
	case 0:
		return shim.NullMessage, failure
	case 1:
		if err, ok := args[0].(error); ok && failure == nil {
			return shim.Message(err), err
		}
		return shim.Message(args[0]), failure
	}
	if format, ok := args[0].(string); ok {
		return shim.Format(format, args[1:]...), failure
	}
	return shim.Message(fmt.Sprint(args...)), failure
}
