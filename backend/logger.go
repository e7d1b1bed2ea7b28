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
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Logger is the minimal logger contract of the backend. Log formats with brace
// placeholders, see [FormatBraces].
type Logger interface {
	// Name returns the identity of the logger.
	Name() string
	// Enabled reports whether level is currently enabled for this logger.
	Enabled(level Level) bool
	// Log writes a message at level. A trailing error argument not consumed
	// by a placeholder becomes the entry's failure.
	Log(level Level, format string, args ...any)
}

// LocationAwareLogger is a Logger that accepts an explicit caller location
// and an explicit failure.
type LocationAwareLogger interface {
	Logger
	// LogAt writes msg at level, resolving the caller with marker. When args
	// is not empty msg is formatted with brace placeholders.
	LogAt(marker *Marker, level Level, msg string, args []any, err error)
}

// Marker tells the backend where the logging wrappers end and the calling
// code starts.
type Marker struct {
	// PC is the program counter of the calling code, used as is when set.
	PC uintptr
	// Boundary holds function name prefixes of wrapper frames to skip.
	Boundary []string
	// Skip is the number of frames to skip after the boundary.
	Skip int
}

// maxCallerDepth bounds the stack walk of the caller resolution.
const maxCallerDepth = 64

// internalBoundary are the backend frames never reported as callers.
var internalBoundary = func() []string {
	pkg := reflect.TypeOf(logger{}).PkgPath()
	return []string{
		pkg + ".callerFrame",
		pkg + ".newEntry",
		pkg + ".(*logger).",
		pkg + ".(*upgraded).",
	}
}()

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// callerFrame resolves the frame of the code that called the logging API.
func callerFrame(marker *Marker) runtime.Frame {
	if marker != nil && marker.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{marker.PC}).Next()
		return frame
	}

	var boundary []string
	var skip int
	if marker != nil {
		boundary, skip = marker.Boundary, marker.Skip
	}

	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var last runtime.Frame
	for {
		frame, more := frames.Next()
		last = frame
		if !hasAnyPrefix(frame.Function, internalBoundary) && !hasAnyPrefix(frame.Function, boundary) {
			if skip == 0 {
				return frame
			}
			skip--
		}
		if !more {
			return last
		}
	}
}

// logger is the built in LocationAwareLogger, it forwards to the registry's
// sinks.
type logger struct {
	name     string
	registry *Registry
}

// Name returns the identity of the logger.
func (lg *logger) Name() string {
	return lg.name
}

// Enabled reports whether level is currently enabled for this logger.
func (lg *logger) Enabled(level Level) bool {
	return lg.registry.Enabled(lg.name, level)
}

// Log writes a brace formatted message at level.
func (lg *logger) Log(level Level, format string, args ...any) {
	if !lg.Enabled(level) {
		return
	}
	msg, err := FormatBraces(format, args)
	lg.registry.dispatch(newEntry(lg.name, level, lg.registry.Prefix(), msg, err, nil))
}

// LogAt writes msg at level with an explicit caller location and failure.
func (lg *logger) LogAt(marker *Marker, level Level, msg string, args []any, err error) {
	if !lg.Enabled(level) {
		return
	}
	if len(args) > 0 {
		var trailing error
		msg, trailing = FormatBraces(msg, args)
		if err == nil {
			err = trailing
		}
	}
	lg.registry.dispatch(newEntry(lg.name, level, lg.registry.Prefix(), msg, err, marker))
}

// upgraded wraps a Logger lacking explicit location support. Caller
// resolution is left to the wrapped logger.
type upgraded struct {
	Logger
}

// Upgrade returns l as a LocationAwareLogger. Loggers without location
// support are wrapped after a warning is logged through them.
func Upgrade(l Logger) LocationAwareLogger {
	if la, ok := l.(LocationAwareLogger); ok {
		return la
	}
	l.Log(WarnLevel, "Logger {} of type {} does not support caller locations, locations may be inaccurate", l.Name(), fmt.Sprintf("%T", l))
	return &upgraded{Logger: l}
}

// LogAt drops the location and forwards the message and failure.
func (u *upgraded) LogAt(_ *Marker, level Level, msg string, args []any, err error) {
	if !u.Enabled(level) {
		return
	}
	if err == nil {
		u.Logger.Log(level, msg, args...)
		return
	}
	u.Logger.Log(level, msg, append(append([]any(nil), args...), err)...)
}
