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

// Package slogshim redirects log/slog, and the standard log package which
// slog reroutes, to the logbridge backend.
package slogshim

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

const (
	// LevelTrace is the slog level mapped to TRACE.
	LevelTrace = slog.Level(-8)
	// LevelOff disables logging when used as a threshold.
	LevelOff = slog.Level(math.MaxInt)
)

// boundary locates the caller of records built without a PC.
var boundary = []string{
	"log/slog.",
	"log.",
	"github.com/GoogleCloudPlatform/logbridge/slogshim.(*Handler).",
}

// MapLevel maps a slog level to the canonical level using thresholds: every
// level at or above a canonical level maps to it. LevelOff and levels below
// LevelTrace disable logging.
func MapLevel(level slog.Level) (backend.Level, bool) {
	switch {
	case level == LevelOff:
		return backend.OffLevel, false
	case level >= slog.LevelError:
		return backend.ErrorLevel, true
	case level >= slog.LevelWarn:
		return backend.WarnLevel, true
	case level >= slog.LevelInfo:
		return backend.InfoLevel, true
	case level >= slog.LevelDebug:
		return backend.DebugLevel, true
	case level >= LevelTrace:
		return backend.TraceLevel, true
	default:
		return backend.OffLevel, false
	}
}

// slogLevels maps back the canonical levels.
var slogLevels = map[backend.Level]slog.Level{
	backend.TraceLevel: LevelTrace,
	backend.DebugLevel: slog.LevelDebug,
	backend.InfoLevel:  slog.LevelInfo,
	backend.WarnLevel:  slog.LevelWarn,
	backend.ErrorLevel: slog.LevelError,
}

// Handler is a slog.Handler forwarding to the backend logger of one name.
type Handler struct {
	fw    *shim.Forwarder
	level slog.Level

	// fields holds the pre-rendered attributes of WithAttrs.
	fields string
	// err is the error attribute bound by WithAttrs.
	err error
	// group is the dotted prefix of the open groups.
	group string
}

// NewHandler returns the Handler of name. Its Level is a snapshot of the
// backend's level taken now.
func NewHandler(name string) *Handler {
	fw := shim.NewForwarder(name, boundary...)
	level := LevelOff
	if lvl, ok := shim.Probe(fw); ok {
		level = slogLevels[lvl]
	}
	return &Handler{fw: fw, level: level}
}

// Name returns the logger identity.
func (h *Handler) Name() string {
	return h.fw.Name()
}

// Level returns the level snapshot taken at construction, LevelOff when the
// backend had every level disabled.
func (h *Handler) Level() slog.Level {
	return h.level
}

// Enabled asks the backend, never the snapshot.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	canonical, ok := MapLevel(level)
	return ok && h.fw.Enabled(canonical)
}

// Handle forwards r. The first error attribute becomes the failure, the other
// attributes are appended to the message as key=value pairs.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	shim.Log(h.fw, MapLevel, r.Level, func() shim.Record {
		var sb strings.Builder
		sb.WriteString(shim.Message(r.Message))
		sb.WriteString(h.fields)
		failure := h.err
		r.Attrs(func(a slog.Attr) bool {
			failure = appendAttr(&sb, h.group, a, failure)
			return true
		})

		rec := shim.Record{Message: sb.String(), Err: failure}
		if r.PC != 0 {
			rec.Marker = &backend.Marker{PC: r.PC}
		}
		return rec
	})
	return nil
}

// WithAttrs returns a Handler rendering attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	var sb strings.Builder
	sb.WriteString(h.fields)
	for _, a := range attrs {
		clone.err = appendAttr(&sb, h.group, a, clone.err)
	}
	clone.fields = sb.String()
	return &clone
}

// WithGroup returns a Handler qualifying the following attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

// SetLevel is rejected, levels are configured in the backend.
func (h *Handler) SetLevel(slog.Level) error {
	return shim.Unsupported("slog handler SetLevel")
}

// AddHandler is rejected, the backend owns the output.
func (h *Handler) AddHandler(slog.Handler) error {
	return shim.Unsupported("slog handler AddHandler")
}

// RemoveHandler is rejected, the backend owns the output.
func (h *Handler) RemoveHandler(slog.Handler) error {
	return shim.Unsupported("slog handler RemoveHandler")
}

// appendAttr renders a into sb and returns the failure, which is the first
// error valued attribute seen.
func appendAttr(sb *strings.Builder, group string, a slog.Attr, failure error) error {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return failure
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = group + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			failure = appendAttr(sb, prefix, ga, failure)
		}
		return failure
	}

	if err, ok := a.Value.Any().(error); ok && failure == nil {
		return err
	}

	shim.AppendField(sb, group+a.Key, a.Value.Any())
	return failure
}
