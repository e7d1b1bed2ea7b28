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

// Package zapshim redirects go.uber.org/zap to the logbridge backend through
// a zapcore.Core.
package zapshim

import (
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

// TraceLevel is the zap level standing for TRACE, every level below
// DebugLevel maps to it.
const TraceLevel = zapcore.DebugLevel - 1

var boundary = []string{
	"go.uber.org/zap.",
	"go.uber.org/zap/zapcore.",
	"github.com/go-logr/zapr.",
	"github.com/go-logr/logr.",
	"github.com/GoogleCloudPlatform/logbridge/zapshim.(*Core).",
}

// MapLevel maps a zap level to the canonical level. DPanic, Panic and Fatal
// collapse into ERROR, levels below Debug are TRACE.
func MapLevel(level zapcore.Level) (backend.Level, bool) {
	switch {
	case level >= zapcore.InvalidLevel:
		return backend.OffLevel, false
	case level >= zapcore.ErrorLevel:
		return backend.ErrorLevel, true
	case level == zapcore.WarnLevel:
		return backend.WarnLevel, true
	case level == zapcore.InfoLevel:
		return backend.InfoLevel, true
	case level == zapcore.DebugLevel:
		return backend.DebugLevel, true
	default:
		return backend.TraceLevel, true
	}
}

var zapLevels = map[backend.Level]zapcore.Level{
	backend.TraceLevel: TraceLevel,
	backend.DebugLevel: zapcore.DebugLevel,
	backend.InfoLevel:  zapcore.InfoLevel,
	backend.WarnLevel:  zapcore.WarnLevel,
	backend.ErrorLevel: zapcore.ErrorLevel,
}

// Core is a zapcore.Core forwarding to the backend. Entries carrying a
// logger name, set with zap's Named, are forwarded to the backend logger of
// that name, the others to the core's own name.
type Core struct {
	fw     *shim.Forwarder
	level  zapcore.Level
	fields []zapcore.Field
}

var _ zapcore.Core = (*Core)(nil)

// NewCore returns the Core of name. Its Level is a snapshot of the backend's
// level taken now.
func NewCore(name string) *Core {
	fw := shim.NewForwarder(name, boundary...)
	level := zapcore.InvalidLevel
	if lvl, ok := shim.Probe(fw); ok {
		level = zapLevels[lvl]
	}
	return &Core{fw: fw, level: level}
}

// Name returns the logger identity of the core.
func (c *Core) Name() string {
	return c.fw.Name()
}

// Level returns the level snapshot, InvalidLevel when the backend had every
// level disabled. zapcore.LevelOf reports it.
func (c *Core) Level() zapcore.Level {
	return c.level
}

// Enabled reports whether the backend enables level for the core's name or
// for any configured name below it, zap asks it without the entry's logger
// name. Check then gates each entry on its own name.
func (c *Core) Enabled(level zapcore.Level) bool {
	canonical, ok := MapLevel(level)
	return ok && backend.EnabledUnder(c.fw.Name(), canonical)
}

// With returns a Core adding fields to every entry.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

// forwarder returns the forwarder of the entry's logger name.
func (c *Core) forwarder(ent zapcore.Entry) *shim.Forwarder {
	if ent.LoggerName == "" || ent.LoggerName == c.fw.Name() {
		return c.fw
	}
	return shim.NewForwarder(ent.LoggerName, boundary...)
}

// Check adds the core when the backend enables the entry.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	canonical, ok := MapLevel(ent.Level)
	if ok && c.forwarder(ent).Enabled(canonical) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write forwards ent. The first error field becomes the failure, the other
// fields are appended to the message sorted by key.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	shim.Log(c.forwarder(ent), MapLevel, ent.Level, func() shim.Record {
		enc := zapcore.NewMapObjectEncoder()
		var failure error
		for _, group := range [][]zapcore.Field{c.fields, fields} {
			for _, f := range group {
				if err, ok := f.Interface.(error); ok && f.Type == zapcore.ErrorType && failure == nil {
					failure = err
					continue
				}
				f.AddTo(enc)
			}
		}

		var sb strings.Builder
		sb.WriteString(shim.Message(ent.Message))
		keys := make([]string, 0, len(enc.Fields))
		for key := range enc.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			shim.AppendField(&sb, key, enc.Fields[key])
		}

		rec := shim.Record{Message: sb.String(), Err: failure}
		if ent.Caller.Defined && ent.Caller.PC != 0 {
			rec.Marker = &backend.Marker{PC: ent.Caller.PC}
		}
		return rec
	})
	return nil
}

// Sync is a no-op, sinks are flushed by backend.Shutdown.
func (c *Core) Sync() error {
	return nil
}
