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

// Package logrusshim redirects github.com/sirupsen/logrus to the logbridge
// backend.
//
// Loggers handed out by the package carry the backend level, re-probed on
// every backend level change, so logrus skips formatting disabled records,
// then a hook re-checks the backend and forwards. The logrus output is
// discarded.
package logrusshim

import (
	"io"
	"sort"
	"strings"
	"sync"
	"weak"

	"github.com/sirupsen/logrus"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

var boundary = []string{
	"github.com/sirupsen/logrus.",
	"github.com/GoogleCloudPlatform/logbridge/logrusshim.(*Hook).",
}

// MapLevel maps a logrus level to the canonical level. Panic and Fatal
// collapse into ERROR.
func MapLevel(level logrus.Level) (backend.Level, bool) {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return backend.ErrorLevel, true
	case logrus.WarnLevel:
		return backend.WarnLevel, true
	case logrus.InfoLevel:
		return backend.InfoLevel, true
	case logrus.DebugLevel:
		return backend.DebugLevel, true
	case logrus.TraceLevel:
		return backend.TraceLevel, true
	default:
		return backend.OffLevel, false
	}
}

var logrusLevels = map[backend.Level]logrus.Level{
	backend.TraceLevel: logrus.TraceLevel,
	backend.DebugLevel: logrus.DebugLevel,
	backend.InfoLevel:  logrus.InfoLevel,
	backend.WarnLevel:  logrus.WarnLevel,
	backend.ErrorLevel: logrus.ErrorLevel,
}

// snapshot returns the logrus level matching the backend level of c. Logrus
// has no off level, PanicLevel is the closest.
func snapshot(c shim.Capability) logrus.Level {
	if lvl, ok := shim.Probe(c); ok {
		return logrusLevels[lvl]
	}
	return logrus.PanicLevel
}

// Hook is a logrus hook forwarding every entry to the backend logger of one
// name.
type Hook struct {
	fw *shim.Forwarder
}

// NewHook returns the Hook of name.
func NewHook(name string) *Hook {
	return &Hook{fw: shim.NewForwarder(name, boundary...)}
}

// Name returns the logger identity.
func (h *Hook) Name() string {
	return h.fw.Name()
}

// Levels returns all logrus levels, gating is done by the backend.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire forwards e. An error under logrus.ErrorKey becomes the failure, the
// other fields are appended to the message sorted by key.
func (h *Hook) Fire(e *logrus.Entry) error {
	shim.Log(h.fw, MapLevel, e.Level, func() shim.Record {
		var sb strings.Builder
		sb.WriteString(shim.Message(e.Message))

		var failure error
		keys := make([]string, 0, len(e.Data))
		for key := range e.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := e.Data[key]
			if err, ok := value.(error); ok && key == logrus.ErrorKey {
				failure = err
				continue
			}
			shim.AppendField(&sb, key, value)
		}

		rec := shim.Record{Message: sb.String(), Err: failure}
		if e.Caller != nil && e.Caller.PC != 0 {
			rec.Marker = &backend.Marker{PC: e.Caller.PC}
		}
		return rec
	})
	return nil
}

// nopFormatter renders nothing, the hook already forwarded the entry.
type nopFormatter struct{}

func (nopFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}

// redirected are the loggers whose level follows the backend. Loggers are
// held weakly so dropping a logger also drops it from the list.
var redirected struct {
	sync.Mutex
	once    sync.Once
	loggers []redirection
}

type redirection struct {
	logger weak.Pointer[logrus.Logger]
	hook   *Hook
}

// follow keeps the level of lg in step with the backend level of hook. Logrus
// checks its own level before any hook runs, so a stale level would drop
// entries the backend enables.
func follow(lg *logrus.Logger, hook *Hook) {
	redirected.once.Do(func() {
		backend.OnLevelsChanged(refreshLevels)
	})
	redirected.Lock()
	defer redirected.Unlock()
	ptr := weak.Make(lg)
	for i := range redirected.loggers {
		if redirected.loggers[i].logger == ptr {
			redirected.loggers[i].hook = hook
			return
		}
	}
	redirected.loggers = append(redirected.loggers, redirection{logger: ptr, hook: hook})
}

// refreshLevels resets every live redirected logger to its backend level
// and forgets the collected ones.
func refreshLevels() {
	redirected.Lock()
	defer redirected.Unlock()
	live := redirected.loggers[:0]
	for _, r := range redirected.loggers {
		lg := r.logger.Value()
		if lg == nil {
			continue
		}
		lg.SetLevel(snapshot(r.hook.fw))
		live = append(live, r)
	}
	clear(redirected.loggers[len(live):])
	redirected.loggers = live
}

// redirect points lg at the backend logger of name.
func redirect(lg *logrus.Logger, name string) *Hook {
	hook := NewHook(name)
	lg.SetOutput(io.Discard)
	lg.SetFormatter(nopFormatter{})
	lg.AddHook(hook)
	follow(lg, hook)
	lg.SetLevel(snapshot(hook.fw))
	return hook
}

// NewLogger returns a logrus logger forwarding to the backend logger of name.
// Its level follows the backend, SetLevel on it holds until the next backend
// level change.
func NewLogger(name string) *logrus.Logger {
	lg := logrus.New()
	redirect(lg, name)
	return lg
}

// hasHook reports whether lg carries a Hook on every level.
func hasHook(lg *logrus.Logger) bool {
	for _, level := range logrus.AllLevels {
		found := false
		for _, hook := range lg.Hooks[level] {
			if _, ok := hook.(*Hook); ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
