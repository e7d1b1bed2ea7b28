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
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/backend/backendtest"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

const pkgPath = "github.com/GoogleCloudPlatform/logbridge"

func TestLogRoundTrip(t *testing.T) {
	rec := backendtest.Record(t, "a.b.C", backend.InfoLevel)
	log := NewNamed("a.b.C")

	assert.True(t, log.Enabled(backend.InfoLevel))
	assert.False(t, log.Enabled(backend.DebugLevel))

	log.Debugf("dropped %d", 1)
	log.Trace("dropped")
	assert.Zero(t, rec.Len())

	log.Infof("hi %d", 3)
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, "hi 3", rec.Last().Message)
	assert.Equal(t, backend.InfoLevel, rec.Last().Level)
	assert.Equal(t, "a.b.C", rec.Last().Logger)
}

type countingStringer struct {
	calls int
}

func (cs *countingStringer) String() string {
	cs.calls++
	return "rendered"
}

func TestLogGateBeforeRender(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.gate", backend.WarnLevel)
	log := NewNamed("logbridge.gate")
	arg := &countingStringer{}

	log.Debugf("value %s", arg)
	log.Info("value %s", arg)
	log.Info(arg)
	assert.Zero(t, arg.calls)

	log.Warn("value %s", arg)
	assert.Equal(t, 1, arg.calls)
	assert.Equal(t, []string{"value rendered"}, rec.Messages())
}

func TestLogLevels(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.levels", backend.TraceLevel)
	log := NewNamed("logbridge.levels")

	log.Trace("t")
	log.Tracef("%s", "tf")
	log.Debug("d")
	log.Debugf("%s", "df")
	log.Info("i")
	log.Infof("%s", "if")
	log.Warn("w")
	log.Warnf("%s", "wf")
	log.Error("e")
	log.Errorf("%s", "ef")

	want := []backend.Level{
		backend.TraceLevel, backend.TraceLevel,
		backend.DebugLevel, backend.DebugLevel,
		backend.InfoLevel, backend.InfoLevel,
		backend.WarnLevel, backend.WarnLevel,
		backend.ErrorLevel, backend.ErrorLevel,
	}
	entries := rec.Entries()
	require.Len(t, entries, len(want))
	for i, entry := range entries {
		assert.Equal(t, want[i], entry.Level, entry.Message)
	}
	assert.Equal(t, []string{"t", "tf", "d", "df", "i", "if", "w", "wf", "e", "ef"}, rec.Messages())
}

func TestLogFailureOrder(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.order", backend.InfoLevel)
	log := NewNamed("logbridge.order")
	cause := errors.New("disk full")

	tests := []struct {
		desc        string
		first, last []any
		wantMessage string
	}{
		{"message", []any{cause, "copy failed"}, []any{"copy failed", cause}, "copy failed"},
		{"format", []any{cause, "copy %s to %s", "a", "b"}, []any{"copy %s to %s", "a", "b", cause}, "copy a to b"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			rec.Reset()
			log.Error(tc.first...)
			log.Error(tc.last...)

			entries := rec.Entries()
			require.Len(t, entries, 2)
			for _, entry := range entries {
				assert.Equal(t, tc.wantMessage, entry.Message)
				assert.Equal(t, cause, entry.Err)
				assert.Equal(t, backend.ErrorLevel, entry.Level)
			}
		})
	}
}

func TestRender(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		desc    string
		args    []any
		wantMsg string
		wantErr error
	}{
		{"no-args", nil, shim.NullMessage, nil},
		{"nil", []any{nil}, shim.NullMessage, nil},
		{"empty", []any{""}, shim.NullMessage, nil},
		{"lone-error", []any{cause}, "boom", cause},
		{"only-error-and-nil", []any{cause, nil}, shim.NullMessage, cause},
		{"empty-format", []any{"", 1}, shim.NullFormat, nil},
		{"plain-format", []any{"100%"}, "100%", nil},
		{"bad-verb", []any{"%d", "x"}, "%!d(string=x)", nil},
		{"missing-arg", []any{"%s %s", "x"}, "x %!s(MISSING)", nil},
		{"non-string", []any{1, 2}, "1 2", nil},
		{"stringer", []any{&countingStringer{}}, "rendered", nil},
		{"nil-stringer", []any{(*countingStringer)(nil)}, "<nil>", nil},
		{"nil-stringer-arg", []any{"dial %s", (*countingStringer)(nil)}, "dial <nil>", nil},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			msg, err := render(tc.args)
			assert.Equal(t, tc.wantMsg, msg)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestLogNullFormat(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.null", backend.InfoLevel)
	log := NewNamed("logbridge.null")

	log.Infof("", 1)
	log.Infof("")
	log.Info()

	assert.Equal(t, []string{shim.NullFormat, shim.NullFormat, shim.NullMessage}, rec.Messages())
}

func TestLogfEscapes(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.escapes", backend.InfoLevel)
	log := NewNamed("logbridge.escapes")

	log.Infof("done 100%%")
	log.Info("done 100%%")

	assert.Equal(t, []string{"done 100%", "done 100%%"}, rec.Messages())
}

type widget struct{}

func TestLogNames(t *testing.T) {
	assert.Equal(t, backend.RootLoggerName, Root().Name())
	assert.Equal(t, pkgPath, New().Name())
	assert.Equal(t, pkgPath, NewNamed("").Name())
	assert.Equal(t, pkgPath, NewFor(nil).Name())
	assert.Equal(t, pkgPath+".widget", NewFor(&widget{}).Name())
	assert.Equal(t, "logbridge.Log[a.b]", NewNamed("a.b").String())
}

func TestLogCallerLocation(t *testing.T) {
	rec := backendtest.Record(t, "logbridge.caller", backend.InfoLevel)
	log := NewNamed("logbridge.caller")

	func() {
		log.Infof("here")
	}()

	require.Equal(t, 1, rec.Len())
	entry := rec.Last()
	assert.True(t, strings.HasSuffix(entry.Function, "TestLogCallerLocation.func1"), "function = %s", entry.Function)
	assert.True(t, strings.HasSuffix(entry.File, "logbridge_test.go"), "file = %s", entry.File)
}
