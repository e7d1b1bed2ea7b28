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

package logrshim

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/backend/backendtest"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

func TestMapLevel(t *testing.T) {
	tests := []struct {
		v    int
		want backend.Level
	}{
		{-1, backend.InfoLevel},
		{0, backend.InfoLevel},
		{1, backend.DebugLevel},
		{2, backend.TraceLevel},
		{9, backend.TraceLevel},
	}

	for _, tc := range tests {
		got, ok := MapLevel(tc.v)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got, "V(%d)", tc.v)
	}
}

func TestSinkRoundTrip(t *testing.T) {
	rec := backendtest.Record(t, "a.b.C", backend.InfoLevel)
	lg := New("a.b.C")

	assert.True(t, lg.Enabled())
	assert.False(t, lg.V(1).Enabled())

	lg.V(1).Info("dropped")
	assert.Zero(t, rec.Len())

	lg.Info("hi", "n", 3)
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, "hi n=3", rec.Last().Message)
	assert.Equal(t, backend.InfoLevel, rec.Last().Level)
	assert.Equal(t, "a.b.C", rec.Last().Logger)
}

func TestSinkError(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.error", backend.ErrorLevel)
	cause := errors.New("disk full")
	lg := New("logrshim.error")

	lg.Info("dropped")
	lg.Error(cause, "write failed", "path", "/tmp")

	require.Equal(t, 1, rec.Len())
	entry := rec.Last()
	assert.Equal(t, backend.ErrorLevel, entry.Level)
	assert.Equal(t, "write failed path=/tmp", entry.Message)
	assert.Equal(t, cause, entry.Err)
}

func TestSinkNullMessage(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.null", backend.TraceLevel)
	lg := New("logrshim.null")

	tests := []struct {
		desc string
		log  func()
		want backend.Level
	}{
		{"info", func() { lg.Info("") }, backend.InfoLevel},
		{"v1", func() { lg.V(1).Info("") }, backend.DebugLevel},
		{"v2", func() { lg.V(2).Info("") }, backend.TraceLevel},
		{"error", func() { lg.Error(nil, "") }, backend.ErrorLevel},
		{"error_v2", func() { lg.V(2).Error(errors.New("boom"), "") }, backend.ErrorLevel},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			rec.Reset()
			tc.log()
			require.Equal(t, 1, rec.Len())
			assert.Equal(t, shim.NullMessage, rec.Last().Message)
			assert.Equal(t, tc.want, rec.Last().Level)
		})
	}
}

// countingStringer counts how often it is rendered.
type countingStringer struct {
	calls int
}

func (cs *countingStringer) String() string {
	cs.calls++
	return "rendered"
}

func TestSinkSkipsFormatting(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.render", backend.OffLevel)
	lg := New("logrshim.render")
	arg := &countingStringer{}

	tests := []struct {
		desc string
		log  func()
	}{
		{"info", func() { lg.Info("value", "arg", arg) }},
		{"v1", func() { lg.V(1).Info("value", "arg", arg) }},
		{"v2", func() { lg.V(2).Info("value", "arg", arg) }},
		{"error", func() { lg.Error(nil, "value", "arg", arg) }},
		{"with_values", func() { lg.WithValues("arg", arg).Info("value") }},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			tc.log()
			assert.Zero(t, arg.calls)
		})
	}

	backend.SetLevel("logrshim.render", backend.ErrorLevel)
	lg.V(1).Info("value", "arg", arg)
	assert.Zero(t, arg.calls)
	lg.Error(nil, "value", "arg", arg)
	assert.Equal(t, 1, arg.calls)
	assert.Equal(t, []string{"value arg=rendered"}, rec.Messages())
}

func TestSinkValues(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.values", backend.TraceLevel)
	lg := New("logrshim.values").WithValues("svc", "api").WithName("child")

	lg.V(2).Info("msg", "k", "a b", "dangling")

	require.Equal(t, 1, rec.Len())
	entry := rec.Last()
	assert.Equal(t, "logrshim.values.child", entry.Logger)
	assert.Equal(t, backend.TraceLevel, entry.Level)
	assert.Equal(t, `msg svc=api k="a b" dangling=<no-value>`, entry.Message)
}

func TestSinkWithNameGating(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.gate", backend.InfoLevel)
	backend.SetLevel("logrshim.gate.quiet", backend.ErrorLevel)
	t.Cleanup(func() { backend.ClearLevel("logrshim.gate.quiet") })

	lg := New("logrshim.gate")
	lg.WithName("quiet").Info("dropped")
	lg.WithName("loud").Info("kept")

	assert.Equal(t, []string{"kept"}, rec.Messages())
	assert.Equal(t, "child", New(backend.RootLoggerName).WithName("child").GetSink().(*Sink).Name())
}

// logThrough logs from a helper that declares itself with WithCallDepth.
func logThrough(lg logr.Logger, msg string) {
	lg.WithCallDepth(1).Info(msg)
}

func TestSinkCallerLocation(t *testing.T) {
	rec := backendtest.Record(t, "logrshim.caller", backend.InfoLevel)
	lg := New("logrshim.caller")

	func() {
		lg.Info("direct")
	}()
	func() {
		logThrough(lg, "helper")
	}()

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.True(t, strings.HasSuffix(entries[0].Function, "TestSinkCallerLocation.func1"), "function = %s", entries[0].Function)
	assert.True(t, strings.HasSuffix(entries[1].Function, "TestSinkCallerLocation.func2"), "function = %s", entries[1].Function)
}

func TestBridge(t *testing.T) {
	b := Bridge{}
	assert.Nil(t, b.Attribute("a"))
	assert.Empty(t, b.AttributeNames())
	b.Release()
	b.RemoveAttribute("a")
	assert.ErrorIs(t, b.SetAttribute("a", 1), shim.ErrUnsupported)
	assert.Equal(t, "github.com/GoogleCloudPlatform/logbridge/logrshim.Bridge", b.GetInstanceFor(b).GetSink().(*Sink).Name())
	assert.Equal(t, "x", b.GetInstance("x").GetSink().(*Sink).Name())
}

// resetDefault clears the default logger before and after the test.
func resetDefault(t *testing.T) {
	defaultLogger.Store(nil)
	t.Cleanup(func() { defaultLogger.Store(nil) })
}

func TestInstall(t *testing.T) {
	resetDefault(t)
	rec := backendtest.Record(t, backend.RootLoggerName, backend.InfoLevel)

	holder, pristine := Slot{}.Holder()
	require.True(t, pristine, "holder = %s", holder)
	assert.Equal(t, logr.Discard(), Default())

	inst := NewInstaller()
	require.NoError(t, inst.Install())
	assert.Equal(t, install.Initialized, inst.State())

	Default().Info("via logr")
	assert.Equal(t, []string{"via logr"}, rec.Messages())
}

func TestInstallConflict(t *testing.T) {
	resetDefault(t)
	SetDefault(funcr.New(func(string, string) {}, funcr.Options{}))

	err := NewInstaller().Install()
	assert.ErrorIs(t, err, install.ErrConflict)
	assert.Contains(t, err.Error(), "funcr")
}
