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

package logrusshim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/backend/backendtest"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

func TestMapLevel(t *testing.T) {
	tests := []struct {
		level logrus.Level
		want  backend.Level
		ok    bool
	}{
		{logrus.PanicLevel, backend.ErrorLevel, true},
		{logrus.FatalLevel, backend.ErrorLevel, true},
		{logrus.ErrorLevel, backend.ErrorLevel, true},
		{logrus.WarnLevel, backend.WarnLevel, true},
		{logrus.InfoLevel, backend.InfoLevel, true},
		{logrus.DebugLevel, backend.DebugLevel, true},
		{logrus.TraceLevel, backend.TraceLevel, true},
		{logrus.Level(42), backend.OffLevel, false},
	}

	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			got, ok := MapLevel(tc.level)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestLoggerRoundTrip(t *testing.T) {
	rec := backendtest.Record(t, "a.b.C", backend.InfoLevel)
	lg := NewLogger("a.b.C")

	assert.Equal(t, logrus.InfoLevel, lg.GetLevel())
	lg.Debugf("dropped %d", 1)
	assert.Zero(t, rec.Len())

	lg.Infof("hi %d", 3)
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

func TestLoggerSkipsFormatting(t *testing.T) {
	backendtest.Record(t, "logrusshim.gate", backend.WarnLevel)
	lg := NewLogger("logrusshim.gate")
	arg := &countingStringer{}

	lg.Infof("value %s", arg)
	lg.Debug(arg)
	assert.Zero(t, arg.calls)

	lg.Warnf("value %s", arg)
	assert.Equal(t, 1, arg.calls)
}

func TestLoggerRegatesAgainstBackend(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.regate", backend.InfoLevel)
	lg := NewLogger("logrusshim.regate")

	// Raising the instance level only moves the snapshot.
	lg.SetLevel(logrus.TraceLevel)
	lg.Debug("dropped by backend")
	assert.Zero(t, rec.Len())
	assert.Equal(t, backend.InfoLevel, backend.EffectiveLevel("logrusshim.regate"))

	backend.SetLevel("logrusshim.regate", backend.ErrorLevel)
	assert.Equal(t, logrus.ErrorLevel, lg.GetLevel())
	lg.Info("dropped after reconfiguration")
	assert.Zero(t, rec.Len())
}

func TestLoggerFollowsBackend(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.follow", backend.InfoLevel)
	lg := NewLogger("logrusshim.follow")
	assert.Equal(t, logrus.InfoLevel, lg.GetLevel())

	backend.SetLevel("logrusshim.follow", backend.DebugLevel)
	assert.Equal(t, logrus.DebugLevel, lg.GetLevel())
	lg.Debug("kept")

	// Parents count too.
	backend.SetLevel("logrusshim", backend.TraceLevel)
	backend.ClearLevel("logrusshim.follow")
	t.Cleanup(func() { backend.ClearLevel("logrusshim") })
	lg.Trace("kept too")

	assert.Equal(t, []string{"kept", "kept too"}, rec.Messages())
}

func TestLoggerLevelOff(t *testing.T) {
	backendtest.Record(t, "logrusshim.off", backend.OffLevel)
	assert.Equal(t, logrus.PanicLevel, NewLogger("logrusshim.off").GetLevel())
}

func TestLoggerCollapse(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.collapse", backend.ErrorLevel)
	lg := NewLogger("logrusshim.collapse")
	exits := 0
	lg.ExitFunc = func(int) { exits++ }

	lg.Fatal("fatal")
	assert.Panics(t, func() { lg.Panic("panic") })
	lg.Error("error")
	lg.Warn("dropped")

	assert.Equal(t, 1, exits)
	assert.Equal(t, []string{"fatal", "panic", "error"}, rec.Messages())
	for _, entry := range rec.Entries() {
		assert.Equal(t, backend.ErrorLevel, entry.Level)
	}
}

func TestLoggerNullMessage(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.null", backend.TraceLevel)
	lg := NewLogger("logrusshim.null")
	lg.ExitFunc = func(int) {}

	tests := []struct {
		desc string
		log  func(args ...any)
		want backend.Level
	}{
		{"trace", lg.Trace, backend.TraceLevel},
		{"debug", lg.Debug, backend.DebugLevel},
		{"info", lg.Info, backend.InfoLevel},
		{"print", lg.Print, backend.InfoLevel},
		{"warn", lg.Warn, backend.WarnLevel},
		{"error", lg.Error, backend.ErrorLevel},
		{"fatal", lg.Fatal, backend.ErrorLevel},
		{"panic", func(args ...any) { assert.Panics(t, func() { lg.Panic(args...) }) }, backend.ErrorLevel},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			rec.Reset()
			tc.log()
			tc.log("")
			require.Equal(t, 2, rec.Len())
			for _, entry := range rec.Entries() {
				assert.Equal(t, shim.NullMessage, entry.Message)
				assert.Equal(t, tc.want, entry.Level)
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.fields", backend.InfoLevel)
	cause := errors.New("disk full")
	lg := NewLogger("logrusshim.fields")

	lg.WithError(cause).WithFields(logrus.Fields{"b": "x y", "a": 1}).Error("write failed")

	require.Equal(t, 1, rec.Len())
	assert.Equal(t, `write failed a=1 b="x y"`, rec.Last().Message)
	assert.Equal(t, cause, rec.Last().Err)
}

func TestLoggerCallerLocation(t *testing.T) {
	rec := backendtest.Record(t, "logrusshim.caller", backend.InfoLevel)
	for _, reportCaller := range []bool{false, true} {
		lg := NewLogger("logrusshim.caller")
		lg.SetReportCaller(reportCaller)

		func() {
			lg.Infof("here")
		}()

		require.Equal(t, 1, rec.Len(), "report caller %v", reportCaller)
		entry := rec.Last()
		assert.True(t, strings.HasSuffix(entry.Function, "TestLoggerCallerLocation.func1"), "function = %s", entry.Function)
		assert.True(t, strings.HasSuffix(entry.File, "logrus_test.go"), "file = %s", entry.File)
		rec.Reset()
	}
}

func TestBridge(t *testing.T) {
	b := Bridge{}
	assert.Nil(t, b.Exists("a"))
	assert.Empty(t, b.CurrentLoggers())
	assert.Equal(t, logrus.TraceLevel, b.Threshold())
	assert.False(t, b.IsDisabled(logrus.DebugLevel))
	b.SetThreshold(logrus.ErrorLevel)
	b.Shutdown()
	b.ResetConfiguration()
	b.AddHierarchyEventListener(func(*logrus.Logger) {})

	assert.True(t, hasHook(b.RootLogger()))
	assert.True(t, hasHook(b.LoggerFor(b)))
}

// restoreStandard puts back the standard logger after the test.
func restoreStandard(t *testing.T) {
	std := logrus.StandardLogger()
	out, formatter, level := std.Out, std.Formatter, std.GetLevel()
	hooks := std.ReplaceHooks(make(logrus.LevelHooks))
	t.Cleanup(func() {
		std.ReplaceHooks(hooks)
		std.SetOutput(out)
		std.SetFormatter(formatter)
		std.SetLevel(level)
	})
}

func TestInstall(t *testing.T) {
	restoreStandard(t)
	rec := backendtest.Record(t, backend.RootLoggerName, backend.InfoLevel)

	holder, pristine := Slot{}.Holder()
	require.True(t, pristine, "holder = %s", holder)

	inst := NewInstaller()
	require.NoError(t, inst.Install())
	assert.Equal(t, install.Initialized, inst.State())

	logrus.WithField("k", "v").Info("via logrus")
	logrus.Debug("dropped")
	backend.SetLevel(backend.RootLoggerName, backend.DebugLevel)
	logrus.Debug("after reconfiguration")
	assert.Equal(t, []string{"via logrus k=v", "after reconfiguration"}, rec.Messages())

	holder, _ = Slot{}.Holder()
	assert.Equal(t, Provider, holder)
}

func TestInstallConflict(t *testing.T) {
	restoreStandard(t)
	logrus.SetOutput(&bytes.Buffer{})

	err := NewInstaller().Install()
	assert.ErrorIs(t, err, install.ErrConflict)
}
