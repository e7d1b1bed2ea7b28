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
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/logging"
	"github.com/pkg/errors"
)

// offlineCloudOptions builds a client that never authenticates, nothing is
// sent before Flush.
func offlineCloudOptions() *CloudOptions {
	return &CloudOptions{
		Ident:                     "logbridge-test",
		ProgramName:               "logbridge.test",
		ProgramVersion:            "1.0.0",
		FlushCadence:              time.Second,
		Project:                   "test-project",
		WithoutAuthentication:     true,
		Instance:                  "test-instance",
		UserAgent:                 "logbridge test",
		DisableClientErrorLogging: true,
	}
}

func TestCloudSinkActive(t *testing.T) {
	ctx := context.Background()
	opts := offlineCloudOptions()
	sink, err := NewCloudSink(ctx, CloudLoggingInitModeActive, opts)
	if err != nil {
		t.Fatalf("NewCloudSink() failed: %v", err)
	}

	if err := sink.InitClient(ctx, opts); !errors.Is(err, errCloudLoggingAlreadyInitialized) {
		t.Errorf("InitClient() = %v, want: %v", err, errCloudLoggingAlreadyInitialized)
	}

	if got := sink.ID(); got != "log-sink,cloudlogging" {
		t.Errorf("ID() = %q, want: %q", got, "log-sink,cloudlogging")
	}

	if got := sink.periodicLogger.interval; got != DefaultClientErrorInterval {
		t.Errorf("periodicLogger.interval = %v, want: %v", got, DefaultClientErrorInterval)
	}

	if !sink.disableClientErrorLogging {
		t.Errorf("disableClientErrorLogging = false, want: true")
	}

	if err := sink.Log(&LogEntry{Level: InfoLevel, When: time.Now(), Message: "foobar"}); err != nil {
		t.Errorf("Log() failed: %v", err)
	}
}

func TestCloudSinkInvalidFormat(t *testing.T) {
	sink, err := NewCloudSink(context.Background(), CloudLoggingInitModeActive, offlineCloudOptions())
	if err != nil {
		t.Fatalf("NewCloudSink() failed: %v", err)
	}

	sink.Config().SetFormat(ErrorLevel, "{{.InvalidField}}")
	if err := sink.Log(&LogEntry{Level: ErrorLevel, When: time.Now(), Message: "foobar"}); err == nil {
		t.Errorf("Log() = nil, want: non-nil")
	}
}

func TestCloudSinkLazyPending(t *testing.T) {
	ctx := context.Background()
	sink, err := NewCloudSink(ctx, CloudLoggingInitModeLazy, &CloudOptions{})
	if err != nil {
		t.Fatalf("NewCloudSink() failed: %v", err)
	}

	const extra = 10
	for i := 0; i < defaultCloudPendingSize+extra; i++ {
		entry := &LogEntry{Level: InfoLevel, When: time.Now(), Message: "entry", Line: i}
		if err := sink.Log(entry); err != nil {
			t.Fatalf("Log() = %v, want: nil", err)
		}
	}

	if got := len(sink.pending); got != defaultCloudPendingSize {
		t.Fatalf("len(pending) = %d, want: %d", got, defaultCloudPendingSize)
	}
	// The oldest entries are dropped.
	if got := sink.pending[0].Line; got != extra {
		t.Errorf("pending[0].Line = %d, want: %d", got, extra)
	}

	if err := sink.Flush(); !errors.Is(err, errCloudLoggingNotInitialized) {
		t.Errorf("Flush() = %v, want: %v", err, errCloudLoggingNotInitialized)
	}

	if err := sink.InitClient(ctx, offlineCloudOptions()); err != nil {
		t.Fatalf("InitClient() failed: %v", err)
	}
	if got := len(sink.pending); got != 0 {
		t.Errorf("len(pending) after InitClient() = %d, want: 0", got)
	}
}

func TestCloudEntry(t *testing.T) {
	sink, err := NewCloudSink(context.Background(), CloudLoggingInitModeLazy, &CloudOptions{})
	if err != nil {
		t.Fatalf("NewCloudSink() failed: %v", err)
	}
	sink.opts = offlineCloudOptions()

	tests := []struct {
		level Level
		want  logging.Severity
	}{
		{TraceLevel, logging.Debug},
		{DebugLevel, logging.Debug},
		{InfoLevel, logging.Info},
		{WarnLevel, logging.Warning},
		{ErrorLevel, logging.Error},
	}

	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			entry := &LogEntry{
				Logger:   "a.b",
				Level:    tc.level,
				When:     time.Now(),
				Message:  "copy failed",
				Err:      errors.New("disk full"),
				File:     "copy.go",
				Line:     42,
				Function: "main.copy",
			}
			got, err := sink.cloudEntry(entry)
			if err != nil {
				t.Fatalf("cloudEntry() failed: %v", err)
			}

			if got.Severity != tc.want {
				t.Errorf("Severity = %v, want: %v", got.Severity, tc.want)
			}
			if got.SourceLocation.GetLine() != 42 || got.SourceLocation.GetFunction() != "main.copy" {
				t.Errorf("SourceLocation = %v, want: copy.go:42 main.copy", got.SourceLocation)
			}

			payload := got.Payload.(*CloudEntryPayload)
			if payload.Message != "copy failed" || payload.Logger != "a.b" {
				t.Errorf("payload = %+v, want message %q logger %q", payload, "copy failed", "a.b")
			}
			if !strings.HasPrefix(payload.Failure, "disk full") {
				t.Errorf("payload.Failure = %q, want prefix %q", payload.Failure, "disk full")
			}
			if payload.ProgName != "logbridge.test" || payload.ProgVersion != "1.0.0" {
				t.Errorf("payload program = %q %q, want: %q %q", payload.ProgName, payload.ProgVersion, "logbridge.test", "1.0.0")
			}
		})
	}
}

func TestPeriodicLogger(t *testing.T) {
	tests := []struct {
		name           string
		lastLog        time.Time
		firstRunPassed bool
		wantLog        bool
	}{
		{
			name:    "first-report-ignores-last-log",
			lastLog: time.Now().Add(-time.Second),
			wantLog: true,
		},
		{
			name:           "within-interval",
			lastLog:        time.Now().Add(-time.Second),
			firstRunPassed: true,
			wantLog:        false,
		},
		{
			name:           "interval-passed",
			lastLog:        time.Now().Add(-3 * time.Second),
			firstRunPassed: true,
			wantLog:        true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			pl := &periodicLogger{
				out:            &out,
				interval:       2 * time.Second,
				lastLog:        tc.lastLog,
				firstRunPassed: tc.firstRunPassed,
			}

			if got := pl.log(errors.New("quota exceeded")); got != tc.wantLog {
				t.Fatalf("log() = %t, want: %t", got, tc.wantLog)
			}
			if got := strings.Contains(out.String(), "quota exceeded"); got != tc.wantLog {
				t.Errorf("output %q reported = %t, want: %t", out.String(), got, tc.wantLog)
			}
			if tc.wantLog && (pl.lastLog.Equal(tc.lastLog) || !pl.firstRunPassed) {
				t.Errorf("log() did not record the report: lastLog %v, firstRunPassed %t", pl.lastLog, pl.firstRunPassed)
			}
		})
	}
}
