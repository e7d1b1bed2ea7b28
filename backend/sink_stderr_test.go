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
	"strings"
	"testing"

	"github.com/pkg/errors"
)

const (
	writeFailure int = iota
	writeLenFailure
)

type errorWriter struct {
	failureType int
}

func (ew errorWriter) Write(data []byte) (int, error) {
	if ew.failureType == writeFailure {
		return 0, errors.New("injected write error")
	} else if ew.failureType == writeLenFailure {
		return 0, nil
	}
	return len(data), nil
}

func TestWriterSinkWriteFailure(t *testing.T) {
	be := NewWriterSink("test", &errorWriter{failureType: writeFailure})

	entry := newEntry("test", ErrorLevel, "", "foobar", nil, nil)
	err := be.Log(entry)
	if err == nil {
		t.Fatalf("Log() expected error, got nil")
	}
}

func TestWriterSinkWriteLenFailure(t *testing.T) {
	be := NewWriterSink("test", &errorWriter{failureType: writeLenFailure})

	entry := newEntry("test", ErrorLevel, "", "foobar", nil, nil)
	err := be.Log(entry)
	if err == nil {
		t.Fatalf("Log() expected error, got nil")
	}
}

func TestWriterSinkInvalidFormat(t *testing.T) {
	logBuffer := bytes.NewBuffer(nil)
	be := NewWriterSink("test", logBuffer)

	be.Config().SetFormat(ErrorLevel, "{{.Foobar}}")

	entry := newEntry("test", ErrorLevel, "", "foobar", nil, nil)
	err := be.Log(entry)
	if err == nil {
		t.Fatalf("Log() expected error, got nil")
	}
}

func TestWriterSinkSuccess(t *testing.T) {
	tests := []struct {
		desc    string
		message string
		level   Level
		err     error
		want    string
	}{
		{
			desc:    "error_level",
			message: "foo bar",
			level:   ErrorLevel,
			want:    "[ERROR] a.b.C: foo bar\n",
		},
		{
			desc:    "error_level_failure",
			message: "foo bar",
			level:   ErrorLevel,
			err:     errors.New("boom"),
			want:    "[ERROR] a.b.C: foo bar: boom\n",
		},
		{
			desc:    "warn_level",
			message: "foo bar",
			level:   WarnLevel,
			want:    "[WARN] a.b.C: foo bar\n",
		},
		{
			desc:    "info_level",
			message: "foo bar",
			level:   InfoLevel,
			want:    "[INFO] a.b.C: foo bar\n",
		},
		{
			desc:    "trace_level",
			message: "foo bar",
			level:   TraceLevel,
			want:    ") foo bar\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			logBuffer := bytes.NewBuffer(nil)
			be := NewWriterSink("test", logBuffer)
			if be.Config() == nil {
				t.Fatal("NewWriterSink() failed: Config() returned nil")
			}

			entry := newEntry("a.b.C", tc.level, "", tc.message, tc.err, nil)
			if err := be.Log(entry); err != nil {
				t.Fatalf("Log() failed: %v", err)
			}

			if !strings.HasSuffix(logBuffer.String(), tc.want) {
				t.Fatalf("Log() got: %s, want suffix: %s", logBuffer.String(), tc.want)
			}
		})
	}
}

func TestStderrSinkFlush(t *testing.T) {
	be := NewStderrSink()
	if got := be.ID(); got != "log-sink,stderr" {
		t.Errorf("ID() = %q, want: %q", got, "log-sink,stderr")
	}
	if err := be.Flush(); err != nil {
		t.Errorf("Flush() = %v, want: nil", err)
	}
}
