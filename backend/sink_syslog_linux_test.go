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

//go:build linux

package backend

import (
	"log/syslog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSyslog(t *testing.T) {
	if _, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "test"); err != nil {
		t.Skipf("syslog not found, skipping test: %v", err)
	}

	r := NewRegistry()
	r.SetLevel(RootLoggerName, TraceLevel)
	be := NewSyslogSink("logbridge-test")
	r.RegisterSink(be)
	lg := r.Lookup("syslog")

	success := sinkWritesTotal.WithLabelValues(syslogSinkID, "success")
	failure := sinkWritesTotal.WithLabelValues(syslogSinkID, "error")
	baseSuccess, baseFailure := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	for writtenEntries, level := range allLevels {
		t.Run(level.String(), func(t *testing.T) {
			lg.Log(level, "foobar")

			if got := testutil.ToFloat64(failure) - baseFailure; got != 0 {
				t.Errorf("got errors %v, want 0", got)
			}

			if got := testutil.ToFloat64(success) - baseSuccess; got != float64(writtenEntries+1) {
				t.Errorf("got success %v, want %d", got, writtenEntries+1)
			}
		})
	}
}
