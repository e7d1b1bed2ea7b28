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

//go:build !linux

package backend

// NewSyslogSink is a no-op sink for platforms without an OS native syslog
// framework.
func NewSyslogSink(ident string) *SyslogSink {
	return &SyslogSink{
		sinkID: syslogSinkID,
		ident:  ident,
		config: newSinkConfig(),
	}
}

// Log is no-op as there's no OS native syslog framework available.
func (sb *SyslogSink) Log(entry *LogEntry) error {
	return nil
}
