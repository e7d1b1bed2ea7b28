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

const (
	// syslogSinkID is the internal id of this syslog sink.
	syslogSinkID = "log-sink,syslog"
)

// SyslogSink is an implementation for logging to the linux syslog.
type SyslogSink struct {
	// sinkID is the internal id of this syslog sink.
	sinkID string
	// ident is the syslog entry ident, it's passed down to the syslog writer.
	ident string
	// config is the generic Config interface implementation.
	config *sinkConfig
}

// ID returns the syslog sink implementation's ID.
func (sb *SyslogSink) ID() string {
	return sb.sinkID
}

// Flush is a no-op implementation for syslog sink as we are opening
// (and closing) syslogger for every log operation.
func (sb *SyslogSink) Flush() error {
	return nil
}

// Config returns the configuration of the syslog sink.
func (sb *SyslogSink) Config() Config {
	return sb.config
}
