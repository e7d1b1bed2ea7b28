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
	// eventlogSinkID is the internal id of this eventlog sink.
	eventlogSinkID = "log-sink,eventlog"
)

// EventlogSink implements the Sink interface for logging to windows
// eventlog.
type EventlogSink struct {
	// sinkID of the sink implementation.
	sinkID string
	// ID of the event to log to.
	eventID uint32
	// ident is the service's ident registered with eventlog.
	ident string
	// config is the configuration of the sink.
	config *sinkConfig
	// registered is true if the sink is registered with eventlog.
	registered bool
}

// ID returns the eventlog sink implementation's ID.
func (eb *EventlogSink) ID() string {
	return eb.sinkID
}

// Config returns the configuration of the eventlog sink.
func (eb *EventlogSink) Config() Config {
	return eb.config
}

// Flush is a no-op implementation for eventlog sink as we are opening
// eventlog for every log operation.
func (eb *EventlogSink) Flush() error {
	return nil
}
