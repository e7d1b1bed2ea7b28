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

//go:build !windows

package backend

// NewEventlogSink returns a no-op sink, eventlog only exists on windows.
func NewEventlogSink(eventID uint32, ident string) (*EventlogSink, error) {
	return &EventlogSink{
		sinkID:  eventlogSinkID,
		eventID: eventID,
		ident:   ident,
		config:  newSinkConfig(),
	}, nil
}

// Log is no-op as there's no eventlog outside of windows.
func (eb *EventlogSink) Log(entry *LogEntry) error {
	return nil
}
