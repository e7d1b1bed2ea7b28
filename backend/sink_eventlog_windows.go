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

//go:build windows

package backend

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows/svc/eventlog"
)

// NewEventlogSink returns a new EventlogSink implementation.
func NewEventlogSink(eventID uint32, ident string) (*EventlogSink, error) {
	res := &EventlogSink{
		sinkID:  eventlogSinkID,
		eventID: eventID,
		ident:   ident,
		config:  newSinkConfig(),
	}

	res.config.SetFormat(ErrorLevel, "{{if .Prefix}}{{.Prefix}}: {{end}}{{.Logger}}: {{.Message}}{{if .Err}}: {{.Failure}}{{end}}")
	res.config.SetFormat(DebugLevel, "{{if .Prefix}}{{.Prefix}}: {{end}}{{.Logger}}: ({{.File}}:{{.Line}}) {{.Message}}{{if .Err}}: {{.Failure}}{{end}}")

	return res, nil
}

// Log prints the log entry to eventlog.
func (eb *EventlogSink) Log(entry *LogEntry) error {
	err := eb.writeEntry(entry)
	recordWrite(eb.sinkID, err)
	return err
}

func (eb *EventlogSink) writeEntry(entry *LogEntry) error {
	format := eb.config.Format(entry.Level)
	logMessage, err := entry.Format(format)
	if err != nil {
		return errors.Wrap(err, "failed to format event log message")
	}

	// Only attempt to install the event logger if we've not managed to register
	// before.
	if !eb.registered {
		err := eventlog.InstallAsEventCreate(eb.ident, eventlog.Info|eventlog.Warning|eventlog.Error)
		if err != nil && !strings.Contains(err.Error(), "registry key already exists") {
			return errors.Wrap(err, "failed to install eventlog")
		}
		eb.registered = true
	}

	writer, err := eventlog.Open(eb.ident)
	if err != nil {
		return errors.Wrap(err, "failed to open eventlog")
	}
	defer writer.Close()

	ops := map[Level]func(uint32, string) error{
		TraceLevel: writer.Info,
		DebugLevel: writer.Info,
		InfoLevel:  writer.Info,
		WarnLevel:  writer.Warning,
		ErrorLevel: writer.Error,
	}

	fn, found := ops[entry.Level]
	if !found {
		return errors.Errorf("unsupported event log level: %v", entry.Level)
	}

	if err := fn(eb.eventID, logMessage); err != nil {
		return errors.Wrap(err, "writing to eventlog")
	}

	return nil
}
