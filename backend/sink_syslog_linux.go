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

	"github.com/pkg/errors"
)

// NewSyslogSink returns a Sink implementation that will log out to the
// underlying system's syslog framework.
func NewSyslogSink(ident string) *SyslogSink {
	res := &SyslogSink{
		sinkID: syslogSinkID,
		ident:  ident,
		config: newSinkConfig(),
	}

	res.config.SetFormat(ErrorLevel, "{{if .Prefix}}{{.Prefix}}: {{end}}{{.Logger}}: {{.Message}}{{if .Err}}: {{.Failure}}{{end}}")
	res.config.SetFormat(DebugLevel, "{{if .Prefix}}{{.Prefix}}: {{end}}{{.Logger}}: ({{.File}}:{{.Line}}) {{.Message}}{{if .Err}}: {{.Failure}}{{end}}")

	return res
}

// Log prints the log entry to syslog.
func (sb *SyslogSink) Log(entry *LogEntry) error {
	err := sb.writeEntry(entry)
	recordWrite(sb.sinkID, err)
	return err
}

func (sb *SyslogSink) writeEntry(entry *LogEntry) error {
	writer, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, sb.ident)
	if err != nil {
		return errors.Wrap(err, "opening syslog")
	}
	defer writer.Close()

	format := sb.config.Format(entry.Level)
	message, err := entry.Format(format)
	if err != nil {
		return errors.Wrap(err, "formating syslog message")
	}

	ops := map[Level]func(string) error{
		TraceLevel: writer.Debug,
		DebugLevel: writer.Debug,
		InfoLevel:  writer.Info,
		WarnLevel:  writer.Warning,
		ErrorLevel: writer.Err,
	}

	if ptr, found := ops[entry.Level]; found {
		if err := ptr(message); err != nil {
			return errors.Wrap(err, "writing to syslog")
		}
	}

	return nil
}
