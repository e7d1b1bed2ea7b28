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
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const (
	// DefaultSerialBaud is the default serial baud for serial port writing.
	DefaultSerialBaud = 115200
)

// SerialSink is an implementation for logging to serial.
type SerialSink struct {
	// sinkID is the serial sink ID.
	sinkID string
	// opts is the serial configuration options.
	opts *SerialOptions
	// config is a pointer to the generic Config interface implementation.
	config *sinkConfig
	// mu serializes the port usage.
	mu sync.Mutex
}

// SerialOptions contains the options for serial sink.
type SerialOptions struct {
	// Port is the serial port name to be written to.
	Port string
	// Baud is the serial port baud, DefaultSerialBaud when 0.
	Baud int
}

// NewSerialSink returns a Sink implementation that will log out to the
// configured serial port.
func NewSerialSink(opts *SerialOptions) *SerialSink {
	if opts.Baud == 0 {
		opts.Baud = DefaultSerialBaud
	}

	res := &SerialSink{
		sinkID: "log-sink,serial",
		opts:   opts,
		config: newSinkConfig(),
	}

	res.config.SetFormat(ErrorLevel,
		`{{if .Prefix}}{{.Prefix}}: {{end}}{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}] {{.Logger}}: {{.Message}}{{if .Err}}: {{.Failure}}{{end}}`)
	res.config.SetFormat(DebugLevel,
		`{{if .Prefix}}{{.Prefix}}: {{end}}{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}] {{.Logger}}: ({{.File}}:{{.Line}}) {{.Message}}{{if .Err}}: {{.Failure}}{{end}}`)

	return res
}

// Log prints the log entry to setup serial.
func (sb *SerialSink) Log(entry *LogEntry) error {
	format := sb.config.Format(entry.Level)
	message, err := entry.Format(format + "\n")
	if err != nil {
		return errors.Wrap(err, "failed to format log level")
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	port, err := serial.Open(sb.opts.Port, &serial.Mode{BaudRate: sb.opts.Baud})
	if err != nil {
		return errors.Wrap(err, "error opening serial port")
	}
	defer port.Close()

	nn, err := port.Write([]byte(message))
	if err != nil {
		return errors.Wrap(err, "failed to write log to serial")
	}

	if nn != len(message) {
		return errors.Errorf("failed to write the message, wrote %d bytes out of %d bytes", nn, len(message))
	}

	return nil
}

// ID returns the serial sink implementation's ID.
func (sb *SerialSink) ID() string {
	return sb.sinkID
}

// Flush is a no-op implementation for serial sink as we are opening the port
// for every log operation.
func (sb *SerialSink) Flush() error {
	return nil
}

// Config returns the configuration of the serial sink.
func (sb *SerialSink) Config() Config {
	return sb.config
}
