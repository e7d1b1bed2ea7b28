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
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// defaultFileMaxSizeMB is the size a log file reaches before being rotated.
	defaultFileMaxSizeMB = 100
	// defaultFileMaxBackups is the number of rotated files kept.
	defaultFileMaxBackups = 3
)

// FileOptions configures the rotation of a FileSink. Zero values take the
// package defaults, MaxAgeDays 0 keeps rotated files regardless of age.
type FileOptions struct {
	// Path is the path of the log file.
	Path string
	// MaxSizeMB is the size in megabytes a file reaches before being rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
	// Compress gzips the rotated files.
	Compress bool
}

// FileSink is an implementation for logging to a size rotated file.
type FileSink struct {
	// sinkID is the internal id of this file sink.
	sinkID string
	// config is a pointer to the generic Config interface implementation.
	config *sinkConfig
	// mu serializes writes to out.
	mu sync.Mutex
	// out opens the file lazily and rotates it.
	out *lumberjack.Logger
}

// NewFileSink returns a Sink implementation that will log out to the file
// described by opts.
func NewFileSink(opts FileOptions) *FileSink {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultFileMaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = defaultFileMaxBackups
	}

	res := &FileSink{
		sinkID: "log-sink,file",
		config: newSinkConfig(),
		out: &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		},
	}

	res.config.SetFormat(ErrorLevel, defaultErrorFormat)
	res.config.SetFormat(DebugLevel, defaultDebugFormat)

	return res
}

// ID returns the file sink implementation's ID.
func (fb *FileSink) ID() string {
	return fb.sinkID
}

// Log prints the log entry to the file.
func (fb *FileSink) Log(entry *LogEntry) error {
	format := fb.config.Format(entry.Level)
	message, err := entry.Format(format + "\n")
	if err != nil {
		return errors.Wrap(err, "failed to format log message")
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	n, err := fb.out.Write([]byte(message))
	if err != nil {
		return errors.Wrapf(err, "failed to write log to file: %s", fb.out.Filename)
	}

	if n != len(message) {
		return errors.Errorf("failed to write the message, wrote %d bytes out of %d bytes", n, len(message))
	}

	return nil
}

// Config returns the sink configuration of the file sink.
func (fb *FileSink) Config() Config {
	return fb.config
}

// Rotate closes the current file and starts a new one.
func (fb *FileSink) Rotate() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return errors.Wrap(fb.out.Rotate(), "failed to rotate log file")
}

// Flush closes the file, the next write reopens it.
func (fb *FileSink) Flush() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return errors.Wrap(fb.out.Close(), "failed to close log file")
}
