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

package logrusshim

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/internal/caller"
)

// Provider is the holder identity of the standard logger once installed.
const Provider = "github.com/GoogleCloudPlatform/logbridge/logrusshim"

// Bridge hands out logrus loggers backed by the backend. The hierarchy
// management surface is inert.
type Bridge struct{}

// Logger returns the logger of name.
func (Bridge) Logger(name string) *logrus.Logger {
	return NewLogger(name)
}

// LoggerFor returns the logger named after the type of v.
func (Bridge) LoggerFor(v any) *logrus.Logger {
	return NewLogger(caller.TypeName(v))
}

// RootLogger returns the logger of the backend root.
func (Bridge) RootLogger() *logrus.Logger {
	return NewLogger(backend.RootLoggerName)
}

// Exists returns nil, loggers are not tracked.
func (Bridge) Exists(string) *logrus.Logger {
	return nil
}

// CurrentLoggers returns no loggers.
func (Bridge) CurrentLoggers() []*logrus.Logger {
	return nil
}

// Threshold lets everything through, the backend decides.
func (Bridge) Threshold() logrus.Level {
	return logrus.TraceLevel
}

// SetThreshold does nothing.
func (Bridge) SetThreshold(logrus.Level) {}

// IsDisabled returns false.
func (Bridge) IsDisabled(logrus.Level) bool {
	return false
}

// Shutdown does nothing, the backend flushes its own sinks.
func (Bridge) Shutdown() {}

// ResetConfiguration does nothing.
func (Bridge) ResetConfiguration() {}

// AddHierarchyEventListener does nothing.
func (Bridge) AddHierarchyEventListener(func(*logrus.Logger)) {}

// Slot is the logrus standard logger.
type Slot struct{}

// Framework names logrus.
func (Slot) Framework() string {
	return "logrus"
}

// Holder describes the standard logger's output. It is pristine while it
// writes text to stderr without hooks.
func (Slot) Holder() (string, bool) {
	std := logrus.StandardLogger()
	if hasHook(std) {
		return Provider, false
	}
	_, text := std.Formatter.(*logrus.TextFormatter)
	pristine := std.Out == os.Stderr && text && len(std.Hooks) == 0
	return fmt.Sprintf("%T to %T with %d hooked levels", std.Formatter, std.Out, len(std.Hooks)), pristine
}

// Claim redirects the standard logger to the backend root.
func (Slot) Claim() {
	redirect(logrus.StandardLogger(), backend.RootLoggerName)
}

// Verify checks every level of the standard logger reaches the backend.
func (Slot) Verify() error {
	if !hasHook(logrus.StandardLogger()) {
		return errors.New("standard logger is not hooked on every level")
	}
	return nil
}

// NewInstaller returns an installer of the logrus slot. Verification
// failures are fatal.
func NewInstaller(opts ...install.Option) *install.Installer {
	return install.New(Slot{}, Provider, install.Fatal, opts...)
}
