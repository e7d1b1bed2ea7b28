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

package slogshim

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/pkg/errors"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/internal/caller"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

// Provider is the holder identity of the slog default once installed.
const Provider = "github.com/GoogleCloudPlatform/logbridge/slogshim"

// pristineHandler is the type of the handler slog starts with.
const pristineHandler = "*slog.defaultHandler"

// Bridge hands out slog loggers backed by the backend. Its management
// surface is inert: configuration lives in the backend.
type Bridge struct{}

// Handler returns a new Handler of name.
func (Bridge) Handler(name string) *Handler {
	return NewHandler(name)
}

// Logger returns a slog.Logger of name.
func (b Bridge) Logger(name string) *slog.Logger {
	return slog.New(b.Handler(name))
}

// LoggerFor returns a slog.Logger named after the type of v.
func (b Bridge) LoggerFor(v any) *slog.Logger {
	return b.Logger(caller.TypeName(v))
}

// RootLogger returns the slog.Logger of the backend root.
func (b Bridge) RootLogger() *slog.Logger {
	return b.Logger(backend.RootLoggerName)
}

// AddLogger refuses foreign loggers.
func (Bridge) AddLogger(*slog.Logger) bool {
	return false
}

// LoggerNames returns no names, loggers are not tracked.
func (Bridge) LoggerNames() []string {
	return nil
}

// Property returns no configuration property.
func (Bridge) Property(string) string {
	return ""
}

// Reset does nothing.
func (Bridge) Reset() {}

// AddPropertyChangeListener does nothing, properties never change.
func (Bridge) AddPropertyChangeListener(func()) {}

// RemovePropertyChangeListener does nothing.
func (Bridge) RemovePropertyChangeListener(func()) {}

// ReadConfiguration is rejected, configuration is read by the backend.
func (Bridge) ReadConfiguration(io.Reader) error {
	return shim.Unsupported("slog ReadConfiguration")
}

// CheckAccess is rejected, there is no access control to check.
func (Bridge) CheckAccess() error {
	return shim.Unsupported("slog CheckAccess")
}

// Slot is the slog default logger.
type Slot struct{}

// Framework names slog.
func (Slot) Framework() string {
	return "slog"
}

// Holder reports the type of the default handler.
func (Slot) Holder() (string, bool) {
	h := slog.Default().Handler()
	if _, ok := h.(*Handler); ok {
		return Provider, false
	}
	holder := reflect.TypeOf(h).String()
	return holder, holder == pristineHandler
}

// Claim sets the slog default, which also reroutes the log package.
func (Slot) Claim() {
	slog.SetDefault(Bridge{}.RootLogger())
}

// Verify checks the default handler is a Handler.
func (Slot) Verify() error {
	if h := slog.Default().Handler(); h != nil {
		if _, ok := h.(*Handler); ok {
			return nil
		}
		return errors.Errorf("default handler is %T", h)
	}
	return errors.New("default handler is nil")
}

// NewInstaller returns an installer of the slog slot. Verification
// mismatches are reported and tolerated.
func NewInstaller(opts ...install.Option) *install.Installer {
	return install.New(Slot{}, Provider, install.Warn, opts...)
}
