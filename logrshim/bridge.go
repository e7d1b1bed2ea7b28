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

package logrshim

import (
	"fmt"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/internal/caller"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

// Provider is the holder identity of the default logger once installed.
const Provider = "github.com/GoogleCloudPlatform/logbridge/logrshim"

// unset is the holder of the default logger before SetDefault.
const unset = "unset"

var defaultLogger atomic.Pointer[logr.Logger]

// Default returns the process wide logger, a discarding one until SetDefault
// is called.
func Default() logr.Logger {
	if l := defaultLogger.Load(); l != nil {
		return *l
	}
	return logr.Discard()
}

// SetDefault replaces the process wide logger.
func SetDefault(l logr.Logger) {
	defaultLogger.Store(&l)
}

// Bridge hands out logr loggers backed by the backend. Attributes are not
// supported.
type Bridge struct{}

// GetInstance returns the logger of name.
func (Bridge) GetInstance(name string) logr.Logger {
	return New(name)
}

// GetInstanceFor returns the logger named after the type of v.
func (Bridge) GetInstanceFor(v any) logr.Logger {
	return New(caller.TypeName(v))
}

// Attribute returns nil.
func (Bridge) Attribute(string) any {
	return nil
}

// AttributeNames returns no names.
func (Bridge) AttributeNames() []string {
	return nil
}

// Release does nothing.
func (Bridge) Release() {}

// RemoveAttribute does nothing.
func (Bridge) RemoveAttribute(string) {}

// SetAttribute is rejected, there is nothing to configure.
func (Bridge) SetAttribute(string, any) error {
	return shim.Unsupported("logr SetAttribute")
}

// Slot is the process wide logr logger of this package.
type Slot struct{}

// Framework names logr.
func (Slot) Framework() string {
	return "logr"
}

// Holder reports the type of the default sink, pristine while unset.
func (Slot) Holder() (string, bool) {
	l := defaultLogger.Load()
	if l == nil {
		return unset, true
	}
	if _, ok := l.GetSink().(*Sink); ok {
		return Provider, false
	}
	return fmt.Sprintf("%T", l.GetSink()), false
}

// Claim sets the default logger to the backend root.
func (Slot) Claim() {
	SetDefault(New(backend.RootLoggerName))
}

// Verify checks the default logger uses a Sink.
func (Slot) Verify() error {
	if _, ok := Default().GetSink().(*Sink); !ok {
		return errors.Errorf("default sink is %T", Default().GetSink())
	}
	return nil
}

// NewInstaller returns an installer of the logr slot. Verification
// mismatches are reported and tolerated.
func NewInstaller(opts ...install.Option) *install.Installer {
	return install.New(Slot{}, Provider, install.Warn, opts...)
}
