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

package zapshim

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/install"
	"github.com/GoogleCloudPlatform/logbridge/internal/caller"
	"github.com/GoogleCloudPlatform/logbridge/shim"
)

// Provider is the holder identity of the zap globals once installed.
const Provider = "github.com/GoogleCloudPlatform/logbridge/zapshim"

// pristineCore is the core of the globals zap starts with.
const pristineCore = "zapcore.nopCore"

// Bridge hands out zap loggers backed by the backend.
type Bridge struct{}

// Logger returns the logger of name. Named children forward to the dotted
// child names.
func (Bridge) Logger(name string) *zap.Logger {
	lg := zap.New(NewCore(name), zap.AddCaller())
	if name == "" || name == backend.RootLoggerName {
		return lg
	}
	return lg.Named(name)
}

// LoggerFor returns the logger named after the type of v.
func (b Bridge) LoggerFor(v any) *zap.Logger {
	return b.Logger(caller.TypeName(v))
}

// RootLogger returns the logger of the backend root.
func (b Bridge) RootLogger() *zap.Logger {
	return b.Logger(backend.RootLoggerName)
}

// Sugar returns the sugared logger of name.
func (b Bridge) Sugar(name string) *zap.SugaredLogger {
	return b.Logger(name).Sugar()
}

// Logr returns a logr.Logger of name backed by zap through zapr.
func (b Bridge) Logr(name string) logr.Logger {
	return zapr.NewLogger(b.Logger(name))
}

// HasLogger returns true, every name has a logger.
func (Bridge) HasLogger(string) bool {
	return true
}

// ExternalContext returns nil, there is no context to expose.
func (Bridge) ExternalContext() any {
	return nil
}

// RemoveContext does nothing.
func (Bridge) RemoveContext(any) {}

// SetLevel is rejected, levels are configured in the backend.
func (Bridge) SetLevel(string, zapcore.Level) error {
	return shim.Unsupported("zap SetLevel")
}

// Slot is the pair of zap global loggers.
type Slot struct{}

// Framework names zap.
func (Slot) Framework() string {
	return "zap"
}

// Holder reports the type of the global core.
func (Slot) Holder() (string, bool) {
	core := zap.L().Core()
	if _, ok := core.(*Core); ok {
		return Provider, false
	}
	holder := fmt.Sprintf("%T", core)
	return holder, holder == pristineCore
}

// Claim replaces the zap globals with the backend root logger.
func (Slot) Claim() {
	zap.ReplaceGlobals(Bridge{}.RootLogger())
}

// Verify checks both globals use a Core.
func (Slot) Verify() error {
	if _, ok := zap.L().Core().(*Core); !ok {
		return errors.Errorf("global logger core is %T", zap.L().Core())
	}
	if _, ok := zap.S().Desugar().Core().(*Core); !ok {
		return errors.Errorf("global sugared logger core is %T", zap.S().Desugar().Core())
	}
	return nil
}

// NewInstaller returns an installer of the zap slot. Verification failures
// are fatal.
func NewInstaller(opts ...install.Option) *install.Installer {
	return install.New(Slot{}, Provider, install.Fatal, opts...)
}
