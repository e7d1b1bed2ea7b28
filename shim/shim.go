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

// Package shim holds the translate-and-forward core shared by every logging
// framework adapter: level mapping, the enablement gate, message
// normalization and the forwarding call into the backend.
package shim

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/GoogleCloudPlatform/logbridge/backend"
)

// ErrUnsupported is returned by operations that would reconfigure a logger
// owned by the backend, or that have no meaning once a framework is
// redirected.
var ErrUnsupported = errors.New("unsupported operation, logging is configured by the backend")

// Unsupported returns ErrUnsupported annotated with the rejected operation.
func Unsupported(op string) error {
	return errors.Wrap(ErrUnsupported, op)
}

// Record is the per-call log record handed to a Capability. It is never
// retained after Emit returns.
type Record struct {
	// Level is the canonical level, set by Log.
	Level backend.Level
	// Message is the normalized message, never empty.
	Message string
	// Err is the attached failure, rendered by the backend.
	Err error
	// Marker locates the calling code, nil uses the capability's boundary.
	Marker *backend.Marker
}

// Capability is what every adapter needs from the backend.
type Capability interface {
	// Enabled asks the backend whether level is enabled. It is never cached.
	Enabled(level backend.Level) bool
	// Emit forwards rec to the backend as a single call.
	Emit(rec Record)
}

// Mapper maps a framework level to a canonical level. ok is false when the
// level disables logging.
type Mapper[L any] func(level L) (canonical backend.Level, ok bool)

// Log maps level, gates it against c and, only when enabled, renders and
// emits the record. It reports whether a record was emitted.
func Log[L any](c Capability, mapper Mapper[L], level L, render func() Record) bool {
	canonical, ok := mapper(level)
	if !ok || !c.Enabled(canonical) {
		return false
	}
	rec := render()
	rec.Level = canonical
	if rec.Message == "" {
		rec.Message = NullMessage
	}
	c.Emit(rec)
	return true
}

// Probe returns the most permissive canonical level enabled for c, walking
// from TRACE to ERROR. ok is false when no level is enabled.
func Probe(c Capability) (level backend.Level, ok bool) {
	for _, lvl := range backend.Levels() {
		if c.Enabled(lvl) {
			return lvl, true
		}
	}
	return backend.OffLevel, false
}

// forwarderBoundary are the frames of this package, always skipped.
var forwarderBoundary = func() []string {
	pkg := reflect.TypeOf(Forwarder{}).PkgPath()
	return []string{pkg + ".(*Forwarder).", pkg + ".Log["}
}()

// Forwarder is the Capability backed by the backend logger of one identity.
type Forwarder struct {
	name     string
	logger   backend.LocationAwareLogger
	boundary []string
}

// NewForwarder returns the Forwarder of name. boundary lists the function
// name prefixes of the adapter and framework frames the backend skips when
// locating the caller.
func NewForwarder(name string, boundary ...string) *Forwarder {
	if name == "" {
		name = backend.RootLoggerName
	}
	return &Forwarder{
		name:     name,
		logger:   backend.Lookup(name),
		boundary: append(append([]string(nil), forwarderBoundary...), boundary...),
	}
}

// Name returns the logger identity.
func (f *Forwarder) Name() string {
	return f.name
}

// Boundary returns the caller boundary of the forwarder.
func (f *Forwarder) Boundary() []string {
	return f.boundary
}

// Enabled delegates to the backend logger.
func (f *Forwarder) Enabled(level backend.Level) bool {
	return f.logger.Enabled(level)
}

// Emit issues the backend call. The message is passed without arguments so
// the backend never reinterprets it as a template.
func (f *Forwarder) Emit(rec Record) {
	marker := rec.Marker
	switch {
	case marker == nil:
		marker = &backend.Marker{Boundary: f.boundary}
	case marker.PC == 0:
		marker = &backend.Marker{
			Boundary: append(append([]string(nil), f.boundary...), marker.Boundary...),
			Skip:     marker.Skip,
		}
	}
	f.logger.LogAt(marker, rec.Level, rec.Message, nil, rec.Err)
}
