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

// Package install performs the one-time, process-wide registration of a
// logbridge bridge as the active provider of a logging framework.
package install

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

//go:generate mockgen -source=install.go -destination=mocks/mock_slot.go -package=mocks

// State is the registration state of an Installer.
type State int32

const (
	// NotInitialized is the state before the first successful Install.
	NotInitialized State = iota
	// Initializing is the state while Install holds the installer lock.
	Initializing
	// Initialized is the final state, Install is a no-op afterwards.
	Initialized
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case NotInitialized:
		return "NotInitialized"
	case Initializing:
		return "Initializing"
	case Initialized:
		return "Initialized"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Policy decides what a verification mismatch does.
type Policy int

const (
	// Fatal fails Install on a verification mismatch.
	Fatal Policy = iota
	// Warn writes a diagnostic and completes Install.
	Warn
)

var (
	// ErrConflict means another provider already holds the framework's slot.
	ErrConflict = errors.New("framework slot is held by another provider")
	// ErrFrameworkAbsent means the framework was compiled out, the installer
	// is skipped.
	ErrFrameworkAbsent = errors.New("framework not present")
	// ErrVerification means the framework didn't hand out the bridge after
	// the slot was claimed.
	ErrVerification = errors.New("installed provider verification failed")
)

// Slot is a framework's process-wide "active provider" setting.
type Slot interface {
	// Framework names the framework owning the slot.
	Framework() string
	// Holder returns the identity of the current provider. pristine is true
	// when the framework's own default still holds the slot.
	Holder() (holder string, pristine bool)
	// Claim points the slot at the bridge.
	Claim()
	// Verify materializes the root logger through the slot and checks it is
	// the bridge's adapter.
	Verify() error
}

// Installer registers a bridge in a Slot exactly once.
type Installer struct {
	slot        Slot
	provider    string
	policy      Policy
	diagnostics io.Writer

	mu    sync.Mutex
	state atomic.Int32
}

// Option configures an Installer.
type Option func(*Installer)

// WithDiagnostics sets where Warn policy diagnostics are written, os.Stderr
// by default.
func WithDiagnostics(w io.Writer) Option {
	return func(in *Installer) {
		in.diagnostics = w
	}
}

// New returns the Installer claiming slot for provider, the identity Holder
// reports once the bridge is installed.
func New(slot Slot, provider string, policy Policy, opts ...Option) *Installer {
	in := &Installer{
		slot:        slot,
		provider:    provider,
		policy:      policy,
		diagnostics: os.Stderr,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// State returns the current registration state.
func (in *Installer) State() State {
	return State(in.state.Load())
}

// Framework names the framework of the installer's slot.
func (in *Installer) Framework() string {
	return in.slot.Framework()
}

// Install claims the slot unless it already holds the bridge, verifies the
// installation and marks the installer Initialized. Calls after a successful
// Install return nil without side effects. It is safe for concurrent use.
func (in *Installer) Install() error {
	if in.State() == Initialized {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.State() == Initialized {
		return nil
	}
	in.state.Store(int32(Initializing))

	framework := in.slot.Framework()
	holder, pristine := in.slot.Holder()
	if holder != in.provider {
		if !pristine {
			in.state.Store(int32(NotInitialized))
			return errors.Wrapf(ErrConflict, "%s: held by %s", framework, holder)
		}
		in.slot.Claim()
	}

	if err := in.slot.Verify(); err != nil {
		if in.policy == Fatal {
			in.state.Store(int32(NotInitialized))
			return errors.Wrapf(ErrVerification, "%s: %v", framework, err)
		}
		fmt.Fprintf(in.diagnostics, "logbridge: %s: %v, continuing\n", framework, errors.Wrap(ErrVerification, err.Error()))
	}

	in.state.Store(int32(Initialized))
	return nil
}
