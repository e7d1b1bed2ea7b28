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

package logbridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/GoogleCloudPlatform/logbridge/backend"
	"github.com/GoogleCloudPlatform/logbridge/config"
	"github.com/GoogleCloudPlatform/logbridge/install"
)

// Options configures Init.
type Options struct {
	// Verbose writes one line per framework to Diagnostics.
	Verbose bool
	// Diagnostics receives the installation diagnostics, os.Stderr when nil.
	Diagnostics io.Writer
	// Config is applied to the default backend registry before the
	// frameworks are installed.
	Config *config.Config
}

type installer interface {
	Install() error
}

// absent is the installer of a framework compiled out.
type absent string

func (a absent) Install() error {
	return errors.Wrap(install.ErrFrameworkAbsent, string(a))
}

type framework struct {
	name string
	new  func(opts ...install.Option) installer
}

// frameworks are installed in this order.
var frameworks = []framework{
	{"slog", slogInstaller},
	{"logrus", logrusInstaller},
	{"zap", zapInstaller},
	{"logr", logrInstaller},
}

var (
	initMu      sync.Mutex
	initialized atomic.Bool
)

// Init installs the bridge of every framework compiled in. Calls after a
// successful Init return nil. A failed Init may be retried, frameworks
// already installed are only verified again.
func Init(ctx context.Context, opts Options) error {
	if initialized.Load() {
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	if initialized.Load() {
		return nil
	}

	diagnostics := opts.Diagnostics
	if diagnostics == nil {
		diagnostics = os.Stderr
	}

	if opts.Config != nil {
		if _, err := config.Apply(ctx, opts.Config, backend.Default()); err != nil {
			return errors.Wrap(err, "applying logging configuration")
		}
	}

	for _, fw := range frameworks {
		err := fw.new(install.WithDiagnostics(diagnostics)).Install()
		switch {
		case errors.Is(err, install.ErrFrameworkAbsent):
			if opts.Verbose {
				fmt.Fprintf(diagnostics, "%s not found\n", fw.name)
			}
		case err != nil:
			return errors.Wrapf(err, "initializing %s", fw.name)
		default:
			if opts.Verbose {
				fmt.Fprintf(diagnostics, "%s initialized\n", fw.name)
			}
		}
	}

	initialized.Store(true)
	return nil
}

// MustInit is Init panicking on failure.
func MustInit(ctx context.Context, opts Options) {
	if err := Init(ctx, opts); err != nil {
		panic(err)
	}
}
