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

// Package logbridge routes the logging frameworks a Go program links, log/slog
// and the standard log package, logrus, zap and logr, into one backend.
//
// # Initialization
//
// Call Init once, as early as possible:
//
//	if err := logbridge.Init(ctx, logbridge.Options{Verbose: true}); err != nil {
//		...
//	}
//
// Init installs each framework's bridge as its process wide default: slog's
// default logger, logrus' standard logger, zap's global loggers and
// logrshim's default logr.Logger. A framework already configured by someone
// else is a conflict and fails Init. Frameworks can be compiled out with the
// logbridge_noslog, logbridge_nologrus, logbridge_nozap and logbridge_nologr
// build tags, Init then reports them as not found.
//
// Loggers obtained directly from the shim packages work without Init.
//
// # Levels
//
// Every framework level is mapped onto TRACE, DEBUG, INFO, WARN and ERROR.
// Levels above ERROR, such as logrus' Fatal or zap's Panic, are logged as
// ERROR. The framework still exits or panics afterwards. Whether a level is
// enabled is always decided by the backend, see backend.SetLevel.
//
// # Facade
//
// Log is the native facade:
//
//	var log = logbridge.New()
//
//	log.Infof("copied %d files", n)
//	log.Error(err, "copy failed")
package logbridge
