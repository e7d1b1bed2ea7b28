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

// Package backend implements the canonical logging backend every logbridge
// shim forwards to: a registry of per-name hierarchical levels, a cache of
// location aware loggers and a plug-able set of sinks. By default backend
// provides a set of predefined sinks, such as: [WriterSink], [FileSink],
// [SyslogSink], [CloudSink], [SerialSink] and [EventlogSink].
//
// # Initialization & Registration
//
// An application using backend will follow the pattern of setting up levels
// and registering sinks before starting to use it, such as:
//
//	backend.SetLevel(backend.RootLoggerName, backend.InfoLevel)
//	backend.SetLevel("github.com/acme/app/db", backend.DebugLevel)
//
//	backend.RegisterSink(backend.NewFileSink(backend.FileOptions{Path: "/var/log/app.log"}))
//	backend.Lookup("github.com/acme/app").Log(backend.InfoLevel, "Logger initialized.")
//	...
//
// Multiple sinks can be registered at the same time and a sink can be
// unregistered with [UnregisterSink] at any time.
//
// # Levels
//
// Levels are resolved per logger name. A name inherits the level of its most
// specific configured ancestor, names are split on "." and "/", falling back
// to the level of [RootLoggerName]. Levels can be changed at any time with
// [SetLevel], loggers observe the change on their next call.
//
// # Messages
//
// [Logger.Log] formats with "{}" placeholders (see [FormatBraces]), a trailing
// error argument becomes the entry's failure. [LocationAwareLogger.LogAt]
// additionally takes a [Marker] so wrappers can point the caller location past
// their own frames.
//
// # Shutting down
//
// Entries are written synchronously by the logging goroutine. [Shutdown]
// unregisters all sinks and forces a flush (see [Sink]'s Flush() function).
package backend
