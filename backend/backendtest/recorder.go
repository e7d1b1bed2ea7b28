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

// Package backendtest provides a backend sink that records entries, for tests
// of code logging through the backend.
package backendtest

import (
	"strings"
	"sync"
	"testing"

	"github.com/GoogleCloudPlatform/logbridge/backend"
)

// Recorder is a sink keeping the entries of the loggers under a name.
type Recorder struct {
	mu      sync.Mutex
	id      string
	name    string
	entries []*backend.LogEntry
	config  backend.Config
}

// Record registers a Recorder in the default registry capturing the entries
// of name and its descendants, sets the level of name and undoes both when
// the test ends.
func Record(t testing.TB, name string, level backend.Level) *Recorder {
	t.Helper()
	rec := &Recorder{
		id:     "log-sink,recorder," + t.Name(),
		name:   name,
		config: backend.NewWriterSink("unused", nil).Config(),
	}
	prevRoot := backend.EffectiveLevel(backend.RootLoggerName)
	backend.SetLevel(name, level)
	backend.RegisterSink(rec)
	t.Cleanup(func() {
		backend.UnregisterSink(rec)
		if name == backend.RootLoggerName || name == "" {
			backend.SetLevel(backend.RootLoggerName, prevRoot)
			return
		}
		backend.ClearLevel(name)
	})
	return rec
}

// ID returns the recorder's ID.
func (r *Recorder) ID() string {
	return r.id
}

// Log keeps entry when it belongs to the recorded name.
func (r *Recorder) Log(entry *backend.LogEntry) error {
	if entry.Logger != r.name && !strings.HasPrefix(entry.Logger, r.name+".") && !strings.HasPrefix(entry.Logger, r.name+"/") {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Config returns the recorder's configuration, formats are not used.
func (r *Recorder) Config() backend.Config {
	return r.config
}

// Flush is a no-op.
func (r *Recorder) Flush() error {
	return nil
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []*backend.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*backend.LogEntry(nil), r.entries...)
}

// Messages returns the messages of the recorded entries.
func (r *Recorder) Messages() []string {
	var res []string
	for _, entry := range r.Entries() {
		res = append(res, entry.Message)
	}
	return res
}

// Last returns the last recorded entry or nil.
func (r *Recorder) Last() *backend.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset drops the recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
