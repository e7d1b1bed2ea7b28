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

package backend

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

// RootLoggerName is the identity of the root logger. Every name inherits its
// level from the root unless a more specific level was set.
const RootLoggerName = "ROOT"

// Config is the interface used to bridge format configurations between the
// registry and the sink implementation.
type Config interface {
	// SetFormat sets the log format of the specified level for a given sink.
	SetFormat(level Level, format string)
	// Format returns the log format of the specified level from a given sink.
	Format(level Level) string
}

// FormatMap wraps the level <-> format map type.
type FormatMap map[Level]string

// sinkConfig is a common implementation of Config interface, more
// "sophisticated" sinks may want to have their own implementation, for a
// generic and simple use case sinkConfig should suffice.
type sinkConfig struct {
	// mu protects formatMap, formats may be reconfigured while logging.
	mu sync.RWMutex
	// formatMap maps the log format for a given log level.
	// See [Config]'s Format() for more info.
	formatMap FormatMap
}

// Sink defines the interface of a sink implementation.
type Sink interface {
	// ID returns the sink's implementation ID.
	ID() string
	// Log is the entry point with the Sink implementation, the registry will
	// use Log() to forward the logging entry to the sink. Log is called
	// synchronously from the logging goroutine.
	Log(entry *LogEntry) error
	// Config returns the sink configuration interface implementation.
	Config() Config
	// Flush flushes the sink's backing log storage.
	Flush() error
}

// LogEntry describes a log record.
type LogEntry struct {
	// Logger is the identity of the logger that produced the entry.
	Logger string
	// Level is the log level of the log record/entry.
	Level Level
	// File is the file name of the log caller.
	File string
	// Line is the file's line of the log caller.
	Line int
	// Function is the function name of the log caller.
	Function string
	// When is the time when this log record/entry was created.
	When time.Time
	// Message is the formated final log message.
	Message string
	// Prefix is a string/tag prefixed to the log message.
	Prefix string
	// Err is the failure attached to the entry, if any.
	Err error
}

// Failure renders the attached failure, including the stack trace when the
// error carries one.
func (en *LogEntry) Failure() string {
	if en.Err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", en.Err)
}

// Level wraps id and description of a log level.
type Level struct {
	// level is the log level numeric id.
	level int
	// tag is the tag to be displayed when writing the log.
	tag string
}

var (
	// TraceLevel is the log level definition for Trace severity.
	TraceLevel = Level{0, "TRACE"}

	// DebugLevel is the log level definition for Debug severity.
	DebugLevel = Level{10, "DEBUG"}

	// InfoLevel is the log level definition for Info severity.
	InfoLevel = Level{20, "INFO"}

	// WarnLevel is the log level definition for Warn severity.
	WarnLevel = Level{30, "WARN"}

	// ErrorLevel is the log level definition for Error severity.
	ErrorLevel = Level{40, "ERROR"}

	// OffLevel disables a logger when used as its threshold. It is never the
	// level of an entry.
	OffLevel = Level{math.MaxInt32, "OFF"}

	// allLevels is the list of all loggable levels, most permissive first.
	allLevels = []Level{TraceLevel, DebugLevel, InfoLevel, WarnLevel, ErrorLevel}
)

const (
	// fallbackFormat is used when a sink didn't provide the level <-> format
	// mapping.
	fallbackFormat = `{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}] {{.Logger}}: {{.Message}}{{if .Err}}: {{.Failure}}{{end}}`
)

// String returns the string representation of a log level.
func (level Level) String() string {
	return level.tag
}

// Int returns the numeric id of the level.
func (level Level) Int() int {
	return level.level
}

// Levels returns all loggable levels, most permissive first.
func Levels() []Level {
	return append([]Level(nil), allLevels...)
}

// LevelForInt returns the log level object for a given level id. In case of
// invalid level id, an error is returned.
func LevelForInt(level int) (Level, error) {
	for _, lvl := range allLevels {
		if lvl.level == level {
			return lvl, nil
		}
	}
	if level == OffLevel.level {
		return OffLevel, nil
	}
	return Level{level: level, tag: "INVALID"}, errors.Errorf("invalid log level: %d", level)
}

// ParseLevel returns the log level object for a given level name, matched
// case insensitively. OFF is accepted.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		name = WarnLevel.tag
	}
	for _, lvl := range allLevels {
		if lvl.tag == name {
			return lvl, nil
		}
	}
	if name == OffLevel.tag {
		return OffLevel, nil
	}
	return Level{level: -1, tag: "INVALID"}, errors.Errorf("invalid log level: %q, valid levels: %s", name, ValidLevels())
}

// ValidLevels returns a string representation of all the valid log levels.
func ValidLevels() string {
	var levels []string
	for _, lvl := range allLevels {
		levels = append(levels, fmt.Sprintf("%s(%d)", lvl.tag, lvl.level))
	}
	levels = append(levels, OffLevel.tag)
	return strings.Join(levels, ", ")
}

// levelIndex returns the position of level in allLevels, OFF is treated as
// the most severe level.
func levelIndex(level Level) int {
	for i, lvl := range allLevels {
		if lvl == level {
			return i
		}
	}
	return len(allLevels) - 1
}

// newEntry sets up the log entry for each logging call.
func newEntry(name string, level Level, prefix string, msg string, err error, marker *Marker) *LogEntry {
	frame := callerFrame(marker)
	return &LogEntry{
		Logger:   name,
		Level:    level,
		When:     time.Now(),
		File:     filepath.Base(frame.File),
		Line:     frame.Line,
		Function: frame.Function,
		Message:  msg,
		Prefix:   prefix,
		Err:      err,
	}
}

// Format processes a template provided in format and return it as a string.
func (en *LogEntry) Format(format string) (string, error) {
	tmpl, err := template.New("").Parse(format)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	buffer := new(strings.Builder)
	if err := tmpl.Execute(buffer, en); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return buffer.String(), nil
}

// newSinkConfig allocates and initializes a new sinkConfig instance.
func newSinkConfig() *sinkConfig {
	return &sinkConfig{
		formatMap: make(FormatMap),
	}
}

// SetFormat adds level and format to the format mapping.
func (bc *sinkConfig) SetFormat(level Level, format string) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.formatMap[level] = format
}

// Format returns the format configured to a given level. If no format is found
// for the requested level the closest format will be used, more severe levels
// are searched first, i.e:
//
//   - if Debug is found in the mapping, Trace is not defined, and level is
//     Trace the format of Debug will be returned.
//
// If no format could be found, meaning, the sink has never defined a valid
// format configuration, a default fallbackFormat is returned.
func (bc *sinkConfig) Format(level Level) string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if format, found := bc.formatMap[level]; found {
		return format
	}

	idx := levelIndex(level)
	for i := idx; i < len(allLevels); i++ {
		if format, found := bc.formatMap[allLevels[i]]; found {
			return format
		}
	}

	for i := idx; i >= 0; i-- {
		if format, found := bc.formatMap[allLevels[i]]; found {
			return format
		}
	}

	return fallbackFormat
}

// levelTable is an immutable snapshot of the configured levels. Writers
// replace the whole table so readers never lock.
type levelTable struct {
	root  Level
	named map[string]Level
}

// Registry is the backing implementation of the logging facilities: it holds
// the level configuration, the logger cache and the registered sinks.
type Registry struct {
	// levels is the current level snapshot.
	levels atomic.Pointer[levelTable]
	// levelsMutex serializes level writers.
	levelsMutex sync.Mutex
	// listeners are called after every level change, notifyMutex serializes
	// the calls so the last one observes the latest table.
	listeners   []func()
	notifyMutex sync.Mutex

	// sinks packs the registered sinks (indexed by sink ID).
	sinks map[string]Sink
	// sinksMutex protects sinks, logging holds the read lock.
	sinksMutex sync.RWMutex

	// loggers caches the *cachedLogger of each identity.
	loggers sync.Map
	// factory creates loggers not found in the cache. Cached loggers built by
	// a replaced factory are evicted on lookup.
	factory atomic.Pointer[factoryState]

	// prefix is a string/tag prefixed to the log message.
	prefix atomic.Pointer[string]

	// errorHandler receives the sink failures.
	errorHandler atomic.Pointer[func(id string, err error)]
}

// Factory creates the logger of a given identity.
type Factory func(name string) Logger

// factoryState is one installed factory, its address tells the cached
// loggers of different factories apart. A nil create is the built in one.
type factoryState struct {
	create Factory
}

// cachedLogger is a cache slot. Only the slot winning the insertion is ever
// upgraded, so Upgrade's warning is logged once per identity.
type cachedLogger struct {
	source *factoryState
	raw    Logger
	once   sync.Once
	logger LocationAwareLogger
}

func (cl *cachedLogger) get() LocationAwareLogger {
	cl.once.Do(func() {
		cl.logger = Upgrade(cl.raw)
	})
	return cl.logger
}

var (
	// defaultRegistry is the registry used by the package level functions and
	// by every shim.
	defaultRegistry = NewRegistry()
)

// NewRegistry allocates a registry with the root level set to INFO, no sinks
// and the built in logger factory.
func NewRegistry() *Registry {
	r := &Registry{sinks: make(map[string]Sink)}
	r.levels.Store(&levelTable{root: InfoLevel, named: map[string]Level{}})
	r.factory.Store(&factoryState{})
	empty := ""
	r.prefix.Store(&empty)
	handler := func(id string, err error) {
		fmt.Fprintf(os.Stderr, "logbridge: sink %q failed: %v\n", id, err)
	}
	r.errorHandler.Store(&handler)
	return r
}

// Default returns the process wide registry.
func Default() *Registry {
	return defaultRegistry
}

// SetLevel sets the level of name in the default registry.
func SetLevel(name string, level Level) {
	defaultRegistry.SetLevel(name, level)
}

// ClearLevel removes the level of name in the default registry.
func ClearLevel(name string) {
	defaultRegistry.ClearLevel(name)
}

// EffectiveLevel returns the level name resolves to in the default registry.
func EffectiveLevel(name string) Level {
	return defaultRegistry.EffectiveLevel(name)
}

// Lookup returns the logger of name from the default registry.
func Lookup(name string) LocationAwareLogger {
	return defaultRegistry.Lookup(name)
}

// RegisterSink inserts/registers a sink implementation in the default
// registry. This function is thread safe and can be called from any goroutine
// in the program.
func RegisterSink(sink Sink) {
	defaultRegistry.RegisterSink(sink)
}

// UnregisterSink removes/unregisters a sink implementation from the default
// registry.
func UnregisterSink(sink Sink) {
	defaultRegistry.UnregisterSink(sink)
}

// Enabled reports whether level is enabled for name in the default registry.
func Enabled(name string, level Level) bool {
	return defaultRegistry.Enabled(name, level)
}

// EnabledUnder reports whether level is enabled for name or for any of its
// configured descendants in the default registry.
func EnabledUnder(name string, level Level) bool {
	return defaultRegistry.EnabledUnder(name, level)
}

// OnLevelsChanged registers fn to be called after every level change of the
// default registry.
func OnLevelsChanged(fn func()) {
	defaultRegistry.OnLevelsChanged(fn)
}

// Prefix returns the prefix of the default registry.
func Prefix() string {
	return defaultRegistry.Prefix()
}

// RegisteredSinkIDs returns the list of sink IDs registered in the default
// registry.
func RegisteredSinkIDs() []string {
	return defaultRegistry.RegisteredSinkIDs()
}

// SetPrefix sets the prefix to be used for the log message. When present the
// default sink formats will prefix the provided string to all log messages.
//
// In cases where multiple sinks are writing to the same backing storage (i.e.
// same file or the same syslog's ident) the prefix adds a meaningful context
// of the log originator.
func SetPrefix(prefix string) {
	defaultRegistry.SetPrefix(prefix)
}

// SetFactory replaces the logger factory of the default registry.
func SetFactory(factory Factory) {
	defaultRegistry.SetFactory(factory)
}

// SetErrorHandler replaces the sink failure handler of the default registry.
func SetErrorHandler(handler func(id string, err error)) {
	defaultRegistry.SetErrorHandler(handler)
}

// Shutdown shuts down the default registry.
func Shutdown(timeout time.Duration) {
	defaultRegistry.Shutdown(timeout)
}

// normalizeName maps the empty identity to the root logger.
func normalizeName(name string) string {
	if name == "" {
		return RootLoggerName
	}
	return name
}

// SetLevel sets the level of name and of every descendant without a more
// specific level. Setting RootLoggerName changes the default threshold.
func (r *Registry) SetLevel(name string, level Level) {
	r.updateLevels(func(tbl *levelTable) {
		if name = normalizeName(name); name == RootLoggerName {
			tbl.root = level
			return
		}
		tbl.named[name] = level
	})
}

// ClearLevel removes the level set for name, it inherits from its ancestors
// again.
func (r *Registry) ClearLevel(name string) {
	r.updateLevels(func(tbl *levelTable) {
		delete(tbl.named, normalizeName(name))
	})
}

// ResetLevels drops every named level and sets the root level.
func (r *Registry) ResetLevels(root Level) {
	r.levelsMutex.Lock()
	r.levels.Store(&levelTable{root: root, named: map[string]Level{}})
	r.levelsMutex.Unlock()
	r.notifyLevels()
}

func (r *Registry) updateLevels(update func(tbl *levelTable)) {
	r.levelsMutex.Lock()
	curr := r.levels.Load()
	next := &levelTable{root: curr.root, named: make(map[string]Level, len(curr.named)+1)}
	for k, v := range curr.named {
		next.named[k] = v
	}
	update(next)
	r.levels.Store(next)
	r.levelsMutex.Unlock()

	r.notifyLevels()
}

// OnLevelsChanged registers fn to be called after every level change. fn
// runs on the goroutine changing the levels and must not change them itself.
func (r *Registry) OnLevelsChanged(fn func()) {
	r.notifyMutex.Lock()
	defer r.notifyMutex.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) notifyLevels() {
	r.notifyMutex.Lock()
	defer r.notifyMutex.Unlock()
	for _, fn := range r.listeners {
		fn()
	}
}

// EffectiveLevel returns the level of the most specific configured ancestor
// of name. Names are split on "." and "/".
func (r *Registry) EffectiveLevel(name string) Level {
	tbl := r.levels.Load()
	name = normalizeName(name)
	for name != RootLoggerName && name != "" {
		if level, found := tbl.named[name]; found {
			return level
		}
		idx := strings.LastIndexAny(name, "./")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	return tbl.root
}

// Enabled reports whether an entry of level produced by name would be
// forwarded to the sinks.
func (r *Registry) Enabled(name string, level Level) bool {
	if level == OffLevel {
		return false
	}
	threshold := r.EffectiveLevel(name)
	if threshold == OffLevel {
		return false
	}
	return level.level >= threshold.level
}

// EnabledUnder reports whether level is enabled for name or for any
// configured descendant of name. It is the coarse check of loggers serving a
// whole subtree of names.
func (r *Registry) EnabledUnder(name string, level Level) bool {
	if r.Enabled(name, level) {
		return true
	}
	if level == OffLevel {
		return false
	}

	name = normalizeName(name)
	for child, threshold := range r.levels.Load().named {
		if name != RootLoggerName && !isDescendant(child, name) {
			continue
		}
		if threshold != OffLevel && level.level >= threshold.level {
			return true
		}
	}
	return false
}

// isDescendant reports whether child is below parent in the "." and "/"
// separated name hierarchy.
func isDescendant(child, parent string) bool {
	if len(child) <= len(parent) || !strings.HasPrefix(child, parent) {
		return false
	}
	sep := child[len(parent)]
	return sep == '.' || sep == '/'
}

// SetPrefix sets the prefix to be used for the log message.
func (r *Registry) SetPrefix(prefix string) {
	r.prefix.Store(&prefix)
}

// Prefix returns the currently set prefix.
func (r *Registry) Prefix() string {
	return *r.prefix.Load()
}

// SetErrorHandler replaces the sink failure handler, nil discards failures.
func (r *Registry) SetErrorHandler(handler func(id string, err error)) {
	if handler == nil {
		handler = func(string, error) {}
	}
	r.errorHandler.Store(&handler)
}

// SetFactory replaces the logger factory and drops the cached loggers so
// subsequent lookups use the new factory. A nil factory restores the built in
// one. Loggers a concurrent Lookup builds with the old factory are never
// served after SetFactory returns.
func (r *Registry) SetFactory(factory Factory) {
	source := &factoryState{create: factory}
	r.factory.Store(source)
	r.loggers.Range(func(key, value any) bool {
		if value.(*cachedLogger).source != source {
			r.loggers.CompareAndDelete(key, value)
		}
		return true
	})
}

// Lookup returns the logger of name, creating and caching it on first use.
// Concurrent first lookups of the same name return the same instance.
func (r *Registry) Lookup(name string) LocationAwareLogger {
	name = normalizeName(name)
	for {
		source := r.factory.Load()
		if cached, found := r.loggers.Load(name); found {
			slot := cached.(*cachedLogger)
			if slot.source == source {
				return slot.get()
			}
			r.loggers.CompareAndDelete(name, slot)
			continue
		}

		var created Logger
		if source.create != nil {
			created = source.create(name)
		} else {
			created = &logger{name: name, registry: r}
		}
		// A lost race discards created, the loop serves the winner.
		r.loggers.LoadOrStore(name, &cachedLogger{source: source, raw: created})
	}
}

// RegisterSink inserts/registers a sink implementation, a sink with the same
// ID is replaced.
func (r *Registry) RegisterSink(sink Sink) {
	r.sinksMutex.Lock()
	defer r.sinksMutex.Unlock()
	r.sinks[sink.ID()] = sink
}

// UnregisterSink removes/unregisters a sink implementation.
func (r *Registry) UnregisterSink(sink Sink) {
	r.sinksMutex.Lock()
	defer r.sinksMutex.Unlock()
	delete(r.sinks, sink.ID())
}

// RegisteredSinkIDs returns the list of registered sink IDs.
func (r *Registry) RegisteredSinkIDs() []string {
	r.sinksMutex.RLock()
	defer r.sinksMutex.RUnlock()
	var ids []string
	for id := range r.sinks {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown unregisters all previously registered sinks and flushes each of
// them, giving up on the remaining ones once timeout expires.
//
// After calling Shutdown() all logging calls will be no-op (as no sinks will
// left registered after that).
func (r *Registry) Shutdown(timeout time.Duration) {
	r.sinksMutex.Lock()
	sinks := r.sinks
	r.sinks = make(map[string]Sink)
	r.sinksMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, sink := range sinks {
		if ctx.Err() != nil {
			break
		}
		if err := sink.Flush(); err != nil {
			r.handleError(sink.ID(), err)
		}
	}
}

func (r *Registry) handleError(id string, err error) {
	sinkErrorsTotal.WithLabelValues(id).Inc()
	(*r.errorHandler.Load())(id, err)
}

// dispatch writes entry to every registered sink.
func (r *Registry) dispatch(entry *LogEntry) {
	entriesTotal.WithLabelValues(entry.Level.String()).Inc()

	r.sinksMutex.RLock()
	defer r.sinksMutex.RUnlock()

	for _, sink := range r.sinks {
		if err := sink.Log(entry); err != nil {
			r.handleError(sink.ID(), err)
		}
	}
}
