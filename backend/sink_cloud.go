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
	"io"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	logpb "cloud.google.com/go/logging/apiv2/loggingpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// CloudLoggingInitMode is the cloud logging sink initialization mode.
type CloudLoggingInitMode int

const (
	// CloudLoggingInitModeLazy is the lazy initialization mode. In this mode the
	// sink object is created but the cloud logging client and logger are not
	// initialized until the first call to InitClient.
	CloudLoggingInitModeLazy CloudLoggingInitMode = iota
	// CloudLoggingInitModeActive is the active initialization mode. In this mode
	// the sink object is created and the cloud logging client and logger are
	// initialized immediately.
	CloudLoggingInitModeActive
	// CloudLoggingTimeout is the default timeout for the cloud logging sink
	// flush operation.
	CloudLoggingTimeout = 3 * time.Second

	// DefaultClientErrorInterval is the minimum time between two reports of
	// cloud logging client errors.
	DefaultClientErrorInterval = 10 * time.Minute

	// defaultCloudPendingSize is the max number of entries held while the
	// client is not initialized, the oldest are dropped first.
	defaultCloudPendingSize = 1000
)

var (
	// errCloudLoggingNotInitialized is the error returned when the cloud
	// logging sink is not yet initialized.
	errCloudLoggingNotInitialized = errors.New("cloud logging logger is not yet fully initialized")

	// errCloudLoggingAlreadyInitialized is the error returned when the InitClient
	// is called and  cloud logging sink is already initialized.
	errCloudLoggingAlreadyInitialized = errors.New("cloud logging logger is already initialized")

	// cloudSeverities maps the levels to cloud logging severities.
	cloudSeverities = map[Level]logging.Severity{
		ErrorLevel: logging.Error,
		WarnLevel:  logging.Warning,
		InfoLevel:  logging.Info,
		DebugLevel: logging.Debug,
		TraceLevel: logging.Debug,
	}
)

// CloudSink is a Sink implementation for cloud logging.
type CloudSink struct {
	// sinkID is the cloud logging sink implementation's ID.
	sinkID string
	// mu protects client, logger, opts and pending.
	mu sync.Mutex
	// client is the cloud logging client pointer.
	client *logging.Client
	// logger is the cloud logging logger pointer.
	logger *logging.Logger
	// config is a pointer to the generic Config interface implementation.
	config *sinkConfig
	// opts is the cloud logging options.
	opts *CloudOptions
	// pending holds the entries logged before InitClient.
	pending []*LogEntry
	// periodicLogger throttles the client error reports.
	periodicLogger *periodicLogger
	// disableClientErrorLogging drops the client error reports.
	disableClientErrorLogging bool
}

// periodicLogger reports errors to out at most once per interval, the first
// error is always reported.
type periodicLogger struct {
	mu             sync.Mutex
	out            io.Writer
	interval       time.Duration
	lastLog        time.Time
	firstRunPassed bool
}

// log reports err if the interval has passed since the last report. It
// returns whether err was reported.
func (pl *periodicLogger) log(err error) bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.firstRunPassed && time.Since(pl.lastLog) < pl.interval {
		return false
	}
	fmt.Fprintf(pl.out, "logbridge: cloud logging client error: %v\n", err)
	pl.lastLog = time.Now()
	pl.firstRunPassed = true
	return true
}

// CloudOptions defines the cloud logging behavior and setup options.
type CloudOptions struct {
	// Ident is the logger's ident, or the logger's name.
	Ident string
	// ProgramName is the program name, it's used on the logging payload.
	ProgramName string
	// ProgramVersion is the program version, it's used on the logging payload.
	ProgramVersion string
	// Project the gcp project name.
	Project string
	// Instance the running instance name.
	Instance string
	// UserAgent is the logging user agent option.
	UserAgent string
	// flushCadence is how frequently we should push the log to the server.
	FlushCadence time.Duration
	// WithoutAuthentication is whether to use authentication for cloud logging
	// operations.
	WithoutAuthentication bool
	// ClientErrorInterval is the minimum time between two client error
	// reports, DefaultClientErrorInterval when 0.
	ClientErrorInterval time.Duration
	// DisableClientErrorLogging drops the client error reports.
	DisableClientErrorLogging bool
}

// CloudEntryPayload contains the data to be sent to cloud logging as the
// entry payload. It's translated from the log subsystem's Entry structure.
type CloudEntryPayload struct {
	// Message is the formatted message.
	Message string `json:"message"`
	// Logger is the identity of the logger that produced the entry.
	Logger string `json:"logger"`
	// Failure is the rendered failure attached to the entry.
	Failure string `json:"failure,omitempty"`
	// LocalTimestamp is the unix timestamp got from the entry's When field.
	LocalTimestamp string `json:"localTimestamp"`
	// ProgName is the program name - or the binary name.
	ProgName string `json:"progName,omitempty"`
	// ProgVersion is the program version.
	ProgVersion string `json:"progVersion,omitempty"`
}

// NewCloudSink returns a Sink implementation that will log out to google
// cloud logging.
//
// Initialization Mode:
//
// If mode is CloudLoggingInitModeLazy the sink object will be allocated and
// only the basic elements will be initialized, log entries are held (up to
// defaultCloudPendingSize) until InitClient is called.
//
// The Cloud Logging depends on instance name that's mainly a data fed by - or
// accessed from - metadata server and depending on the application and
// environment the metadata server might not be available at the time of the
// application start.
func NewCloudSink(ctx context.Context, mode CloudLoggingInitMode, opts *CloudOptions) (*CloudSink, error) {
	res := &CloudSink{
		sinkID: "log-sink,cloudlogging",
		config: newSinkConfig(),
	}

	res.config.SetFormat(ErrorLevel, `{{.Message}}`)
	res.config.SetFormat(DebugLevel, `{{.Message}}`)

	if mode == CloudLoggingInitModeActive {
		if err := res.InitClient(ctx, opts); err != nil {
			return nil, errors.Wrap(err, "failed to initialize cloud logging client")
		}
	}

	return res, nil
}

// InitClient initializes the cloud logging client and logger, and writes the
// entries held so far. If the sink was initialized in "active" mode it
// returns errCloudLoggingAlreadyInitialized.
func (cb *CloudSink) InitClient(ctx context.Context, opts *CloudOptions) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.client != nil {
		return errCloudLoggingAlreadyInitialized
	}

	var clientOptions []option.ClientOption

	if opts.UserAgent != "" {
		clientOptions = append(clientOptions, option.WithUserAgent(opts.UserAgent))
	}

	if opts.WithoutAuthentication {
		clientOptions = append(clientOptions, option.WithoutAuthentication())
	}

	client, err := logging.NewClient(ctx, opts.Project, clientOptions...)
	if err != nil {
		return errors.Wrap(err, "failed to initialize cloud logging client")
	}

	interval := opts.ClientErrorInterval
	if interval == 0 {
		interval = DefaultClientErrorInterval
	}
	cb.periodicLogger = &periodicLogger{out: os.Stderr, interval: interval}
	cb.disableClientErrorLogging = opts.DisableClientErrorLogging
	client.OnError = func(err error) {
		if !cb.disableClientErrorLogging {
			cb.periodicLogger.log(err)
		}
	}
	var loggerOptions []logging.LoggerOption

	if opts.Instance != "" {
		labelOption := logging.CommonLabels(
			map[string]string{
				"instance_name": opts.Instance,
			},
		)
		loggerOptions = append(loggerOptions, labelOption)
	}

	loggerOptions = append(loggerOptions, logging.DelayThreshold(opts.FlushCadence))

	cb.client = client
	cb.logger = client.Logger(opts.Ident, loggerOptions...)
	cb.opts = opts

	pending := cb.pending
	cb.pending = nil
	for _, entry := range pending {
		if err := cb.write(entry); err != nil {
			return err
		}
	}

	return nil
}

// Log sends the log entry to cloud logging.
func (cb *CloudSink) Log(entry *LogEntry) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.logger == nil {
		cb.pending = append(cb.pending, entry)
		if len(cb.pending) > defaultCloudPendingSize {
			cb.pending = cb.pending[1:]
		}
		return nil
	}

	return cb.write(entry)
}

// write must be called with mu held.
func (cb *CloudSink) write(entry *LogEntry) error {
	cloudEntry, err := cb.cloudEntry(entry)
	if err != nil {
		return err
	}
	cb.logger.Log(cloudEntry)
	return nil
}

// cloudEntry translates entry, the message is rendered with the sink format
// of its level.
func (cb *CloudSink) cloudEntry(entry *LogEntry) (logging.Entry, error) {
	message, err := entry.Format(cb.config.Format(entry.Level))
	if err != nil {
		return logging.Entry{}, errors.Wrap(err, "failed to format log message")
	}

	payload := &CloudEntryPayload{
		Message:        message,
		Logger:         entry.Logger,
		Failure:        entry.Failure(),
		LocalTimestamp: entry.When.Format("2006-01-02T15:04:05.0000Z07:00"),
	}
	if cb.opts != nil {
		payload.ProgName = cb.opts.ProgramName
		payload.ProgVersion = cb.opts.ProgramVersion
	}

	return logging.Entry{
		Severity: cloudSeverities[entry.Level],
		SourceLocation: &logpb.LogEntrySourceLocation{
			File:     entry.File,
			Line:     int64(entry.Line),
			Function: entry.Function,
		},
		Payload: payload,
	}, nil
}

// ID returns the cloud logging sink implementation's ID.
func (cb *CloudSink) ID() string {
	return cb.sinkID
}

// Config returns the configuration of the cloud logging sink.
func (cb *CloudSink) Config() Config {
	return cb.config
}

// Flush forces the cloud logging sink to flush its content.
func (cb *CloudSink) Flush() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.logger == nil {
		return errCloudLoggingNotInitialized
	}

	ctx, cancel := context.WithTimeout(context.Background(), CloudLoggingTimeout)
	defer cancel()

	if err := cb.client.Ping(ctx); err != nil {
		return errors.Wrap(err, "failed to reach cloud logging, skipping flush")
	}

	if err := cb.logger.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush cloud logging")
	}
	return nil
}
