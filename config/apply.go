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

package config

import (
	"context"

	"github.com/pkg/errors"

	"github.com/GoogleCloudPlatform/logbridge/backend"
)

// Apply configures r with cfg: levels first, then the prefix, then the
// sinks. It returns the registered sinks. When a sink fails to build the
// sinks registered so far stay registered.
func Apply(ctx context.Context, cfg *Config, r *backend.Registry) ([]backend.Sink, error) {
	if cfg.Root != nil {
		r.SetLevel(backend.RootLoggerName, cfg.Root.Level)
	}
	for name, lvl := range cfg.Levels {
		r.SetLevel(name, lvl.Level)
	}
	if cfg.Prefix != "" {
		r.SetPrefix(cfg.Prefix)
	}

	var registered []backend.Sink
	register := func(sink backend.Sink, formats Formats) error {
		if err := applyFormats(sink.Config(), formats); err != nil {
			return errors.Wrap(err, sink.ID())
		}
		r.RegisterSink(sink)
		registered = append(registered, sink)
		return nil
	}

	sinks := cfg.Sinks
	if s := sinks.Stderr; s != nil {
		if err := register(backend.NewStderrSink(), s.Formats); err != nil {
			return registered, err
		}
	}

	if s := sinks.File; s != nil {
		if s.Path == "" {
			return registered, errors.New("file sink: path is required")
		}
		sink := backend.NewFileSink(backend.FileOptions{
			Path:       s.Path,
			MaxSizeMB:  s.MaxSizeMB,
			MaxBackups: s.MaxBackups,
			MaxAgeDays: s.MaxAgeDays,
			Compress:   s.Compress,
		})
		if err := register(sink, s.Formats); err != nil {
			return registered, err
		}
	}

	if s := sinks.Syslog; s != nil {
		if err := register(backend.NewSyslogSink(s.Ident), s.Formats); err != nil {
			return registered, err
		}
	}

	if s := sinks.Serial; s != nil {
		if s.Port == "" {
			return registered, errors.New("serial sink: port is required")
		}
		sink := backend.NewSerialSink(&backend.SerialOptions{Port: s.Port, Baud: s.Baud})
		if err := register(sink, s.Formats); err != nil {
			return registered, err
		}
	}

	if s := sinks.Cloud; s != nil {
		mode := backend.CloudLoggingInitModeActive
		if s.Lazy {
			mode = backend.CloudLoggingInitModeLazy
		}
		sink, err := backend.NewCloudSink(ctx, mode, &backend.CloudOptions{
			Ident:                 s.Ident,
			ProgramName:           s.ProgramName,
			ProgramVersion:        s.ProgramVersion,
			Project:               s.Project,
			Instance:              s.Instance,
			UserAgent:             s.UserAgent,
			FlushCadence:          s.FlushCadence,
			WithoutAuthentication: s.WithoutAuthentication,
			ClientErrorInterval:   s.ClientErrorInterval,
		})
		if err != nil {
			return registered, errors.Wrap(err, "cloud sink")
		}
		if err := register(sink, s.Formats); err != nil {
			return registered, err
		}
	}

	if s := sinks.Eventlog; s != nil {
		sink, err := backend.NewEventlogSink(s.EventID, s.Ident)
		if err != nil {
			return registered, errors.Wrap(err, "eventlog sink")
		}
		if err := register(sink, s.Formats); err != nil {
			return registered, err
		}
	}

	return registered, nil
}

// applyFormats sets the format templates of formats on config.
func applyFormats(config backend.Config, formats Formats) error {
	for name, format := range formats {
		lvl, err := parseLevel(name)
		if err != nil {
			return errors.Wrap(err, "format level")
		}
		config.SetFormat(lvl, format)
	}
	return nil
}
