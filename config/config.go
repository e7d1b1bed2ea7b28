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

// Package config reads the logbridge backend configuration: levels, prefix
// and sinks from a YAML file, with environment overrides.
//
// A configuration looks like:
//
//	root: info
//	levels:
//	  github.com/acme/app/db: debug
//	prefix: app
//	sinks:
//	  stderr: {}
//	  file:
//	    path: /var/log/app.log
//	    max_size_mb: 50
//	    formats:
//	      error: "{{.When.Format \"15:04:05\"}} {{.Level}} {{.Message}}"
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/GoogleCloudPlatform/logbridge/backend"
)

//go:generate mockgen -source=config.go -destination=mocks/mock_env_reader.go -package=mocks EnvReader

const (
	// EnvConfig names the configuration file, it takes precedence over the
	// XDG search.
	EnvConfig = "LOGBRIDGE_CONFIG"
	// EnvLevel overrides levels, either a single root level or a comma
	// separated list of name=level pairs.
	EnvLevel = "LOGBRIDGE_LEVEL"
	// EnvPrefix overrides the prefix.
	EnvPrefix = "LOGBRIDGE_PREFIX"

	// xdgFile is the configuration file searched in the XDG config dirs.
	xdgFile = "logbridge/logging.yaml"
)

// EnvReader reads environment variables.
type EnvReader interface {
	Getenv(key string) string
}

// OSReader is the EnvReader of the process environment.
type OSReader struct{}

// Getenv returns the value of the environment variable key.
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Level is a backend level read from a level name or its integer value.
type Level struct {
	backend.Level
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: level must be a scalar", value.Line)
	}
	lvl, err := parseLevel(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	l.Level = lvl
	return nil
}

func parseLevel(s string) (backend.Level, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return backend.LevelForInt(n)
	}
	return backend.ParseLevel(s)
}

// Formats maps level names to sink format templates.
type Formats map[string]string

// Config is the backend configuration.
type Config struct {
	// Root is the root logger level, left unchanged when nil.
	Root *Level `yaml:"root"`
	// Levels are the per logger levels.
	Levels map[string]Level `yaml:"levels"`
	// Prefix is prepended by the default sink formats.
	Prefix string `yaml:"prefix"`
	// Sinks are the sinks to register.
	Sinks Sinks `yaml:"sinks"`
}

// Sinks holds the sinks to register, nil ones are skipped.
type Sinks struct {
	Stderr   *StderrSink   `yaml:"stderr"`
	File     *FileSink     `yaml:"file"`
	Syslog   *SyslogSink   `yaml:"syslog"`
	Serial   *SerialSink   `yaml:"serial"`
	Cloud    *CloudSink    `yaml:"cloud"`
	Eventlog *EventlogSink `yaml:"eventlog"`
}

// StderrSink configures the stderr sink.
type StderrSink struct {
	Formats Formats `yaml:"formats"`
}

// FileSink configures the rotated file sink.
type FileSink struct {
	Path       string  `yaml:"path"`
	MaxSizeMB  int     `yaml:"max_size_mb"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAgeDays int     `yaml:"max_age_days"`
	Compress   bool    `yaml:"compress"`
	Formats    Formats `yaml:"formats"`
}

// SyslogSink configures the syslog sink.
type SyslogSink struct {
	Ident   string  `yaml:"ident"`
	Formats Formats `yaml:"formats"`
}

// SerialSink configures the serial port sink.
type SerialSink struct {
	Port    string  `yaml:"port"`
	Baud    int     `yaml:"baud"`
	Formats Formats `yaml:"formats"`
}

// CloudSink configures the Cloud Logging sink.
type CloudSink struct {
	Ident                 string        `yaml:"ident"`
	Project               string        `yaml:"project"`
	Instance              string        `yaml:"instance"`
	ProgramName           string        `yaml:"program_name"`
	ProgramVersion        string        `yaml:"program_version"`
	UserAgent             string        `yaml:"user_agent"`
	FlushCadence          time.Duration `yaml:"flush_cadence"`
	WithoutAuthentication bool          `yaml:"without_authentication"`
	ClientErrorInterval   time.Duration `yaml:"client_error_interval"`
	// Lazy defers the client creation, entries are buffered until
	// CloudSink.InitClient is called.
	Lazy    bool    `yaml:"lazy"`
	Formats Formats `yaml:"formats"`
}

// EventlogSink configures the windows event log sink.
type EventlogSink struct {
	EventID uint32  `yaml:"event_id"`
	Ident   string  `yaml:"ident"`
	Formats Formats `yaml:"formats"`
}

// Parse decodes a YAML configuration, unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parsing logging configuration")
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading logging configuration")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Discover returns the configuration file path named by EnvConfig, or the
// first logbridge/logging.yaml found in the XDG config dirs. It returns ""
// when there is none.
func Discover(env EnvReader) string {
	if path := env.Getenv(EnvConfig); path != "" {
		return path
	}
	path, err := xdg.SearchConfigFile(xdgFile)
	if err != nil {
		return ""
	}
	return path
}

// Resolve loads the discovered configuration, an empty one when there is
// none, and applies the environment overrides.
func Resolve(env EnvReader) (*Config, error) {
	cfg := &Config{}
	if path := Discover(env); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Override(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override applies EnvLevel and EnvPrefix to cfg.
func (cfg *Config) Override(env EnvReader) error {
	if prefix := env.Getenv(EnvPrefix); prefix != "" {
		cfg.Prefix = prefix
	}

	levelsEnv := strings.TrimSpace(env.Getenv(EnvLevel))
	if levelsEnv == "" {
		return nil
	}
	if !strings.Contains(levelsEnv, "=") {
		lvl, err := parseLevel(levelsEnv)
		if err != nil {
			return errors.Wrap(err, EnvLevel)
		}
		cfg.Root = &Level{lvl}
		return nil
	}

	for _, pair := range strings.Split(levelsEnv, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			return errors.Errorf("%s: invalid entry %q, want name=level", EnvLevel, pair)
		}
		lvl, err := parseLevel(value)
		if err != nil {
			return errors.Wrap(err, EnvLevel)
		}
		if name == backend.RootLoggerName {
			cfg.Root = &Level{lvl}
			continue
		}
		if cfg.Levels == nil {
			cfg.Levels = map[string]Level{}
		}
		cfg.Levels[name] = Level{lvl}
	}
	return nil
}
