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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "logbridge"
	subsystem = "backend"
)

var (
	// entriesTotal counts the entries forwarded to the sinks, by level.
	entriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entries_total",
			Help:      "Total log entries forwarded to the registered sinks, by level.",
		},
		[]string{"level"},
	)

	// sinkErrorsTotal counts the failed sink writes and flushes, by sink ID.
	sinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sink_errors_total",
			Help:      "Total failed sink writes and flushes, by sink.",
		},
		[]string{"sink"},
	)

	// sinkWritesTotal counts the writes of the sinks that report them, by
	// sink ID and result.
	sinkWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sink_writes_total",
			Help:      "Total entry writes of the OS sinks, by sink and result.",
		},
		[]string{"sink", "result"},
	)
)

// recordWrite records the result of a sink write.
func recordWrite(sinkID string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	sinkWritesTotal.WithLabelValues(sinkID, result).Inc()
}
