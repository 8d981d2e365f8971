/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package metrics implements prometheus metrics and exposes the metrics HTTP handler
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricNamespace = "eks"
	storeSubsystem  = "store"
	buildSubsystem  = "build"
	adminSubsystem  = "admin"
)

// BuildInfo is a Gauge representing the binary build information of the running server instance
var BuildInfo *prometheus.GaugeVec

// StoreOperations is a Counter of operations performed on an expiring keyed store, by outcome
var StoreOperations *prometheus.CounterVec

// StoreEvents is a Counter of housekeeping events (evictions, expirations, conflicts) on a store
var StoreEvents *prometheus.CounterVec

// StoreObjects is a Gauge representing the number of entries held by a store
var StoreObjects *prometheus.GaugeVec

// StoreMaxObjects is a Gauge for a store's capacity bound; 0 means unbounded
var StoreMaxObjects *prometheus.GaugeVec

// StoreSweepDuration is a Histogram of the time taken by a sweep pass
var StoreSweepDuration *prometheus.HistogramVec

// AdminRequestStatus is a Counter of requests served by the admin listener
var AdminRequestStatus *prometheus.CounterVec

// AdminRequestDuration is a Histogram of time spent serving admin listener requests
var AdminRequestDuration *prometheus.HistogramVec

func init() {

	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: buildSubsystem,
			Name:      "info",
			Help:      "Number of eks servers, labeled by build information.",
		},
		[]string{"goversion", "revision", "version"},
	)

	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: storeSubsystem,
			Name:      "operations_total",
			Help:      "Count of operations performed on an expiring keyed store.",
		},
		[]string{"store_name", "operation", "status"},
	)

	StoreEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: storeSubsystem,
			Name:      "events_total",
			Help:      "Count of events that occurred on an expiring keyed store.",
		},
		[]string{"store_name", "event", "reason"},
	)

	StoreObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: storeSubsystem,
			Name:      "usage_objects",
			Help:      "Number of entries in an expiring keyed store.",
		},
		[]string{"store_name"},
	)

	StoreMaxObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: storeSubsystem,
			Name:      "max_usage_objects",
			Help:      "Entry count above which a store evicts its least-recently-active entry.",
		},
		[]string{"store_name"},
	)

	StoreSweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: storeSubsystem,
			Name:      "sweep_duration_seconds",
			Help:      "Time required in seconds to sweep expired entries from a store.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"store_name"},
	)

	AdminRequestStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: adminSubsystem,
			Name:      "requests_total",
			Help:      "Count of requests handled by the admin listener.",
		},
		[]string{"method", "path", "http_status"},
	)

	AdminRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: adminSubsystem,
			Name:      "requests_duration_seconds",
			Help:      "Time required in seconds to handle an admin listener request.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path", "http_status"},
	)

	// Register Metrics
	prometheus.MustRegister(BuildInfo)
	prometheus.MustRegister(StoreOperations)
	prometheus.MustRegister(StoreEvents)
	prometheus.MustRegister(StoreObjects)
	prometheus.MustRegister(StoreMaxObjects)
	prometheus.MustRegister(StoreSweepDuration)
	prometheus.MustRegister(AdminRequestStatus)
	prometheus.MustRegister(AdminRequestDuration)
}

// Handler returns the http handler for the listener
func Handler() http.Handler {
	return promhttp.Handler()
}
