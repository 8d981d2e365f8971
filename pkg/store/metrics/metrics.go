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
// Package metrics records store activity to the process metrics registry
package metrics

import (
	"github.com/tasktrack/eks/pkg/observability/metrics"
	"github.com/tasktrack/eks/pkg/store/status"
)

// ObserveOperation increments counters as store operations occur
func ObserveOperation(store, operation string, s status.LookupStatus) {
	metrics.StoreOperations.WithLabelValues(store, operation, s.String()).Inc()
}

// ObserveEvent increments counters as store events occur
func ObserveEvent(store, event, reason string, count int) {
	if count <= 0 {
		return
	}
	metrics.StoreEvents.WithLabelValues(store, event, reason).Add(float64(count))
}

// ObserveSizeChange sets the object gauge as the store size changes
func ObserveSizeChange(store string, objectCount int) {
	metrics.StoreObjects.WithLabelValues(store).Set(float64(objectCount))
}

// ObserveMaxSize records the capacity bound of a store
func ObserveMaxSize(store string, maxSize int) {
	metrics.StoreMaxObjects.WithLabelValues(store).Set(float64(maxSize))
}

// ObserveSweep records the duration of a sweep pass
func ObserveSweep(store string, seconds float64) {
	metrics.StoreSweepDuration.WithLabelValues(store).Observe(seconds)
}
