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
// Package middleware provides http.Handler decorators
package middleware

import (
	"net/http"
	"time"

	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/observability/metrics"
)

// Decorate decorates a handler in such a way that it captures both the
// returned status and the time used to serve each request
func Decorate(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observer := &responseObserver{ResponseWriter: w, status: "2xx"}

		n := time.Now()
		next.ServeHTTP(observer, r)
		elapsed := time.Since(n)

		metrics.AdminRequestDuration.WithLabelValues(r.Method, path,
			observer.status).Observe(elapsed.Seconds())
		metrics.AdminRequestStatus.WithLabelValues(r.Method, path,
			observer.status).Inc()
		logger.Debug("admin request served", logging.Pairs{
			"method": r.Method, "path": r.URL.Path, "status": observer.status,
			"bytes": observer.bytesWritten, "elapsed": elapsed.String()})
	})
}

type responseObserver struct {
	http.ResponseWriter

	status       string
	bytesWritten int
}

func (w *responseObserver) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.status = statusClass(statusCode)
}

func (w *responseObserver) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// statusClass returns the class of an http status code, e.g. "4xx"
func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	}
	return "unknown"
}
