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
package main

import (
	"net/http"

	"github.com/tasktrack/eks/pkg/appinfo"
	"github.com/tasktrack/eks/pkg/config"
	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/observability/metrics"
	"github.com/tasktrack/eks/pkg/observability/pprof"
	"github.com/tasktrack/eks/pkg/util/middleware"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v2"
)

const (
	headerContentType = "Content-Type"
	contentTypeText   = "text/plain; charset=utf-8"
)

// newRouter returns the router for the daemon's admin listener
func newRouter(conf *config.Config, svc *services) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.Handle(conf.Main.PingHandlerPath, middleware.Decorate(conf.Main.PingHandlerPath,
		http.HandlerFunc(pingHandler))).Methods(http.MethodGet)
	r.Handle(conf.Main.StoresHandlerPath, middleware.Decorate(conf.Main.StoresHandlerPath,
		storesHandler(svc))).Methods(http.MethodGet)
	pprof.RegisterRoutes("admin", r)
	return r
}

// pingHandler responds to an HTTP Request with 200 OK and "pong"
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerContentType, contentTypeText)
	w.Header().Set("Server", appinfo.Server)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// storesHandler responds with the live size of every store as YAML
func storesHandler(svc *services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := yaml.Marshal(svc.statuses())
		if err != nil {
			logger.Error("could not marshal store status", logging.Pairs{"detail": err.Error()})
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
			return
		}
		w.Header().Set(headerContentType, contentTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}
