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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/tasktrack/eks/pkg/appinfo"
	"github.com/tasktrack/eks/pkg/config"
	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/observability/metrics"
)

const shutdownTimeout = 5 * time.Second

// run hosts the stores and the admin listener until ctx is canceled
func run(ctx context.Context, conf *config.Config) error {
	log := logging.New(conf.Logging, conf.Main.InstanceID)
	logger.SetLogger(log)
	defer log.Close()

	appinfo.SetServer(conf.Main.ServerName)
	metrics.BuildInfo.WithLabelValues(runtime.Version(),
		appinfo.GitCommitID, appinfo.Version).Set(1)

	log.Info("application loaded from configuration",
		logging.Pairs{
			"name":       appinfo.Name,
			"version":    appinfo.Version,
			"goVersion":  runtime.Version(),
			"goArch":     runtime.GOARCH,
			"commitID":   appinfo.GitCommitID,
			"buildTime":  appinfo.BuildTime,
			"logLevel":   log.Level(),
			"configFile": conf.ConfigFilePath(),
		},
	)
	for _, w := range conf.LoaderWarnings {
		log.Warn(w, logging.Pairs{})
	}

	svc, err := newServices(conf)
	if err != nil {
		log.Error("could not start stores", logging.Pairs{"detail": err.Error()})
		return err
	}
	defer svc.Close()

	addr := fmt.Sprintf("%s:%d", conf.Metrics.ListenAddress, conf.Metrics.ListenPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("unable to start admin listener",
			logging.Pairs{"address": addr, "detail": err.Error()})
		return err
	}
	return serve(ctx, l, newRouter(conf, svc), log)
}

// serve handles requests on l until ctx is canceled, then drains
// in-flight requests
func serve(ctx context.Context, l net.Listener, h http.Handler, log *logging.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info("admin http endpoint starting", logging.Pairs{"address": l.Addr().String()})
		errs <- srv.Serve(l)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", logging.Pairs{})
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("admin listener did not shut down cleanly", logging.Pairs{"detail": err.Error()})
		return err
	}
	return nil
}
