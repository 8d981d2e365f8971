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
	"github.com/tasktrack/eks/pkg/config"

	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the eksd config file",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "level of logging to use (debug, info, warn, error)",
	}
	metricsPortFlag = &cli.IntFlag{
		Name:  "metrics-port",
		Usage: "port that the /metrics endpoint will listen on",
	}
	instanceIDFlag = &cli.IntFlag{
		Name: "instance-id",
		Usage: "instance ID is for running multiple eksd processes" +
			" from the same config while logging to their own files",
	}

	commonFlags = []cli.Flag{configFlag, logLevelFlag, metricsPortFlag, instanceIDFlag}
)

// flagsFromContext reads the config flags, preferring command-level values
// over app-level ones
func flagsFromContext(ctx *cli.Context) *config.Flags {
	f := &config.Flags{}
	for _, c := range ctx.Lineage() {
		if f.ConfigPath == "" {
			f.ConfigPath = c.String(configFlag.Name)
		}
		if f.LogLevel == "" {
			f.LogLevel = c.String(logLevelFlag.Name)
		}
		if f.MetricsListenPort == 0 {
			f.MetricsListenPort = c.Int(metricsPortFlag.Name)
		}
		if f.InstanceID == 0 {
			f.InstanceID = c.Int(instanceIDFlag.Name)
		}
	}
	return f
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	return config.Load(flagsFromContext(ctx))
}
