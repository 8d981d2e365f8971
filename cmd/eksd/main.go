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
// Package main is the main package for the eksd application
package main

import (
	"fmt"
	"os"

	"github.com/tasktrack/eks/pkg/appinfo"

	"github.com/urfave/cli/v2"
)

var (
	applicationGitCommitID string
	applicationBuildTime   string
)

const (
	applicationName    = "eksd"
	applicationVersion = "1.0.0"
)

func main() {
	appinfo.Set(applicationName, applicationVersion, applicationBuildTime, applicationGitCommitID)
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    applicationName,
		Usage:   "hosts the session, task, cache, discount and lockout stores",
		Version: applicationVersion,
		Flags:   commonFlags,
		Commands: []*cli.Command{
			commandRun,
			commandValidate,
			commandVersion,
		},
		Action: runAction,
	}
}

var (
	commandRun = &cli.Command{
		Name:   "run",
		Usage:  "start the daemon and serve until interrupted",
		Flags:  commonFlags,
		Action: runAction,
	}
	commandValidate = &cli.Command{
		Name:   "validate-config",
		Usage:  "validate the configuration and print it, without starting the daemon",
		Flags:  commonFlags,
		Action: validateAction,
	}
	commandVersion = &cli.Command{
		Name:  "version",
		Usage: "print the version and exit",
		Action: func(ctx *cli.Context) error {
			fmt.Fprintln(ctx.App.Writer, appinfo.String())
			return nil
		},
	}
)

func validateAction(ctx *cli.Context) error {
	conf, err := loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}
	fmt.Fprintln(ctx.App.Writer, "configuration is valid")
	fmt.Fprint(ctx.App.Writer, conf.String())
	return nil
}

func runAction(ctx *cli.Context) error {
	conf, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	sigCtx, stop := signalContext(ctx.Context)
	defer stop()
	return run(sigCtx, conf)
}
