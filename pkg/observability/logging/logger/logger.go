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
// Package logger provides a package-level logger for application-wide use.
// By default, the logger is a Console Logger @ INFO. Use SetLogger() to
// replace it, e.g. once the configuration has been loaded.
package logger

import (
	"sync/atomic"

	"github.com/tasktrack/eks/pkg/observability/logging"
)

var current atomic.Pointer[logging.Logger]

func init() {
	current.Store(logging.DefaultLogger())
}

// Logger returns the package-level logger
func Logger() *logging.Logger {
	return current.Load()
}

// SetLogger sets the package-level logger object
func SetLogger(l *logging.Logger) {
	if l == nil {
		return
	}
	current.Store(l)
}

func Debug(event string, detail logging.Pairs) {
	Logger().Debug(event, detail)
}

func Info(event string, detail logging.Pairs) {
	Logger().Info(event, detail)
}

func Warn(event string, detail logging.Pairs) {
	Logger().Warn(event, detail)
}

func Error(event string, detail logging.Pairs) {
	Logger().Error(event, detail)
}

func WarnOnce(key, event string, detail logging.Pairs) bool {
	return Logger().WarnOnce(key, event, detail)
}

func InfoOnce(key, event string, detail logging.Pairs) bool {
	return Logger().InfoOnce(key, event, detail)
}
