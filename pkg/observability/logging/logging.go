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
// Package logging provides structured logfmt logging
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/tasktrack/eks/pkg/observability/logging/options"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-stack/stack"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const appName = "eks"

// Pairs represents a key=value pair that helps to describe a log event
type Pairs map[string]interface{}

// Logger is a container for the underlying log provider
type Logger struct {
	logger log.Logger
	closer io.Closer
	level  string

	onceRanEntries sync.Map
}

func mapToArray(event string, detail Pairs) []interface{} {
	a := make([]interface{}, (len(detail)*2)+2)
	var i int

	// Ensure the log level is the first Pair in the output order (after prefixes)
	if level, ok := detail["level"]; ok {
		a[0] = "level"
		a[1] = level
		i += 2
	}

	// Ensure the event description is the second Pair in the output order (after prefixes)
	a[i] = "event"
	a[i+1] = event
	i += 2

	for k, v := range detail {
		if k == "level" {
			continue
		}
		a[i] = k
		a[i+1] = v
		i += 2
	}
	return a[:i]
}

// New returns a Logger for the provided logging options. When a log file is
// configured, the instance id distinguishes its file from other instances'.
func New(o *options.Options, instanceID int) *Logger {
	if o == nil {
		o = options.New()
	}
	var wr io.Writer
	if o.LogFile == "" {
		wr = os.Stdout
	} else {
		logFile := o.LogFile
		if instanceID > 0 {
			logFile = strings.Replace(logFile, ".log", "."+strconv.Itoa(instanceID)+".log", 1)
		}
		wr = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    256,  // megabytes
			MaxBackups: 80,   // 256 megs @ 80 backups is 20GB of Logs
			MaxAge:     7,    // days
			Compress:   true, // Compress Rolled Backups
		}
	}
	return newLogger(wr, o.LogLevel)
}

// DefaultLogger returns the default logger, which is the console logger at level "info"
func DefaultLogger() *Logger {
	return ConsoleLogger(options.DefaultLogLevel)
}

// ConsoleLogger returns a Logger that prints log events to the Console
func ConsoleLogger(logLevel string) *Logger {
	return newLogger(os.Stdout, logLevel)
}

// StreamLogger returns a Logger that prints log events to the provided writer
func StreamLogger(w io.Writer, logLevel string) *Logger {
	return newLogger(w, logLevel)
}

// NoopLogger returns a Logger that discards all events
func NoopLogger() *Logger {
	return &Logger{logger: log.NewNopLogger(), level: "none"}
}

func newLogger(wr io.Writer, logLevel string) *Logger {
	l := &Logger{}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(wr))
	logger = log.With(logger,
		"time", log.DefaultTimestampUTC,
		"app", appName,
		"caller", log.Valuer(func() interface{} {
			return pkgCaller{callerOutsideLogging()}
		}),
	)

	l.level = strings.ToLower(logLevel)

	// wrap logger depending on log level
	switch l.level {
	case "debug":
		logger = level.NewFilter(logger, level.AllowDebug())
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	case "none":
		logger = level.NewFilter(logger, level.AllowNone())
	default:
		l.level = options.DefaultLogLevel
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	l.logger = logger
	if c, ok := wr.(io.Closer); ok && c != nil && wr != os.Stdout && wr != os.Stderr {
		l.closer = c
	}
	return l
}

// Info sends an "INFO" event to the Logger
func (l *Logger) Info(event string, detail Pairs) {
	level.Info(l.logger).Log(mapToArray(event, detail)...)
}

// InfoOnce sends an "INFO" event to the Logger only once per key.
// Returns true if this invocation was the first, and thus sent to the Logger
func (l *Logger) InfoOnce(key string, event string, detail Pairs) bool {
	if l.once("info." + key) {
		l.Info(event, detail)
		return true
	}
	return false
}

// Warn sends a "WARN" event to the Logger
func (l *Logger) Warn(event string, detail Pairs) {
	level.Warn(l.logger).Log(mapToArray(event, detail)...)
}

// WarnOnce sends a "WARN" event to the Logger only once per key.
// Returns true if this invocation was the first, and thus sent to the Logger
func (l *Logger) WarnOnce(key string, event string, detail Pairs) bool {
	if l.once("warn." + key) {
		l.Warn(event, detail)
		return true
	}
	return false
}

// HasWarnedOnce returns true if a warning for the key has already been sent to the Logger
func (l *Logger) HasWarnedOnce(key string) bool {
	_, ok := l.onceRanEntries.Load("warn." + key)
	return ok
}

// Error sends an "ERROR" event to the Logger
func (l *Logger) Error(event string, detail Pairs) {
	level.Error(l.logger).Log(mapToArray(event, detail)...)
}

// Debug sends a "DEBUG" event to the Logger
func (l *Logger) Debug(event string, detail Pairs) {
	level.Debug(l.logger).Log(mapToArray(event, detail)...)
}

// Fatal sends a "FATAL" event to the Logger and exits the program with the provided exit code.
// A negative code logs without exiting.
func (l *Logger) Fatal(code int, event string, detail Pairs) {
	// go-kit/log/level does not support Fatal, so implemented separately here
	if detail == nil {
		detail = Pairs{}
	}
	detail["level"] = "fatal"
	l.logger.Log(mapToArray(event, detail)...)
	if code >= 0 {
		os.Exit(code)
	}
}

// Level returns the configured Log Level
func (l *Logger) Level() string {
	return l.level
}

// Close closes any opened file handles that were used for logging.
func (l *Logger) Close() {
	if l.closer != nil {
		l.closer.Close()
	}
}

func (l *Logger) once(key string) bool {
	_, loaded := l.onceRanEntries.LoadOrStore(key, true)
	return !loaded
}

// pkgCaller wraps a stack.Call to make the default string output include the
// package path.
type pkgCaller struct {
	c stack.Call
}

// String returns a path from the call stack that is relative to the root of the project
func (pc pkgCaller) String() string {
	return strings.TrimPrefix(fmt.Sprintf("%+v", pc.c), "github.com/tasktrack/eks/")
}

// callerOutsideLogging returns the first frame on the stack that belongs to
// neither this package tree nor go-kit
func callerOutsideLogging() stack.Call {
	trace := stack.Trace().TrimRuntime()
	for _, c := range trace {
		p := fmt.Sprintf("%+v", c)
		if strings.Contains(p, "/pkg/observability/logging") ||
			strings.HasPrefix(p, "github.com/go-kit/") ||
			strings.HasPrefix(p, "github.com/go-stack/") {
			continue
		}
		return c
	}
	if len(trace) > 0 {
		return trace[len(trace)-1]
	}
	return stack.Caller(0)
}
