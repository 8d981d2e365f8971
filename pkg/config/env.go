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
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// Environment variables
	evLogLevel    = "EKS_LOG_LEVEL"
	evMetricsPort = "EKS_METRICS_PORT"
	evInstanceID  = "EKS_INSTANCE_ID"
)

func (c *Config) loadEnvVars() {
	// LogLevel
	if x := os.Getenv(evLogLevel); x != "" {
		c.Logging.LogLevel = x
	}

	// Metrics Port
	if x := os.Getenv(evMetricsPort); x != "" {
		if y, err := strconv.ParseInt(x, 10, 32); err == nil {
			c.Metrics.ListenPort = int(y)
		} else {
			c.LoaderWarnings = append(c.LoaderWarnings,
				fmt.Sprintf("ignoring invalid %s value: %s", evMetricsPort, x))
		}
	}

	// Instance ID
	if x := os.Getenv(evInstanceID); x != "" {
		if y, err := strconv.ParseInt(x, 10, 32); err == nil {
			c.Main.InstanceID = int(y)
		} else {
			c.LoaderWarnings = append(c.LoaderWarnings,
				fmt.Sprintf("ignoring invalid %s value: %s", evInstanceID, x))
		}
	}
}
