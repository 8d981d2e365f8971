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
	"os"

	"github.com/tasktrack/eks/pkg/util/yamlx"

	"gopkg.in/yaml.v2"
)

// Flags holds the command line values that override the Config
type Flags struct {
	ConfigPath        string
	LogLevel          string
	MetricsListenPort int
	InstanceID        int
}

// Load returns the Config built from defaults, the config file named by
// flags (if any), environment variables and flags, in increasing precedence.
// The returned Config has been validated.
func Load(flags *Flags) (*Config, error) {
	c := NewConfig()
	if flags == nil {
		flags = &Flags{}
	}
	if flags.ConfigPath != "" {
		if err := c.loadFile(flags.ConfigPath); err != nil {
			return nil, err
		}
	}
	c.loadEnvVars()
	c.loadFlags(flags)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadFile loads application configuration from a YAML-formatted file.
func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.loadYAMLConfig(string(b)); err != nil {
		return err
	}
	c.Main.configFilePath = path
	return nil
}

// loadYAMLConfig loads application configuration from a YAML-formatted string.
func (c *Config) loadYAMLConfig(yml string) error {
	if err := yaml.Unmarshal([]byte(yml), c); err != nil {
		return err
	}
	keys, err := yamlx.GetKeyList(yml)
	if err != nil {
		return err
	}
	d := NewConfig()
	if c.Main == nil {
		c.Main = d.Main
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
	c.setDefaults(keys)
	return nil
}

// loadFlags loads configuration from command line flags.
func (c *Config) loadFlags(flags *Flags) {
	if flags.LogLevel != "" {
		c.Logging.LogLevel = flags.LogLevel
	}
	if flags.MetricsListenPort > 0 {
		c.Metrics.ListenPort = flags.MetricsListenPort
	}
	if flags.InstanceID > 0 {
		c.Main.InstanceID = flags.InstanceID
	}
}
