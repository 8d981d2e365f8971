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
// Package config provides eksd configuration abilities, including
// parsing and printing configuration files, command line parameters, and
// environment variables, as well as default values and state.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/tasktrack/eks/pkg/cache"
	"github.com/tasktrack/eks/pkg/discount"
	terr "github.com/tasktrack/eks/pkg/errors"
	"github.com/tasktrack/eks/pkg/lockout"
	lo "github.com/tasktrack/eks/pkg/observability/logging/options"
	mo "github.com/tasktrack/eks/pkg/observability/metrics/options"
	"github.com/tasktrack/eks/pkg/session"
	so "github.com/tasktrack/eks/pkg/store/options"
	"github.com/tasktrack/eks/pkg/tasks"
	"github.com/tasktrack/eks/pkg/util/yamlx"

	"gopkg.in/yaml.v2"
)

// Config is the main configuration object
type Config struct {
	// Main is the primary MainConfig section
	Main *MainConfig `yaml:"main,omitempty"`
	// Logging provides configurations that affect logging behavior
	Logging *lo.Options `yaml:"logging,omitempty"`
	// Metrics provides configurations for collecting Metrics about the application
	Metrics *mo.Options `yaml:"metrics,omitempty"`
	// Stores is a map of store options, keyed by store name
	Stores map[string]*so.Options `yaml:"stores,omitempty"`

	LoaderWarnings []string `yaml:"-"`
}

// MainConfig is a collection of general configuration values.
type MainConfig struct {
	// InstanceID represents a unique ID for the current instance, when multiple instances on the same host
	InstanceID int `yaml:"instance_id,omitempty"`
	// PingHandlerPath provides the path to register the Ping Handler for checking that eksd is running
	PingHandlerPath string `yaml:"ping_handler_path,omitempty"`
	// StoresHandlerPath provides the path to register the Handler reporting live store sizes
	StoresHandlerPath string `yaml:"stores_handler_path,omitempty"`
	// ServerName is the name reported by the Ping Handler; defaults to os.Hostname
	ServerName string `yaml:"server_name,omitempty"`

	configFilePath string
}

// storeDefaults provides the default Options for each known store
var storeDefaults = map[string]func() *so.Options{
	session.StoreName:  session.DefaultOptions,
	tasks.StoreName:    tasks.DefaultOptions,
	cache.StoreName:    cache.DefaultOptions,
	discount.StoreName: discount.DefaultOptions,
	lockout.StoreName:  lockout.DefaultOptions,
}

// StoreNames returns the sorted names of the stores eksd runs
func StoreNames() []string {
	names := make([]string, 0, len(storeDefaults))
	for k := range storeDefaults {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NewConfig returns a Config initialized with default values.
func NewConfig() *Config {
	hn, _ := os.Hostname()
	c := &Config{
		Logging: lo.New(),
		Metrics: mo.New(),
		Main: &MainConfig{
			PingHandlerPath:   DefaultPingHandlerPath,
			StoresHandlerPath: DefaultStoresHandlerPath,
			ServerName:        hn,
		},
		Stores:         make(map[string]*so.Options, len(storeDefaults)),
		LoaderWarnings: make([]string, 0),
	}
	for name, f := range storeDefaults {
		c.Stores[name] = f()
	}
	return c
}

// ConfigFilePath returns the path of the file the Config was loaded from, if any
func (c *Config) ConfigFilePath() string {
	if c.Main == nil {
		return ""
	}
	return c.Main.configFilePath
}

// StoreOptions returns a copy of the named store's options, or nil if the
// store is not configured
func (c *Config) StoreOptions(name string) *so.Options {
	o, ok := c.Stores[name]
	if !ok || o == nil {
		return nil
	}
	return o.Clone()
}

// Validate returns an error if any part of the Config is unusable
func (c *Config) Validate() error {
	if c.Main == nil || c.Logging == nil || c.Metrics == nil {
		return fmt.Errorf("%w: main, logging and metrics sections are required",
			terr.ErrInvalidOptions)
	}
	if c.Metrics.ListenPort < 0 || c.Metrics.ListenPort > 65535 {
		return fmt.Errorf("%w: metrics listen_port out of range: %d",
			terr.ErrInvalidOptions, c.Metrics.ListenPort)
	}
	var errs []error
	for name, o := range c.Stores {
		if _, ok := storeDefaults[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", terr.ErrUnknownStoreName, name))
			continue
		}
		if err := o.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", name, err))
		}
	}
	for _, name := range StoreNames() {
		if _, ok := c.Stores[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", terr.ErrMissingStoreConfig, name))
		}
	}
	if o, ok := c.Stores[cache.StoreName]; ok && o.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: store %s requires max_size greater than zero",
			terr.ErrInvalidOptions, cache.StoreName))
	}
	if o, ok := c.Stores[lockout.StoreName]; ok {
		if err := lockout.ValidateOptions(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// String returns the running Config as a YAML document
func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}

// setDefaults fills every store option the document did not define with the
// store's own default, and adds known stores the document omitted.
func (c *Config) setDefaults(keys yamlx.KeyLookup) {
	if c.Stores == nil {
		c.Stores = make(map[string]*so.Options, len(storeDefaults))
	}
	for name, f := range storeDefaults {
		d := f()
		o, ok := c.Stores[name]
		if !ok || o == nil {
			c.Stores[name] = d
			continue
		}
		if !keys.IsDefined("stores", name, "ttl_seconds") {
			o.TTLSeconds, o.TTL = d.TTLSeconds, d.TTL
		}
		if !keys.IsDefined("stores", name, "max_size") {
			o.MaxSize = d.MaxSize
		}
		if !keys.IsDefined("stores", name, "reap_interval_ms") {
			o.ReapIntervalMS, o.ReapInterval = d.ReapIntervalMS, d.ReapInterval
		}
	}
}
