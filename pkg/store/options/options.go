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
// Package options holds the configuration of an expiring keyed store
package options

import (
	"fmt"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"
)

// Options defines the operation of an expiring keyed store
type Options struct {
	// TTLSeconds is how long an entry may sit idle before it expires
	TTLSeconds int `yaml:"ttl_seconds,omitempty"`
	// MaxSize bounds the number of live entries. When an insert would exceed it,
	// the least-recently-active entry is evicted. 0 disables the bound.
	MaxSize int `yaml:"max_size,omitempty"`
	// ReapIntervalMS defines how long the background sweeper sleeps between passes.
	// 0 disables the background sweeper.
	ReapIntervalMS int `yaml:"reap_interval_ms,omitempty"`

	TTL          time.Duration `yaml:"-"`
	ReapInterval time.Duration `yaml:"-"`
}

// New returns a new Options reference with default values set
func New() *Options {
	return &Options{
		TTLSeconds:     DefaultTTLSeconds,
		MaxSize:        DefaultMaxSize,
		ReapIntervalMS: DefaultReapIntervalMS,
		TTL:            time.Duration(DefaultTTLSeconds) * time.Second,
		ReapInterval:   time.Duration(DefaultReapIntervalMS) * time.Millisecond,
	}
}

// Clone returns an exact copy of the Options
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// Equal returns true if all members of the subject and provided Options
// are identical
func (o *Options) Equal(o2 *Options) bool {
	if o2 == nil {
		return false
	}
	return o.TTL == o2.TTL &&
		o.MaxSize == o2.MaxSize &&
		o.ReapInterval == o2.ReapInterval
}

// Validate returns an error wrapping errors.ErrInvalidOptions when
// any value is out of range
func (o *Options) Validate() error {
	if o.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be greater than zero, got %s",
			terr.ErrInvalidOptions, o.TTL)
	}
	if o.MaxSize < 0 {
		return fmt.Errorf("%w: max_size must not be negative, got %d",
			terr.ErrInvalidOptions, o.MaxSize)
	}
	if o.ReapInterval < 0 {
		return fmt.Errorf("%w: reap interval must not be negative, got %s",
			terr.ErrInvalidOptions, o.ReapInterval)
	}
	return nil
}

// UnmarshalYAML applies defaults before overlaying YAML-parsed values, then
// derives the duration fields from their integer counterparts.
func (o *Options) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type loadOptions Options
	lo := loadOptions(*(New()))
	if err := unmarshal(&lo); err != nil {
		return err
	}
	*o = Options(lo)
	o.TTL = time.Duration(o.TTLSeconds) * time.Second
	o.ReapInterval = time.Duration(o.ReapIntervalMS) * time.Millisecond
	return nil
}
