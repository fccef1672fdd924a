// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package backing

import (
	"github.com/wasmfoundry/wasmfoundry/logging"
	"github.com/wasmfoundry/wasmfoundry/metrics"
)

// Options carries the ambient collaborators of the backing subsystem.
type Options struct {
	Logger  logging.Logger
	Metrics metrics.Metrics
}

// Option configures an instantiation.
type Option func(*Options)

// WithLogger routes instantiation logging to l.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics records instantiation timings and counters into m.
func WithMetrics(m metrics.Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

func applyOptions(opts []Option) Options {
	o := Options{
		Logger:  logging.NewNoOpLogger(),
		Metrics: metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
