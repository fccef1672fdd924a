// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package metrics contains helpers for performance metric management
// inside the runtime.
package metrics

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Well-known instrument names recorded by the backing subsystem.
const (
	LinkTimer            = "wasm_link"
	BackingMemoriesTimer = "wasm_backing_memories"
	BackingTablesTimer   = "wasm_backing_tables"
	BackingGlobalsTimer  = "wasm_backing_globals"
	MemoryGrowCounter    = "wasm_memory_grow"
)

// Metrics defines the interface for a collection of named performance
// metrics.
type Metrics interface {
	Timer(name string) Timer
	Histogram(name string) Histogram
	Counter(name string) Counter
	All() map[string]interface{}
	Clear()
	json.Marshaler
}

// Timer defines the interface for a restartable timer that accumulates
// elapsed time.
type Timer interface {
	Value() interface{}
	Int64() int64
	Start()
	Stop() int64
}

// Histogram defines the interface for a histogram with hardcoded
// percentiles.
type Histogram interface {
	Value() interface{}
	Update(int64)
}

// Counter defines the interface for a monotonic increasing counter.
type Counter interface {
	Value() interface{}
	Incr()
	Add(n uint64)
}

// New returns a new Metrics object.
func New() Metrics {
	m := &metrics{}
	m.Clear()
	return m
}

type metrics struct {
	mtx        sync.Mutex
	timers     map[string]Timer
	histograms map[string]Histogram
	counters   map[string]Counter
}

func (m *metrics) String() string {
	bs, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(bs)
}

func (m *metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.All())
}

func (m *metrics) Timer(name string) Timer {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	t, ok := m.timers[name]
	if !ok {
		t = &timer{}
		m.timers[name] = t
	}
	return t
}

func (m *metrics) Histogram(name string) Histogram {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = newHistogram()
		m.histograms[name] = h
	}
	return h
}

func (m *metrics) Counter(name string) Counter {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = &counter{}
		m.counters[name] = c
	}
	return c
}

func (m *metrics) All() map[string]interface{} {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	result := map[string]interface{}{}
	for name, t := range m.timers {
		result[m.formatKey("timer", name, "ns")] = t.Value()
	}
	for name, h := range m.histograms {
		result[m.formatKey("histogram", name, "")] = h.Value()
	}
	for name, c := range m.counters {
		result[m.formatKey("counter", name, "")] = c.Value()
	}
	return result
}

func (m *metrics) Clear() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.timers = map[string]Timer{}
	m.histograms = map[string]Histogram{}
	m.counters = map[string]Counter{}
}

func (*metrics) formatKey(class, name, unit string) string {
	key := class + "_" + name
	if unit != "" {
		key += "_" + unit
	}
	return key
}

type timer struct {
	mtx   sync.Mutex
	start time.Time
	value int64
}

func (t *timer) Start() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.start = time.Now()
}

func (t *timer) Stop() int64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if !t.start.IsZero() {
		t.value += time.Since(t.start).Nanoseconds()
		t.start = time.Time{}
	}
	return t.value
}

func (t *timer) Value() interface{} {
	return t.Int64()
}

func (t *timer) Int64() int64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.value
}

type histogram struct {
	hist gometrics.Histogram
}

func newHistogram() Histogram {
	// NOTE: the reservoir size and alpha factor are taken from docs on
	// the rcrowley/go-metrics library.
	return &histogram{
		hist: gometrics.NewHistogram(gometrics.NewExpDecaySample(1028, 0.015)),
	}
}

func (h *histogram) Update(v int64) {
	h.hist.Update(v)
}

func (h *histogram) Value() interface{} {
	values := map[string]interface{}{}
	snap := h.hist.Snapshot()
	percentiles := snap.Percentiles([]float64{
		0.5,
		0.75,
		0.9,
		0.95,
		0.99,
		0.999,
		0.9999,
	})
	values["count"] = snap.Count()
	values["min"] = snap.Min()
	values["max"] = snap.Max()
	values["mean"] = snap.Mean()
	values["stddev"] = snap.StdDev()
	values["median"] = percentiles[0]
	values["75%"] = percentiles[1]
	values["90%"] = percentiles[2]
	values["95%"] = percentiles[3]
	values["99%"] = percentiles[4]
	values["99.9%"] = percentiles[5]
	values["99.99%"] = percentiles[6]
	return values
}

type counter struct {
	mtx   sync.Mutex
	count uint64
}

func (c *counter) Incr() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.count++
}

func (c *counter) Add(n uint64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.count += n
}

func (c *counter) Value() interface{} {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.count
}

// NoOp returns a shared Metrics implementation that discards every
// observation. Useful as the default for callers that do not collect
// metrics.
func NoOp() Metrics {
	return noOpInstance
}

var noOpInstance Metrics = &noOp{}

type noOp struct{}

func (*noOp) Timer(string) Timer           { return noOpTimerInstance }
func (*noOp) Histogram(string) Histogram   { return noOpHistogramInstance }
func (*noOp) Counter(string) Counter       { return noOpCounterInstance }
func (*noOp) All() map[string]interface{}  { return map[string]interface{}{} }
func (*noOp) Clear()                       {}
func (*noOp) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

var (
	noOpTimerInstance     Timer     = &noOpTimer{}
	noOpHistogramInstance Histogram = &noOpHistogram{}
	noOpCounterInstance   Counter   = &noOpCounter{}
)

type noOpTimer struct{}

func (*noOpTimer) Start()             {}
func (*noOpTimer) Stop() int64        { return 0 }
func (*noOpTimer) Int64() int64       { return 0 }
func (*noOpTimer) Value() interface{} { return int64(0) }

type noOpHistogram struct{}

func (*noOpHistogram) Update(int64)       {}
func (*noOpHistogram) Value() interface{} { return map[string]interface{}{} }

type noOpCounter struct{}

func (*noOpCounter) Incr()              {}
func (*noOpCounter) Add(uint64)         {}
func (*noOpCounter) Value() interface{} { return uint64(0) }
