// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"
	"time"
)

func TestMetricsTimer(t *testing.T) {
	m := New()
	m.Timer("foo").Start()
	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	if m.All()["timer_foo_ns"] == int64(0) {
		t.Fatalf("Expected foo timer to be non-zero: %v", m.All())
	}
	m.Clear()

	if len(m.All()) > 0 {
		t.Fatalf("Expected metrics to be cleared, but found %v", m.All())
	}
}

func TestMetricsTimerDoubleStop(t *testing.T) {
	m := New()
	m.Timer("foo").Start()

	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t1 := m.Timer("foo").Int64()

	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t2 := m.Timer("foo").Int64()

	if t1 != t2 {
		t.Fatalf("Unexpected difference in stopped timer values: %v, %v", t1, t2)
	}
}

func TestMetricsCounter(t *testing.T) {
	m := New()
	m.Counter("n").Incr()
	m.Counter("n").Add(4)
	if m.Counter("n").Value() != uint64(5) {
		t.Fatalf("Expected counter to equal 5: %v", m.Counter("n").Value())
	}
}

func TestMetricsHistogram(t *testing.T) {
	m := New()
	for i := int64(1); i <= 100; i++ {
		m.Histogram("h").Update(i)
	}
	value := m.Histogram("h").Value().(map[string]interface{})
	if value["count"] != int64(100) {
		t.Fatalf("Expected count 100: %v", value)
	}
	if value["min"] != int64(1) || value["max"] != int64(100) {
		t.Fatalf("Unexpected bounds: %v", value)
	}
}

func TestMetricsMarshalJSON(t *testing.T) {
	m := New()
	m.Counter("x").Incr()
	bs, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) == 0 {
		t.Fatal("expected JSON output")
	}
}

func TestNoOpDiscards(t *testing.T) {
	m := NoOp()
	m.Counter("x").Incr()
	m.Timer("t").Start()
	m.Timer("t").Stop()
	m.Histogram("h").Update(1)
	if len(m.All()) != 0 {
		t.Fatalf("no-op metrics recorded something: %v", m.All())
	}
}
