// Copyright 2018 The AbeyChain Authors
// This file is part of the abey library.
//
// The abey library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The abey library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the abey library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics is a minimal adaptation of the upstream go-metrics
// fork: named, process-global Meter/Timer/Gauge instruments, registered
// once at var-init time the way every abey/* package's metrics.go does,
// and readable by an external exporter keyed by name.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Registry maps a metric name to its instrument. Passing nil to the
// NewRegistered* constructors (as every call site in this codebase does)
// registers into DefaultRegistry.
type Registry interface {
	Register(name string, v interface{})
	Get(name string) interface{}
	Each(func(name string, v interface{}))
}

type registry struct {
	mu sync.RWMutex
	m  map[string]interface{}
}

func NewRegistry() Registry { return &registry{m: make(map[string]interface{})} }

func (r *registry) Register(name string, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = v
}

func (r *registry) Get(name string) interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m[name]
}

func (r *registry) Each(f func(name string, v interface{})) {
	r.mu.RLock()
	snap := make(map[string]interface{}, len(r.m))
	for k, v := range r.m {
		snap[k] = v
	}
	r.mu.RUnlock()
	for k, v := range snap {
		f(k, v)
	}
}

// DefaultRegistry is the registry NewRegistered* instruments land in
// when called with a nil Registry, matching upstream's package-global
// default.
var DefaultRegistry = NewRegistry()

// Meter counts occurrences of an event.
type Meter interface {
	Mark(n int64)
	Count() int64
}

type meter struct{ count int64 }

func (m *meter) Mark(n int64) { atomic.AddInt64(&m.count, n) }
func (m *meter) Count() int64 { return atomic.LoadInt64(&m.count) }

// NewRegisteredMeter creates and registers a new Meter under name.
func NewRegisteredMeter(name string, r Registry) Meter {
	if r == nil {
		r = DefaultRegistry
	}
	m := &meter{}
	r.Register(name, m)
	return m
}

// Gauge holds a single, externally-set instantaneous value.
type Gauge interface {
	Update(v int64)
	Value() int64
}

type gauge struct{ value int64 }

func (g *gauge) Update(v int64) { atomic.StoreInt64(&g.value, v) }
func (g *gauge) Value() int64   { return atomic.LoadInt64(&g.value) }

// NewRegisteredGauge creates and registers a new Gauge under name.
func NewRegisteredGauge(name string, r Registry) Gauge {
	if r == nil {
		r = DefaultRegistry
	}
	g := &gauge{}
	r.Register(name, g)
	return g
}

// Timer tracks the distribution of durations for a repeated operation.
type Timer interface {
	Update(d time.Duration)
	UpdateSince(start time.Time)
	Count() int64
	Mean() float64
}

type timer struct {
	mu    sync.Mutex
	count int64
	sum   time.Duration
}

func (t *timer) Update(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.sum += d
}

func (t *timer) UpdateSince(start time.Time) { t.Update(time.Since(start)) }

func (t *timer) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *timer) Mean() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return 0
	}
	return float64(t.sum) / float64(t.count)
}

// NewRegisteredTimer creates and registers a new Timer under name.
func NewRegisteredTimer(name string, r Registry) Timer {
	if r == nil {
		r = DefaultRegistry
	}
	t := &timer{}
	r.Register(name, t)
	return t
}
